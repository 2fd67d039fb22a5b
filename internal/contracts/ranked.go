package contracts

// PlatformScore is one platform's contribution to a composite score
type PlatformScore struct {
	Name  string `json:"name"`
	Rank  int    `json:"rank"`
	Score int    `json:"score"`
}

// ScoredStock is a stock's cross-platform composite score for one trading day
type ScoredStock struct {
	StockName     string          `json:"stockName"`
	AvgScore      float64         `json:"avgScore"`
	PlatformCount int             `json:"platformCount"`
	Platforms     []PlatformScore `json:"platforms"`
	Industry      string          `json:"industry,omitempty"`
	Concept       string          `json:"concept,omitempty"`
}

// SectorCount is a sector bucket with the number of distinct stocks in it
type SectorCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SectorStock is a stock listed under a sector with its composite score
type SectorStock struct {
	StockName     string  `json:"stockName"`
	Industry      string  `json:"industry,omitempty"`
	HotConcept    string  `json:"hotConcept,omitempty"`
	AvgScore      float64 `json:"avgScore"`
	PlatformCount int     `json:"platformCount"`
}

// PivotRow holds one rank across every requested date
type PivotRow struct {
	Rank   int               `json:"rank"`
	Stocks map[string]string `json:"stocks"` // date -> stock name, "" when missing
}

// MultiDateMatrix is the rank x date pivot for one platform
type MultiDateMatrix struct {
	Dates    []string   `json:"dates"`
	Rankings []PivotRow `json:"rankings"`
}
