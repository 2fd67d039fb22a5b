package contracts

import "time"

// CollectResult is the structured outcome of one collection cycle
type CollectResult struct {
	Success       bool      `json:"success"`
	TotalRecords  int       `json:"totalRecords"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	CollectedAt   time.Time `json:"collectedAt"`
	CollectedDate string    `json:"collectedDate"`
	Dropped       int       `json:"dropped"` // rows whose platform name had no active match
}

// CollectionEvent is pushed to subscribers after each finished cycle
type CollectionEvent struct {
	Type   string        `json:"type"`
	Result CollectResult `json:"result"`
}

// EventCollectionFinished is the CollectionEvent type for a finished cycle
const EventCollectionFinished = "collection.finished"

// PlatformStat is per-platform diagnostic information
type PlatformStat struct {
	PlatformID        int64      `json:"platformId"`
	PlatformName      string     `json:"platformName"`
	Rows              int64      `json:"rows"`
	LatestCollectedAt *time.Time `json:"latestCollectedAt,omitempty"`
}

// DateStat is the number of ranking rows stored for one trading day
type DateStat struct {
	Date string `json:"date"`
	Rows int64  `json:"rows"`
}
