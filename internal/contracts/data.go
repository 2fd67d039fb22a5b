package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Platform is one tracked external ranking source
// ⭐ SSOT: 플랫폼 식별 정보
type Platform struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// RankingRow is one stock rank reported by one platform in one collection cycle.
// Rows are append-only; CollectedDate is the trading-day key, not the calendar date of CollectedAt.
type RankingRow struct {
	ID            int64     `json:"id,omitempty"`
	PlatformID    int64     `json:"platformId"`
	StockName     string    `json:"stockName"`
	Ranking       int       `json:"ranking"`
	CollectedAt   time.Time `json:"collectedAt"`
	CollectedDate string    `json:"collectedDate"`
}

// ParsedRanking is a normalized (platform, stock, rank) tuple produced by the parser
type ParsedRanking struct {
	PlatformName string `json:"platformName"`
	StockName    string `json:"stockName"`
	Rank         int    `json:"rank"`
}

// DailyRanking is a ranking row joined with its platform and stock detail
type DailyRanking struct {
	ID            int64     `json:"id"`
	PlatformID    int64     `json:"platformId"`
	PlatformName  string    `json:"platformName"`
	PlatformCode  string    `json:"platformCode"`
	DisplayOrder  int       `json:"displayOrder"`
	StockName     string    `json:"stockName"`
	Ranking       int       `json:"ranking"`
	CollectedAt   time.Time `json:"collectedAt"`
	CollectedDate string    `json:"collectedDate"`
	Industry      string    `json:"industry,omitempty"`
	HotConcept    string    `json:"hotConcept,omitempty"`
}

// StockDetail is reference data keyed by stock name, loaded out-of-band
type StockDetail struct {
	ID                int64  `json:"id,omitempty"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	Industry          string `json:"industry,omitempty"`
	SecondaryIndustry string `json:"secondaryIndustry,omitempty"`
	HotConcept        string `json:"hotConcept,omitempty"`
	AllConcepts       string `json:"allConcepts,omitempty"`
}

// Sector returns the attribute used for rollups of the given type
func (d StockDetail) Sector(t SectorType) string {
	if t == SectorConcept {
		return strings.TrimSpace(d.HotConcept)
	}
	return strings.TrimSpace(d.Industry)
}

// CollectionStatus is the outcome recorded for one collection cycle
type CollectionStatus string

const (
	CollectionSuccess CollectionStatus = "success"
	CollectionFailed  CollectionStatus = "failed"
	CollectionPartial CollectionStatus = "partial"
)

// Valid reports whether s is a storable status
func (s CollectionStatus) Valid() bool {
	switch s {
	case CollectionSuccess, CollectionFailed, CollectionPartial:
		return true
	}
	return false
}

// CollectionLog is one row per collection cycle, append-only
type CollectionLog struct {
	ID           int64            `json:"id,omitempty"`
	CollectedAt  time.Time        `json:"collectedAt"`
	Status       CollectionStatus `json:"status"`
	TotalRecords int              `json:"totalRecords"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
	CreatedAt    time.Time        `json:"createdAt,omitempty"`
}

// SectorType selects which stock detail attribute a sector refers to
type SectorType string

const (
	SectorIndustry SectorType = "industry"
	SectorConcept  SectorType = "concept"
)

// ParseSectorType validates a sector type; empty means industry
func ParseSectorType(s string) (SectorType, error) {
	switch SectorType(strings.ToLower(strings.TrimSpace(s))) {
	case "", SectorIndustry:
		return SectorIndustry, nil
	case SectorConcept:
		return SectorConcept, nil
	}
	return "", fmt.Errorf("%w: sector type %q", ErrInvalidParameter, s)
}
