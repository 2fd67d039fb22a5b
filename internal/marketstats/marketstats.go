// Package marketstats exposes market breadth figures (limit-up, limit-down,
// consecutive-board ladder). No real exchange data source is wired yet, so the
// shipped provider only reports what the ranking store can actually back.
package marketstats

import (
	"context"
	"fmt"
)

// LadderLevel is the number of stocks on an N-day consecutive limit-up streak
type LadderLevel struct {
	Boards int `json:"boards"`
	Stocks int `json:"stocks"`
}

// Stats are the market figures for one trading day.
// When Available is false every price-derived figure is zero and must not be displayed as data.
type Stats struct {
	Date        string        `json:"date"`
	TotalStocks int           `json:"totalStocks"`
	Available   bool          `json:"available"`
	Source      string        `json:"source"`
	LimitUp     int           `json:"limitUp"`
	LimitDown   int           `json:"limitDown"`
	Up          int           `json:"up"`
	Down        int           `json:"down"`
	Flat        int           `json:"flat"`
	Ladder      []LadderLevel `json:"ladder"`
}

// Provider computes market statistics for a trading day
type Provider interface {
	MarketStats(ctx context.Context, date string) (Stats, error)
}

// StockCounter counts distinct stocks in the current snapshot of a day
type StockCounter interface {
	UniqueStocks(ctx context.Context, date string) (int, error)
}

// SourcePlaceholder marks figures that have no backing price data
const SourcePlaceholder = "placeholder"

// PlaceholderProvider reports the real ranked-stock count and marks every
// price-derived figure unavailable.
// TODO: replace with a provider backed by daily limit-up/limit-down pool data.
type PlaceholderProvider struct {
	counter StockCounter
}

// NewPlaceholderProvider creates a placeholder provider
func NewPlaceholderProvider(counter StockCounter) *PlaceholderProvider {
	return &PlaceholderProvider{counter: counter}
}

// MarketStats implements Provider
func (p *PlaceholderProvider) MarketStats(ctx context.Context, date string) (Stats, error) {
	total, err := p.counter.UniqueStocks(ctx, date)
	if err != nil {
		return Stats{}, fmt.Errorf("count stocks: %w", err)
	}

	return Stats{
		Date:        date,
		TotalStocks: total,
		Available:   false,
		Source:      SourcePlaceholder,
		Ladder:      []LadderLevel{},
	}, nil
}
