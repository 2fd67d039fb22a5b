// Package calendar maps wall-clock instants to trading-day keys.
package calendar

import (
	"fmt"
	"time"

	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/config"
)

// DateLayout is the trading-day key format
const DateLayout = "2006-01-02"

// Resolver assigns instants to trading days.
// Instants before CutoffHour (market local time) belong to the previous calendar day.
type Resolver struct {
	Location   *time.Location
	CutoffHour int
}

// NewResolver builds a resolver from the market config
func NewResolver(cfg config.MarketConfig) Resolver {
	return Resolver{
		Location:   cfg.Location(),
		CutoffHour: cfg.CutoffHour,
	}
}

// Default is UTC+8 with a 06:00 cutoff
func Default() Resolver {
	return NewResolver(config.MarketConfig{UTCOffsetHours: 8, CutoffHour: 6})
}

// TradingDay returns the trading-day key for t
func (r Resolver) TradingDay(t time.Time) string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}

	local := t.In(loc)
	if local.Hour() < r.CutoffHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(DateLayout)
}

// Today is the trading day of now, used when a query omits its date
func (r Resolver) Today(now time.Time) string {
	return r.TradingDay(now)
}

// ParseDate validates a YYYY-MM-DD key and returns it normalized
func ParseDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q (expected YYYY-MM-DD)", contracts.ErrInvalidDate, s)
	}
	return d.Format(DateLayout), nil
}

// ParseDates validates every key in order
func ParseDates(keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		d, err := ParseDate(k)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
