package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hotrank/internal/contracts"
)

var shanghai = time.FixedZone("UTC+8", 8*3600)

func TestTradingDay_CutoffBoundaries(t *testing.T) {
	r := Default()

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"midnight belongs to previous day", time.Date(2024, 3, 5, 0, 0, 0, 0, shanghai), "2024-03-04"},
		{"just before cutoff", time.Date(2024, 3, 5, 5, 59, 59, 0, shanghai), "2024-03-04"},
		{"cutoff exactly", time.Date(2024, 3, 5, 6, 0, 0, 0, shanghai), "2024-03-05"},
		{"trading hours", time.Date(2024, 3, 5, 10, 30, 0, 0, shanghai), "2024-03-05"},
		{"late night", time.Date(2024, 3, 5, 23, 59, 0, 0, shanghai), "2024-03-05"},
		{"month rollover", time.Date(2024, 3, 1, 2, 0, 0, 0, shanghai), "2024-02-29"},
		{"year rollover", time.Date(2024, 1, 1, 1, 0, 0, 0, shanghai), "2023-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.TradingDay(tt.at))
		})
	}
}

func TestTradingDay_IndependentOfInputZone(t *testing.T) {
	r := Default()

	// 2024-03-04 20:00 UTC is 2024-03-05 04:00 in UTC+8
	utc := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-04", r.TradingDay(utc))

	// 2024-03-04 23:00 UTC is 2024-03-05 07:00 in UTC+8
	utc = time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-05", r.TradingDay(utc))
}

func TestTradingDay_EveryHour(t *testing.T) {
	r := Default()
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, shanghai)

	for h := 0; h < 24; h++ {
		at := day.Add(time.Duration(h) * time.Hour)
		want := "2024-06-10"
		if h < 6 {
			want = "2024-06-09"
		}
		got := r.TradingDay(at)
		assert.Equal(t, want, got, "hour %d", h)

		parsed, err := ParseDate(got)
		require.NoError(t, err)
		assert.Equal(t, got, parsed)
	}
}

func TestTradingDay_NilLocationUsesUTC(t *testing.T) {
	r := Resolver{CutoffHour: 6}
	assert.Equal(t, "2024-03-04", r.TradingDay(time.Date(2024, 3, 5, 3, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	for _, bad := range []string{"", "2024-2-3", "2023-02-29", "20240101", "today"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, contracts.ErrInvalidDate, bad)
	}
}

func TestParseDates(t *testing.T) {
	got, err := ParseDates([]string{"2024-01-02", "2024-01-03"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, got)

	_, err = ParseDates([]string{"2024-01-02", "bad"})
	assert.ErrorIs(t, err, contracts.ErrInvalidDate)
}
