package marketstats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	n   int
	err error
}

func (s stubCounter) UniqueStocks(context.Context, string) (int, error) {
	return s.n, s.err
}

func TestPlaceholderProvider(t *testing.T) {
	p := NewPlaceholderProvider(stubCounter{n: 87})

	stats, err := p.MarketStats(context.Background(), "2024-03-05")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-05", stats.Date)
	assert.Equal(t, 87, stats.TotalStocks)
	assert.False(t, stats.Available)
	assert.Equal(t, SourcePlaceholder, stats.Source)
	assert.Zero(t, stats.LimitUp)
	assert.Zero(t, stats.LimitDown)
	assert.Zero(t, stats.Up+stats.Down+stats.Flat)
	assert.Empty(t, stats.Ladder)
}

func TestPlaceholderProvider_Deterministic(t *testing.T) {
	p := NewPlaceholderProvider(stubCounter{n: 40})

	a, err := p.MarketStats(context.Background(), "2024-03-05")
	require.NoError(t, err)
	b, err := p.MarketStats(context.Background(), "2024-03-05")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPlaceholderProvider_Error(t *testing.T) {
	p := NewPlaceholderProvider(stubCounter{err: errors.New("db down")})

	_, err := p.MarketStats(context.Background(), "2024-03-05")
	assert.Error(t, err)
}
