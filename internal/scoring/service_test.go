package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hotrank/internal/calendar"
	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/config"
	"github.com/wonny/hotrank/pkg/logger"
	"github.com/wonny/hotrank/pkg/redis"
)

type fakeStore struct {
	platforms     []contracts.Platform
	rows          map[string][]contracts.DailyRanking
	platformRows  map[string][]contracts.RankingRow
	dates         []string
	logs          []contracts.CollectionLog
	err           error
	platformCalls int
	rankingCalls  []string
	lastLogLimit  int
}

func (f *fakeStore) ActivePlatforms(context.Context) ([]contracts.Platform, error) {
	f.platformCalls++
	return f.platforms, f.err
}

func (f *fakeStore) LatestRankings(_ context.Context, date string) ([]contracts.DailyRanking, error) {
	f.rankingCalls = append(f.rankingCalls, date)
	return f.rows[date], f.err
}

func (f *fakeStore) PlatformRankings(_ context.Context, _ int64, date string, limit int) ([]contracts.RankingRow, error) {
	rows := f.platformRows[date]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, f.err
}

func (f *fakeStore) AvailableDates(_ context.Context, limit int) ([]string, error) {
	return f.dates, f.err
}

func (f *fakeStore) RecentCollectionLogs(_ context.Context, limit int) ([]contracts.CollectionLog, error) {
	f.lastLogLimit = limit
	return f.logs, f.err
}

// now is 2024-03-06 03:00 in UTC+8, so "today" is 2024-03-05
var serviceNow = time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC)

func newService(store Store, policy string, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return serviceNow })}, opts...)
	return NewService(store, calendar.Default(), config.ScoringConfig{SnapshotPolicy: policy, PlatformCacheTTL: time.Minute}, logger.NewNop(), opts...)
}

// mixedDay has platform A fresh at t1 and platform B last seen at t0
func mixedDay() *fakeStore {
	a1 := row(1, "中芯国际", 1, t1)
	a1.Industry, a1.HotConcept, a1.DisplayOrder = "半导体", "芯片", 1
	a2 := row(1, "比亚迪", 2, t1)
	a2.Industry, a2.DisplayOrder = "汽车", 1
	b1 := row(2, "中芯国际", 3, t0)
	b1.Industry, b1.HotConcept, b1.DisplayOrder = "半导体", "芯片", 2
	b2 := row(2, "北方华创", 1, t0)
	b2.Industry, b2.DisplayOrder = "半导体", 2

	return &fakeStore{
		platforms: []contracts.Platform{platformA, platformB},
		rows:      map[string][]contracts.DailyRanking{"2024-03-05": {a1, b2, a2, b1}},
	}
}

func TestService_TodayUsesMarketClock(t *testing.T) {
	store := mixedDay()
	s := newService(store, config.SnapshotPolicyMixed)

	assert.Equal(t, "2024-03-05", s.Today())

	rows, err := s.TodayRankings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-05"}, store.rankingCalls)

	// global snapshot: only platform A's t1 rows, ordered by rank
	require.Len(t, rows, 2)
	assert.Equal(t, "中芯国际", rows[0].StockName)
	assert.Equal(t, "比亚迪", rows[1].StockName)
}

func TestService_ScoreRankingsPerPlatform(t *testing.T) {
	s := newService(mixedDay(), config.SnapshotPolicyMixed)

	got, err := s.ScoreRankings(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "中芯国际", got[0].StockName)
	assert.Equal(t, 99.0, got[0].AvgScore)
	assert.Equal(t, 2, got[0].PlatformCount)
	assert.Equal(t, "半导体", got[0].Industry)
	assert.Equal(t, "芯片", got[0].Concept)

	assert.Equal(t, "北方华创", got[1].StockName)
	assert.Equal(t, 50.0, got[1].AvgScore)
	assert.Equal(t, "比亚迪", got[2].StockName)
	assert.Equal(t, 49.5, got[2].AvgScore)
}

func TestService_ForcedGlobalPolicy(t *testing.T) {
	s := newService(mixedDay(), config.SnapshotPolicyGlobal)

	got, err := s.ScoreRankings(context.Background(), "2024-03-05")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 50.0, got[0].AvgScore, "platform B excluded from the global snapshot")
}

func TestService_ForcedPerPlatformPolicy(t *testing.T) {
	s := newService(mixedDay(), config.SnapshotPolicyPerPlatform)

	sectors, err := s.HotSectors(context.Background(), "2024-03-05", contracts.SectorIndustry)
	require.NoError(t, err)
	assert.Equal(t, []contracts.SectorCount{{Name: "半导体", Count: 2}, {Name: "汽车", Count: 1}}, sectors)
}

func TestService_HotSectorsMixed(t *testing.T) {
	s := newService(mixedDay(), config.SnapshotPolicyMixed)

	sectors, err := s.HotSectors(context.Background(), "2024-03-05", contracts.SectorIndustry)
	require.NoError(t, err)
	assert.Equal(t, []contracts.SectorCount{{Name: "半导体", Count: 1}, {Name: "汽车", Count: 1}}, sectors)
}

func TestService_SectorStocks(t *testing.T) {
	s := newService(mixedDay(), config.SnapshotPolicyMixed)

	got, err := s.SectorStocks(context.Background(), "2024-03-05", contracts.SectorIndustry, "半导体")
	require.NoError(t, err)

	// membership from the global snapshot, score from per-platform rows
	require.Len(t, got, 1)
	assert.Equal(t, "中芯国际", got[0].StockName)
	assert.Equal(t, 99.0, got[0].AvgScore)

	_, err = s.SectorStocks(context.Background(), "2024-03-05", contracts.SectorIndustry, "")
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)
}

func TestService_InvalidDate(t *testing.T) {
	s := newService(mixedDay(), config.SnapshotPolicyMixed)
	ctx := context.Background()

	_, err := s.RankingsByDate(ctx, "2024/03/05")
	assert.ErrorIs(t, err, contracts.ErrInvalidDate)

	_, err = s.ScoreRankings(ctx, "yesterday")
	assert.ErrorIs(t, err, contracts.ErrInvalidDate)

	_, err = s.HotSectors(ctx, "2024-13-01", contracts.SectorConcept)
	assert.ErrorIs(t, err, contracts.ErrInvalidDate)
}

func TestService_EmptyDay(t *testing.T) {
	s := newService(&fakeStore{platforms: []contracts.Platform{platformA}}, config.SnapshotPolicyMixed)

	got, err := s.ScoreRankings(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, got)

	sectors, err := s.HotSectors(context.Background(), "2024-01-01", contracts.SectorIndustry)
	require.NoError(t, err)
	assert.Empty(t, sectors)
}

func TestService_StoreErrorPropagates(t *testing.T) {
	s := newService(&fakeStore{err: errors.New("connection refused")}, config.SnapshotPolicyMixed)

	_, err := s.ScoreRankings(context.Background(), "2024-03-05")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, contracts.ErrInvalidDate)
}

func TestService_MultiDateRankings(t *testing.T) {
	store := &fakeStore{platformRows: map[string][]contracts.RankingRow{
		"2024-03-04": {{StockName: "A1", Ranking: 1}},
		"2024-03-05": {{StockName: "B1", Ranking: 1}, {StockName: "B2", Ranking: 2}},
	}}
	s := newService(store, config.SnapshotPolicyMixed)
	ctx := context.Background()

	m, err := s.MultiDateRankings(ctx, []string{"2024-03-04", "2024-03-05"}, 1, 2)
	require.NoError(t, err)
	require.Len(t, m.Rankings, 2)
	assert.Equal(t, "", m.Rankings[1].Stocks["2024-03-04"])
	assert.Equal(t, "B2", m.Rankings[1].Stocks["2024-03-05"])

	m, err = s.MultiDateRankings(ctx, []string{"2024-03-05"}, 1, 0)
	require.NoError(t, err)
	assert.Len(t, m.Rankings, DefaultPivotLimit)

	_, err = s.MultiDateRankings(ctx, nil, 1, 10)
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)

	_, err = s.MultiDateRankings(ctx, []string{"2024-03-05"}, 0, 10)
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)

	_, err = s.MultiDateRankings(ctx, []string{"2024-03-05"}, 1, MaxPivotLimit+1)
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)

	_, err = s.MultiDateRankings(ctx, []string{"2024-03-05"}, 1, -1)
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)

	_, err = s.MultiDateRankings(ctx, []string{"bad"}, 1, 10)
	assert.ErrorIs(t, err, contracts.ErrInvalidDate)
}

func TestService_PlatformsCachePassThroughWhenDisabled(t *testing.T) {
	store := mixedDay()
	s := newService(store, config.SnapshotPolicyMixed, WithCache(redis.NewCache(redis.Disabled(), "test")))

	for i := 0; i < 2; i++ {
		platforms, err := s.Platforms(context.Background())
		require.NoError(t, err)
		assert.Len(t, platforms, 2)
	}
	assert.Equal(t, 2, store.platformCalls)
}

func TestService_CollectionLogsLimit(t *testing.T) {
	store := &fakeStore{}
	s := newService(store, config.SnapshotPolicyMixed)
	ctx := context.Background()

	_, err := s.CollectionLogs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultCollectionLogs, store.lastLogLimit)

	_, err = s.CollectionLogs(ctx, 10000)
	require.NoError(t, err)
	assert.Equal(t, MaxCollectionLogs, store.lastLogLimit)
}

func TestService_UniqueStocks(t *testing.T) {
	s := newService(mixedDay(), config.SnapshotPolicyMixed)

	n, err := s.UniqueStocks(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
