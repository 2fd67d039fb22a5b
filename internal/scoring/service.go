package scoring

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/hotrank/internal/calendar"
	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/config"
	"github.com/wonny/hotrank/pkg/logger"
	"github.com/wonny/hotrank/pkg/redis"
)

// Query limits
const (
	DefaultPivotLimit     = 100
	MaxPivotLimit         = 500
	AvailableDatesLimit   = 30
	DefaultCollectionLogs = 20
	MaxCollectionLogs     = 200
)

// Store is the read-only persistence the engine queries.
// LatestRankings may return any superset of the per-platform latest rows; selection happens here.
type Store interface {
	contracts.PlatformReader
	contracts.RankingReader
	contracts.CollectionLogReader
}

// view identifies which snapshot mode a query uses under the mixed policy
type view int

const (
	viewDaily view = iota
	viewSector
	viewComposite
)

// Service implements the ranking query surface.
// Snapshot selection is recomputed on every call; only the platform list is cached.
// ⭐ SSOT: 점수 계산/집계 조회는 이 서비스에서만
type Service struct {
	store    Store
	cache    *redis.Cache
	cacheTTL time.Duration
	resolver calendar.Resolver
	policy   string
	logger   *logger.Logger
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithCache caches the active platform list
func WithCache(cache *redis.Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithClock overrides the clock used for "today"
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new scoring service
func NewService(store Store, resolver calendar.Resolver, cfg config.ScoringConfig, log *logger.Logger, opts ...Option) *Service {
	policy := cfg.SnapshotPolicy
	if policy == "" {
		policy = config.SnapshotPolicyMixed
	}

	s := &Service{
		store:    store,
		cacheTTL: cfg.PlatformCacheTTL,
		resolver: resolver,
		policy:   policy,
		logger:   log.Module("scoring"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// modeFor maps a view to a selection mode under the configured policy
func (s *Service) modeFor(v view) string {
	switch s.policy {
	case config.SnapshotPolicyGlobal:
		return ModeGlobal
	case config.SnapshotPolicyPerPlatform:
		return ModePerPlatform
	}
	if v == viewComposite {
		return ModePerPlatform
	}
	return ModeGlobal
}

// Today returns the current trading day in the market time zone
func (s *Service) Today() string {
	return s.resolver.Today(s.now())
}

// resolveDate validates date, defaulting to today when empty
func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	return calendar.ParseDate(date)
}

// Platforms returns active platforms ordered by display order
func (s *Service) Platforms(ctx context.Context) ([]contracts.Platform, error) {
	if s.cache == nil {
		return s.store.ActivePlatforms(ctx)
	}

	var platforms []contracts.Platform
	err := s.cache.GetOrSet(ctx, redis.ActivePlatformsKey, &platforms, s.cacheTTL, func() (interface{}, error) {
		return s.store.ActivePlatforms(ctx)
	})
	if err != nil {
		return nil, err
	}
	return platforms, nil
}

// TodayRankings returns the current snapshot rows of today
func (s *Service) TodayRankings(ctx context.Context) ([]contracts.DailyRanking, error) {
	return s.RankingsByDate(ctx, s.Today())
}

// RankingsByDate returns the current snapshot rows of date ordered by rank, then platform display order
func (s *Service) RankingsByDate(ctx context.Context, date string) ([]contracts.DailyRanking, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.LatestRankings(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load rankings for %s: %w", day, err)
	}

	selected := Select(s.modeFor(viewDaily), rows)
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Ranking != selected[j].Ranking {
			return selected[i].Ranking < selected[j].Ranking
		}
		return selected[i].DisplayOrder < selected[j].DisplayOrder
	})
	return selected, nil
}

// ScoreRankings returns composite scores for date (today when empty)
func (s *Service) ScoreRankings(ctx context.Context, date string) ([]contracts.ScoredStock, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	rows, platforms, err := s.load(ctx, day)
	if err != nil {
		return nil, err
	}

	return Composite(Select(s.modeFor(viewComposite), rows), platforms), nil
}

// HotSectors returns the top sectors of date by distinct stock count
func (s *Service) HotSectors(ctx context.Context, date string, t contracts.SectorType) ([]contracts.SectorCount, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.LatestRankings(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load rankings for %s: %w", day, err)
	}

	return RollupSectors(Select(s.modeFor(viewSector), rows), t), nil
}

// SectorStocks lists stocks whose industry or hot concept equals sector, by composite score
func (s *Service) SectorStocks(ctx context.Context, date string, t contracts.SectorType, sector string) ([]contracts.SectorStock, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	if sector == "" {
		return nil, fmt.Errorf("%w: sector name is required", contracts.ErrInvalidParameter)
	}

	rows, platforms, err := s.load(ctx, day)
	if err != nil {
		return nil, err
	}

	selection := Select(s.modeFor(viewSector), rows)
	scoring := Select(s.modeFor(viewComposite), rows)
	return SectorStocks(selection, scoring, platforms, t, sector), nil
}

// MultiDateRankings pivots one platform's ranks across dates.
// limit 0 means the default; otherwise it must be within [1, 500].
func (s *Service) MultiDateRankings(ctx context.Context, dates []string, platformID int64, limit int) (contracts.MultiDateMatrix, error) {
	if len(dates) == 0 {
		return contracts.MultiDateMatrix{}, fmt.Errorf("%w: at least one date is required", contracts.ErrInvalidParameter)
	}
	days, err := calendar.ParseDates(dates)
	if err != nil {
		return contracts.MultiDateMatrix{}, err
	}
	if platformID <= 0 {
		return contracts.MultiDateMatrix{}, fmt.Errorf("%w: platformId must be positive", contracts.ErrInvalidParameter)
	}
	if limit == 0 {
		limit = DefaultPivotLimit
	}
	if limit < 1 || limit > MaxPivotLimit {
		return contracts.MultiDateMatrix{}, fmt.Errorf("%w: limit must be within [1, %d]", contracts.ErrInvalidParameter, MaxPivotLimit)
	}

	perDate := make(map[string][]contracts.RankingRow, len(days))
	for _, day := range days {
		if _, done := perDate[day]; done {
			continue
		}
		rows, err := s.store.PlatformRankings(ctx, platformID, day, limit)
		if err != nil {
			return contracts.MultiDateMatrix{}, fmt.Errorf("load platform %d rankings for %s: %w", platformID, day, err)
		}
		perDate[day] = rows
	}

	return Pivot(days, perDate, limit), nil
}

// AvailableDates returns the newest 30 trading days with data
func (s *Service) AvailableDates(ctx context.Context) ([]string, error) {
	return s.store.AvailableDates(ctx, AvailableDatesLimit)
}

// CollectionLogs returns recent collection logs; limit is clamped to [1, 200]
func (s *Service) CollectionLogs(ctx context.Context, limit int) ([]contracts.CollectionLog, error) {
	if limit <= 0 {
		limit = DefaultCollectionLogs
	}
	if limit > MaxCollectionLogs {
		limit = MaxCollectionLogs
	}
	return s.store.RecentCollectionLogs(ctx, limit)
}

// UniqueStocks counts distinct stocks in the current snapshot of date
func (s *Service) UniqueStocks(ctx context.Context, date string) (int, error) {
	rows, err := s.RankingsByDate(ctx, date)
	if err != nil {
		return 0, err
	}
	return UniqueStocks(rows), nil
}

func (s *Service) load(ctx context.Context, day string) ([]contracts.DailyRanking, []contracts.Platform, error) {
	platforms, err := s.Platforms(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load platforms: %w", err)
	}

	rows, err := s.store.LatestRankings(ctx, day)
	if err != nil {
		return nil, nil, fmt.Errorf("load rankings for %s: %w", day, err)
	}

	return rows, platforms, nil
}
