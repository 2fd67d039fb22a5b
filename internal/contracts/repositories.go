package contracts

import "context"

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만
// Consumers compose the narrow interfaces they need.

// PlatformReader reads platform identities
type PlatformReader interface {
	// ActivePlatforms returns active platforms ordered by display order
	ActivePlatforms(ctx context.Context) ([]Platform, error)
}

// PlatformWriter seeds platform identities
type PlatformWriter interface {
	SeedPlatforms(ctx context.Context, platforms []Platform) (int, error)
}

// RankingWriter appends ranking rows
type RankingWriter interface {
	// InsertRankings writes every row in a single statement
	InsertRankings(ctx context.Context, rows []RankingRow) (int64, error)
}

// RankingReader reads persisted ranking rows
type RankingReader interface {
	// LatestRankings returns, for active platforms only, each platform's rows
	// at its own maximum collected_at on date, joined with platform and stock detail.
	LatestRankings(ctx context.Context, date string) ([]DailyRanking, error)

	// PlatformRankings returns one platform's rows on date ordered by
	// (collected_at desc, ranking asc), at most limit rows.
	PlatformRankings(ctx context.Context, platformID int64, date string, limit int) ([]RankingRow, error)

	// AvailableDates returns the newest distinct trading days, newest first
	AvailableDates(ctx context.Context, limit int) ([]string, error)
}

// CollectionLogWriter appends collection log rows
type CollectionLogWriter interface {
	InsertCollectionLog(ctx context.Context, log *CollectionLog) error
}

// CollectionLogReader reads recent collection logs
type CollectionLogReader interface {
	RecentCollectionLogs(ctx context.Context, limit int) ([]CollectionLog, error)
}

// StockDetailWriter upserts stock reference data
type StockDetailWriter interface {
	UpsertStockDetails(ctx context.Context, details []StockDetail) (int64, error)
}

// DiagnosticsReader exposes storage diagnostics
type DiagnosticsReader interface {
	PlatformStats(ctx context.Context) ([]PlatformStat, error)
	DateStats(ctx context.Context, limit int) ([]DateStat, error)
}
