package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/hotrank/internal/contracts"
)

var rankingColumns = []string{"platform_id", "stock_name", "ranking", "collected_at", "collected_date"}

// InsertRankings writes every row with a single COPY statement.
// The statement is atomic: readers see all rows of the snapshot or none.
func (r *Repository) InsertRankings(ctx context.Context, rows []contracts.RankingRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"stock_rankings"},
		rankingColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{row.PlatformID, row.StockName, row.Ranking, row.CollectedAt, row.CollectedDate}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: copy stock_rankings: %w", contracts.ErrPersistence, err)
	}

	return n, nil
}

// LatestRankings returns each active platform's rows at that platform's own
// latest collected_at on date, joined with platform and stock detail.
// The global snapshot is the subset sharing the overall maximum collected_at.
func (r *Repository) LatestRankings(ctx context.Context, date string) ([]contracts.DailyRanking, error) {
	query := `
		WITH latest AS (
			SELECT r.platform_id, MAX(r.collected_at) AS collected_at
			FROM stock_rankings r
			JOIN platforms p ON p.id = r.platform_id AND p.is_active = 1
			WHERE r.collected_date = $1
			GROUP BY r.platform_id
		)
		SELECT
			r.id, r.platform_id, p.name, p.code, p.display_order,
			r.stock_name, r.ranking, r.collected_at, r.collected_date,
			COALESCE(d.industry, ''), COALESCE(d.hot_concept, '')
		FROM stock_rankings r
		JOIN latest l ON l.platform_id = r.platform_id AND l.collected_at = r.collected_at
		JOIN platforms p ON p.id = r.platform_id
		LEFT JOIN LATERAL (
			SELECT sd.industry, sd.hot_concept
			FROM stock_details sd
			WHERE sd.name = r.stock_name
			ORDER BY sd.id
			LIMIT 1
		) d ON TRUE
		WHERE r.collected_date = $1
		ORDER BY r.ranking ASC, p.display_order ASC, r.id ASC
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query latest rankings: %w", err)
	}
	defer rows.Close()

	var result []contracts.DailyRanking
	for rows.Next() {
		var d contracts.DailyRanking
		if err := rows.Scan(
			&d.ID, &d.PlatformID, &d.PlatformName, &d.PlatformCode, &d.DisplayOrder,
			&d.StockName, &d.Ranking, &d.CollectedAt, &d.CollectedDate,
			&d.Industry, &d.HotConcept,
		); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		result = append(result, d)
	}

	return result, rows.Err()
}

// PlatformRankings returns one platform's rows on date, newest snapshot first
func (r *Repository) PlatformRankings(ctx context.Context, platformID int64, date string, limit int) ([]contracts.RankingRow, error) {
	query := `
		SELECT id, platform_id, stock_name, ranking, collected_at, collected_date
		FROM stock_rankings
		WHERE platform_id = $1 AND collected_date = $2
		ORDER BY collected_at DESC, ranking ASC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, platformID, date, limit)
	if err != nil {
		return nil, fmt.Errorf("query platform rankings: %w", err)
	}
	defer rows.Close()

	var result []contracts.RankingRow
	for rows.Next() {
		var row contracts.RankingRow
		if err := rows.Scan(&row.ID, &row.PlatformID, &row.StockName, &row.Ranking, &row.CollectedAt, &row.CollectedDate); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// AvailableDates returns the newest distinct trading days, newest first
func (r *Repository) AvailableDates(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT collected_date
		FROM stock_rankings
		ORDER BY collected_date DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query available dates: %w", err)
	}
	defer rows.Close()

	dates := make([]string, 0, limit)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, d)
	}

	return dates, rows.Err()
}
