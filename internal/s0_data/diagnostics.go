package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/hotrank/internal/contracts"
)

// PlatformStats reports row counts and the latest collection time per platform
func (r *Repository) PlatformStats(ctx context.Context) ([]contracts.PlatformStat, error) {
	query := `
		SELECT p.id, p.name, COUNT(r.id), MAX(r.collected_at)
		FROM platforms p
		LEFT JOIN stock_rankings r ON r.platform_id = p.id
		GROUP BY p.id, p.name, p.display_order
		ORDER BY p.display_order ASC, p.id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query platform stats: %w", err)
	}
	defer rows.Close()

	var stats []contracts.PlatformStat
	for rows.Next() {
		var s contracts.PlatformStat
		var latest *time.Time
		if err := rows.Scan(&s.PlatformID, &s.PlatformName, &s.Rows, &latest); err != nil {
			return nil, fmt.Errorf("scan platform stat: %w", err)
		}
		s.LatestCollectedAt = latest
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// DateStats reports row counts for the newest trading days
func (r *Repository) DateStats(ctx context.Context, limit int) ([]contracts.DateStat, error) {
	query := `
		SELECT collected_date, COUNT(*)
		FROM stock_rankings
		GROUP BY collected_date
		ORDER BY collected_date DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query date stats: %w", err)
	}
	defer rows.Close()

	var stats []contracts.DateStat
	for rows.Next() {
		var s contracts.DateStat
		if err := rows.Scan(&s.Date, &s.Rows); err != nil {
			return nil, fmt.Errorf("scan date stat: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
