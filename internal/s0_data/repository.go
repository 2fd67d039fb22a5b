package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/hotrank/internal/contracts"
)

// Repository handles persistence for platforms, rankings, stock details and collection logs
// ⭐ SSOT: 랭킹 저장소 SQL은 이 패키지에서만
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Pool returns the underlying database pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.db
}

// ActivePlatforms returns active platforms ordered by display order
func (r *Repository) ActivePlatforms(ctx context.Context) ([]contracts.Platform, error) {
	query := `
		SELECT id, name, code, display_order, is_active, created_at
		FROM platforms
		WHERE is_active = 1
		ORDER BY display_order ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active platforms: %w", err)
	}
	defer rows.Close()

	var platforms []contracts.Platform
	for rows.Next() {
		var p contracts.Platform
		var active int16
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.DisplayOrder, &active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan platform: %w", err)
		}
		p.IsActive = active == 1
		platforms = append(platforms, p)
	}

	return platforms, rows.Err()
}

// SeedPlatforms inserts platforms when the table is empty.
// Returns the number of rows inserted; an already seeded table yields 0.
func (r *Repository) SeedPlatforms(ctx context.Context, platforms []contracts.Platform) (int, error) {
	var existing int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM platforms`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count platforms: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", contracts.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range platforms {
		active := 0
		if p.IsActive {
			active = 1
		}
		batch.Queue(`
			INSERT INTO platforms (name, code, display_order, is_active)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO NOTHING
		`, p.Name, p.Code, p.DisplayOrder, active)
	}

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for range platforms {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("%w: insert platform: %w", contracts.ErrPersistence, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("%w: close batch: %w", contracts.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", contracts.ErrPersistence, err)
	}

	return inserted, nil
}
