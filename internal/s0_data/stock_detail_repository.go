package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/hotrank/internal/contracts"
)

// UpsertStockDetails inserts or updates stock details keyed by code in one transaction
func (r *Repository) UpsertStockDetails(ctx context.Context, details []contracts.StockDetail) (int64, error) {
	if len(details) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO stock_details (code, name, industry, secondary_industry, hot_concept, all_concepts)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			industry = EXCLUDED.industry,
			secondary_industry = EXCLUDED.secondary_industry,
			hot_concept = EXCLUDED.hot_concept,
			all_concepts = EXCLUDED.all_concepts,
			updated_at = NOW()
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", contracts.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(query, d.Code, d.Name, d.Industry, d.SecondaryIndustry, d.HotConcept, d.AllConcepts)
	}

	results := tx.SendBatch(ctx, batch)
	var affected int64
	for range details {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("%w: upsert stock detail: %w", contracts.ErrPersistence, err)
		}
		affected += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("%w: close batch: %w", contracts.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", contracts.ErrPersistence, err)
	}

	return affected, nil
}
