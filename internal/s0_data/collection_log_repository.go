package s0_data

import (
	"context"
	"fmt"

	"github.com/wonny/hotrank/internal/contracts"
)

// InsertCollectionLog appends one collection log row
func (r *Repository) InsertCollectionLog(ctx context.Context, log *contracts.CollectionLog) error {
	if !log.Status.Valid() {
		return fmt.Errorf("%w: invalid collection status %q", contracts.ErrPersistence, log.Status)
	}

	query := `
		INSERT INTO collection_logs (collected_at, status, total_records, error_message)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		log.CollectedAt,
		string(log.Status),
		log.TotalRecords,
		log.ErrorMessage,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert collection log: %w", contracts.ErrPersistence, err)
	}

	return nil
}

// RecentCollectionLogs returns the newest collection logs first
func (r *Repository) RecentCollectionLogs(ctx context.Context, limit int) ([]contracts.CollectionLog, error) {
	query := `
		SELECT id, collected_at, status, total_records, COALESCE(error_message, ''), created_at
		FROM collection_logs
		ORDER BY collected_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query collection logs: %w", err)
	}
	defer rows.Close()

	var logs []contracts.CollectionLog
	for rows.Next() {
		var l contracts.CollectionLog
		var status string
		if err := rows.Scan(&l.ID, &l.CollectedAt, &status, &l.TotalRecords, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan collection log: %w", err)
		}
		l.Status = contracts.CollectionStatus(status)
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
