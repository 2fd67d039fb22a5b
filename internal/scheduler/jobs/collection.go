package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/internal/scheduler"
	"github.com/wonny/hotrank/pkg/logger"
)

// Collector runs one collection cycle
type Collector interface {
	CollectAndStore(ctx context.Context) (contracts.CollectResult, error)
}

// CollectionJob collects platform rankings on every tick
// ⭐ SSOT: 랭킹 수집 스케줄 작업은 이 Job에서만
type CollectionJob struct {
	collector Collector
	logger    *logger.Logger
}

// NewCollectionJob creates a new collection job
func NewCollectionJob(col Collector, log *logger.Logger) *CollectionJob {
	return &CollectionJob{
		collector: col,
		logger:    log.Module("jobs"),
	}
}

// Name returns the job name
func (j *CollectionJob) Name() string {
	return "ranking_collection"
}

// Run executes one collection cycle
func (j *CollectionJob) Run(ctx context.Context) error {
	result, err := j.collector.CollectAndStore(ctx)
	if errors.Is(err, contracts.ErrCycleInProgress) {
		return fmt.Errorf("%w: %w", scheduler.ErrSkipped, err)
	}
	if err != nil {
		return fmt.Errorf("collect rankings: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"collected_date": result.CollectedDate,
		"total_records":  result.TotalRecords,
	}).Debug("Scheduled collection finished")

	return nil
}
