package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/hotrank/internal/calendar"
	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/logger"
)

// logWriteTimeout bounds the best-effort collection log write
const logWriteTimeout = 5 * time.Second

// Scraper fetches and parses the current upstream rankings
type Scraper interface {
	Scrape(ctx context.Context) ([]contracts.ParsedRanking, error)
}

// Store is the persistence the collector writes to
type Store interface {
	contracts.PlatformReader
	contracts.RankingWriter
	contracts.CollectionLogWriter
}

// Notifier receives an event after every finished cycle
type Notifier interface {
	NotifyCollection(ctx context.Context, event contracts.CollectionEvent)
}

// Collector runs collection cycles: fetch, resolve platforms, stamp one snapshot, insert, log
// ⭐ SSOT: 랭킹 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	scraper  Scraper
	store    Store
	resolver calendar.Resolver
	guard    Guard
	notifier Notifier
	logger   *logger.Logger
	now      func() time.Time
}

// Option configures a Collector
type Option func(*Collector)

// WithGuard replaces the default in-process guard
func WithGuard(g Guard) Option {
	return func(c *Collector) { c.guard = g }
}

// WithNotifier registers a cycle listener
func WithNotifier(n Notifier) Option {
	return func(c *Collector) { c.notifier = n }
}

// WithClock overrides the snapshot clock
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// NewCollector creates a new Collector instance
func NewCollector(scraper Scraper, store Store, resolver calendar.Resolver, log *logger.Logger, opts ...Option) *Collector {
	c := &Collector{
		scraper:  scraper,
		store:    store,
		resolver: resolver,
		guard:    &LocalGuard{},
		logger:   log.Module("collector"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectAndStore runs one collection cycle.
// The returned error is nil only on success; ErrCycleInProgress means nothing was done.
// Every other failure has already been recorded as a failed collection log.
func (c *Collector) CollectAndStore(ctx context.Context) (contracts.CollectResult, error) {
	release, ok, err := c.guard.TryAcquire(ctx)
	if err != nil {
		return contracts.CollectResult{ErrorMessage: err.Error()}, fmt.Errorf("acquire cycle guard: %w", err)
	}
	if !ok {
		return contracts.CollectResult{ErrorMessage: contracts.ErrCycleInProgress.Error()}, contracts.ErrCycleInProgress
	}
	defer release()

	// postgres keeps microseconds; every row of the cycle shares this exact value
	collectedAt := c.now().Truncate(time.Microsecond)
	result := contracts.CollectResult{
		CollectedAt:   collectedAt,
		CollectedDate: c.resolver.TradingDay(collectedAt),
	}

	parsed, err := c.scraper.Scrape(ctx)
	if err != nil {
		return c.fail(ctx, result, err)
	}
	if len(parsed) == 0 {
		return c.fail(ctx, result, contracts.ErrEmptyPayload)
	}

	platforms, err := c.store.ActivePlatforms(ctx)
	if err != nil {
		return c.fail(ctx, result, fmt.Errorf("load active platforms: %w", err))
	}

	rows, dropped := c.resolve(parsed, platforms, result)
	result.Dropped = dropped

	inserted, err := c.store.InsertRankings(ctx, rows)
	if err != nil {
		if !errors.Is(err, contracts.ErrPersistence) {
			err = fmt.Errorf("%w: %w", contracts.ErrPersistence, err)
		}
		return c.fail(ctx, result, err)
	}

	result.Success = true
	result.TotalRecords = int(inserted)

	c.writeLog(ctx, &contracts.CollectionLog{
		CollectedAt:  collectedAt,
		Status:       contracts.CollectionSuccess,
		TotalRecords: result.TotalRecords,
	})

	c.logger.WithFields(map[string]interface{}{
		"collected_date": result.CollectedDate,
		"total_records":  result.TotalRecords,
		"dropped":        dropped,
	}).Info("Collection cycle completed")

	c.notify(ctx, result)
	return result, nil
}

// resolve maps parsed platform names to active platform IDs.
// Unknown names are dropped and warned once per name.
func (c *Collector) resolve(parsed []contracts.ParsedRanking, platforms []contracts.Platform, result contracts.CollectResult) ([]contracts.RankingRow, int) {
	ids := make(map[string]int64, len(platforms))
	for _, p := range platforms {
		if p.IsActive {
			ids[p.Name] = p.ID
		}
	}

	rows := make([]contracts.RankingRow, 0, len(parsed))
	unknown := make(map[string]int)

	for _, p := range parsed {
		id, ok := ids[p.PlatformName]
		if !ok {
			unknown[p.PlatformName]++
			continue
		}
		rows = append(rows, contracts.RankingRow{
			PlatformID:    id,
			StockName:     p.StockName,
			Ranking:       p.Rank,
			CollectedAt:   result.CollectedAt,
			CollectedDate: result.CollectedDate,
		})
	}

	dropped := 0
	for name, n := range unknown {
		dropped += n
		c.logger.WithFields(map[string]interface{}{
			"platform": name,
			"rows":     n,
		}).Warn("Dropping rankings for unknown platform")
	}

	return rows, dropped
}

// fail records a failed cycle; the log write never replaces err
func (c *Collector) fail(ctx context.Context, result contracts.CollectResult, err error) (contracts.CollectResult, error) {
	result.Success = false
	result.TotalRecords = 0
	result.ErrorMessage = err.Error()

	c.logger.WithError(err).WithField("collected_date", result.CollectedDate).Error("Collection cycle failed")

	c.writeLog(ctx, &contracts.CollectionLog{
		CollectedAt:  result.CollectedAt,
		Status:       contracts.CollectionFailed,
		TotalRecords: 0,
		ErrorMessage: err.Error(),
	})

	c.notify(ctx, result)
	return result, err
}

// writeLog is best-effort and survives a cancelled cycle context
func (c *Collector) writeLog(ctx context.Context, log *contracts.CollectionLog) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logWriteTimeout)
	defer cancel()

	if err := c.store.InsertCollectionLog(wctx, log); err != nil {
		c.logger.WithError(err).WithField("status", string(log.Status)).Warn("Failed to write collection log")
	}
}

func (c *Collector) notify(ctx context.Context, result contracts.CollectResult) {
	if c.notifier == nil {
		return
	}
	c.notifier.NotifyCollection(ctx, contracts.CollectionEvent{
		Type:   contracts.EventCollectionFinished,
		Result: result,
	})
}
