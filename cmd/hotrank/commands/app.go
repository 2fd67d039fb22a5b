package commands

import (
	"fmt"

	"github.com/wonny/hotrank/internal/calendar"
	"github.com/wonny/hotrank/internal/external/upstream"
	"github.com/wonny/hotrank/internal/s0_data"
	"github.com/wonny/hotrank/internal/s0_data/collector"
	"github.com/wonny/hotrank/internal/scoring"
	"github.com/wonny/hotrank/pkg/config"
	"github.com/wonny/hotrank/pkg/database"
	"github.com/wonny/hotrank/pkg/httputil"
	"github.com/wonny/hotrank/pkg/logger"
	"github.com/wonny/hotrank/pkg/redis"
)

const (
	cachePrefix = "hotrank"
	leaseName   = "collection"
)

// app holds the shared dependencies every command builds from
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	repo     *s0_data.Repository
	resolver calendar.Resolver
}

// bootstrap loads config and opens the database and redis connections
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rc, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    rc,
		repo:     s0_data.NewRepository(db.Pool),
		resolver: calendar.NewResolver(cfg.Market),
	}, nil
}

// Close releases connections
func (a *app) Close() {
	_ = a.redis.Close()
	a.db.Close()
}

// newCollector wires the upstream scraper, store and overlap guards
func (a *app) newCollector(opts ...collector.Option) *collector.Collector {
	httpClient := httputil.New(a.cfg, a.log).DisableRetry()
	scraper := upstream.NewClient(httpClient, a.cfg.Upstream, a.log)

	guard := collector.Guards{&collector.LocalGuard{}}
	if a.redis.Enabled() {
		lease := redis.NewLease(a.redis, cachePrefix, leaseName, a.cfg.Collect.LeaseTTL)
		guard = append(guard, collector.NewLeaseGuard(lease))
	}

	opts = append([]collector.Option{collector.WithGuard(guard)}, opts...)
	return collector.NewCollector(scraper, a.repo, a.resolver, a.log, opts...)
}

// newService wires the query engine
func (a *app) newService() *scoring.Service {
	var opts []scoring.Option
	if a.redis.Enabled() {
		opts = append(opts, scoring.WithCache(redis.NewCache(a.redis, cachePrefix)))
	}
	return scoring.NewService(a.repo, a.resolver, a.cfg.Scoring, a.log, opts...)
}
