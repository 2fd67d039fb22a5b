package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// checkCmd prints storage diagnostics
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "DB/Redis 상태 및 수집 현황 점검",
	RunE:  runCheck,
}

var checkDays int

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVar(&checkDays, "days", 7, "조회할 최근 거래일 수")
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	health, err := a.db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("database health: %w", err)
	}
	fmt.Printf("Database: ok (%s, %d/%d conns)\n", health.ResponseTime, health.Stats.TotalConns, health.Stats.MaxConns)

	if a.redis.Enabled() {
		if err := a.redis.Ping(ctx); err != nil {
			fmt.Printf("Redis: FAILED (%v)\n", err)
		} else {
			fmt.Println("Redis: ok")
		}
	} else {
		fmt.Println("Redis: disabled")
	}

	fmt.Printf("Trading day: %s\n", a.resolver.Today(time.Now()))

	platforms, err := a.repo.PlatformStats(ctx)
	if err != nil {
		return fmt.Errorf("platform stats: %w", err)
	}
	fmt.Println("\nPlatforms:")
	for _, p := range platforms {
		latest := "never"
		if p.LatestCollectedAt != nil {
			latest = p.LatestCollectedAt.Format(time.RFC3339)
		}
		fmt.Printf("  %-8s rows=%-8d latest=%s\n", p.PlatformName, p.Rows, latest)
	}

	dates, err := a.repo.DateStats(ctx, checkDays)
	if err != nil {
		return fmt.Errorf("date stats: %w", err)
	}
	fmt.Println("\nRecent trading days:")
	for _, d := range dates {
		fmt.Printf("  %s rows=%d\n", d.Date, d.Rows)
	}

	logs, err := a.repo.RecentCollectionLogs(ctx, 5)
	if err != nil {
		return fmt.Errorf("collection logs: %w", err)
	}
	fmt.Println("\nRecent collections:")
	for _, l := range logs {
		fmt.Printf("  %s %-7s records=%d %s\n", l.CollectedAt.Format(time.RFC3339), l.Status, l.TotalRecords, l.ErrorMessage)
	}

	return nil
}
