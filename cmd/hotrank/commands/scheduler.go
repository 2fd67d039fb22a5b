package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/hotrank/internal/scheduler"
	"github.com/wonny/hotrank/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "수집 스케줄러만 시작 (API 서버 없음)",
	Long: `시작 즉시 1회 수집 후 COLLECT_INTERVAL_MINUTES 간격으로 반복합니다.
이전 수집이 끝나지 않았으면 해당 회차는 건너뜁니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	col := a.newCollector()
	sched := scheduler.New(a.log)

	handle, err := sched.Start(jobs.NewCollectionJob(col, a.log), a.cfg.Collect.Interval())
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	fmt.Printf("✅ Scheduler started: %s every %s\n", handle.Name(), handle.Interval())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	<-handle.Stop().Done()

	stats := handle.Stats()
	fmt.Printf("Scheduler stopped (runs=%d success=%d failed=%d skipped=%d)\n",
		stats.TotalRuns, stats.SuccessCount, stats.FailureCount, stats.SkippedCount)

	return nil
}
