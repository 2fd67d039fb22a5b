package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/hotrank/internal/api"
	"github.com/wonny/hotrank/internal/api/handlers"
	"github.com/wonny/hotrank/internal/marketstats"
	"github.com/wonny/hotrank/internal/realtime"
	"github.com/wonny/hotrank/internal/s0_data/collector"
	"github.com/wonny/hotrank/internal/scheduler"
	"github.com/wonny/hotrank/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 + 수집 스케줄러 시작",
	Long: `REST API 서버와 주기 수집 스케줄러를 함께 시작합니다.

Endpoints:
  GET  /health
  GET  /api/platforms
  GET  /api/rankings/today
  GET  /api/rankings/{date}
  GET  /api/scores?date=
  GET  /api/sectors?date=&type=industry|concept
  GET  /api/sectors/{name}/stocks?date=&type=
  GET  /api/multi-date?dates=a,b&platformId=&limit=
  GET  /api/dates
  GET  /api/collections?limit=
  POST /api/collect
  GET  /api/market/stats?date=
  GET  /ws/collections

Example:
  go run ./cmd/hotrank serve
  go run ./cmd/hotrank serve --port 8080 --no-scheduler`,
	RunE: runServe,
}

var (
	servePort        string
	serveNoScheduler bool
)

// eventHistory is how many collection events a new websocket client receives
const eventHistory = 20

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (기본값: PORT)")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "주기 수집 비활성화")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}
	log := a.log

	hub := realtime.NewHub(eventHistory, log)
	col := a.newCollector(collector.WithNotifier(hub))
	svc := a.newService()

	router := api.NewRouter(api.Handlers{
		Ranking: handlers.NewRankingHandler(svc, log),
		Collect: handlers.NewCollectHandler(col, log),
		Market:  handlers.NewMarketHandler(marketstats.NewPlaceholderProvider(svc), svc.Today, log),
		WS:      hub.ServeWS,
	}, log)
	server := api.New(a.cfg, log, router)

	var handle *scheduler.Handle
	if !serveNoScheduler {
		sched := scheduler.New(log)
		handle, err = sched.Start(jobs.NewCollectionJob(col, log), a.cfg.Collect.Interval())
		if err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	if handle != nil {
		fmt.Printf("   Collecting every %s\n", handle.Interval())
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if handle != nil {
			<-handle.Stop().Done()
		}
		return err
	}

	log.Info("Shutting down...")

	// 진행 중인 수집이 끝날 때까지 대기
	if handle != nil {
		<-handle.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
