package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hotrank",
	Short: "Hot-rank 수집/점수 엔진",
	Long: `Hot-rank Unified CLI

6개 플랫폼의 인기 종목 랭킹을 수집하고
플랫폼 통합 점수, 섹터 집계, 날짜별 비교를 제공합니다.

Usage:
  go run ./cmd/hotrank [command]

Examples:
  go run ./cmd/hotrank migrate
  go run ./cmd/hotrank seed platforms
  go run ./cmd/hotrank serve
  go run ./cmd/hotrank collect
  go run ./cmd/hotrank import details stocks.xlsx`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
}
