package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// collectCmd runs one collection cycle
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "랭킹 1회 수집",
	Long: `업스트림에서 랭킹을 1회 수집하여 저장합니다.

Example:
  go run ./cmd/hotrank collect`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.newCollector().CollectAndStore(context.Background())
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	fmt.Printf("✅ Collected %d rows for %s (dropped %d)\n", result.TotalRecords, result.CollectedDate, result.Dropped)
	return nil
}
