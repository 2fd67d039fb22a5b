package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/hotrank/internal/s0_data"
)

// migrateCmd applies the embedded schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 적용",
	RunE:  runMigrate,
}

// seedCmd groups seed subcommands
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "기본 데이터 입력",
}

var seedPlatformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "6개 기본 플랫폼 입력 (테이블이 비어 있을 때만)",
	RunE:  runSeedPlatforms,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedPlatformsCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.db.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	fmt.Println("✅ Schema applied")
	return nil
}

func runSeedPlatforms(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.repo.SeedPlatforms(context.Background(), s0_data.DefaultPlatforms())
	if err != nil {
		return fmt.Errorf("seed platforms: %w", err)
	}

	if n == 0 {
		fmt.Println("Platforms already present, nothing seeded")
		return nil
	}
	fmt.Printf("✅ Seeded %d platforms\n", n)
	return nil
}
