package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/hotrank/internal/s0_data/importer"
)

// importCmd groups import subcommands
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "외부 데이터 가져오기",
}

var importDetailsCmd = &cobra.Command{
	Use:   "details [xlsx]",
	Short: "종목 업종/개념 엑셀 가져오기",
	Long: `첫 시트의 헤더(代码/名称/行业/二级行业/热门概念/所有概念)를 읽어
stock_details 테이블에 upsert 합니다.

Example:
  go run ./cmd/hotrank import details stocks.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runImportDetails,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importDetailsCmd)
}

func runImportDetails(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := importer.New(a.repo, a.log).ImportFile(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("import details: %w", err)
	}

	fmt.Printf("✅ Imported %d rows (skipped %d, affected %d)\n", result.Rows, result.Skipped, result.Affected)
	return nil
}
