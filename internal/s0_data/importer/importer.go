// Package importer loads stock reference data (industry and concepts) from spreadsheets.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/logger"
)

// ErrMissingColumn is returned when a required header is absent
var ErrMissingColumn = errors.New("missing required column")

// header aliases, matched case-insensitively after trimming
var columnAliases = map[string][]string{
	"code":              {"代码", "股票代码", "code"},
	"name":              {"名称", "股票名称", "股票简称", "name"},
	"industry":          {"行业", "所属行业", "industry"},
	"secondaryIndustry": {"二级行业", "secondary_industry", "secondaryindustry"},
	"hotConcept":        {"热门概念", "hot_concept", "hotconcept"},
	"allConcepts":       {"所有概念", "概念", "all_concepts", "allconcepts"},
}

// Result summarizes one import
type Result struct {
	Rows     int   `json:"rows"`
	Skipped  int   `json:"skipped"`
	Affected int64 `json:"affected"`
}

// Importer upserts stock details parsed from an xlsx workbook
type Importer struct {
	store  contracts.StockDetailWriter
	logger *logger.Logger
}

// New creates a new Importer
func New(store contracts.StockDetailWriter, log *logger.Logger) *Importer {
	return &Importer{
		store:  store,
		logger: log.Module("importer"),
	}
}

// ImportFile parses path and upserts every valid row
func (i *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}

// Import parses r and upserts every valid row
func (i *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	details, skipped, err := ParseWorkbook(r)
	if err != nil {
		return Result{}, err
	}

	affected, err := i.store.UpsertStockDetails(ctx, details)
	if err != nil {
		return Result{}, fmt.Errorf("upsert stock details: %w", err)
	}

	i.logger.WithFields(map[string]interface{}{
		"rows":     len(details),
		"skipped":  skipped,
		"affected": affected,
	}).Info("Stock details imported")

	return Result{Rows: len(details), Skipped: skipped, Affected: affected}, nil
}

// ParseWorkbook reads the first sheet; the first row is the header.
// Rows without code or name are skipped. Later rows win on duplicate codes.
func ParseWorkbook(r io.Reader) ([]contracts.StockDetail, int, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, fmt.Errorf("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, 0, err
	}

	var details []contracts.StockDetail
	index := make(map[string]int)
	skipped := 0

	for _, row := range rows[1:] {
		d := contracts.StockDetail{
			Code:              cell(row, cols, "code"),
			Name:              cell(row, cols, "name"),
			Industry:          cell(row, cols, "industry"),
			SecondaryIndustry: cell(row, cols, "secondaryIndustry"),
			HotConcept:        cell(row, cols, "hotConcept"),
			AllConcepts:       cell(row, cols, "allConcepts"),
		}
		if d.Code == "" || d.Name == "" {
			skipped++
			continue
		}

		if at, ok := index[d.Code]; ok {
			details[at] = d
			continue
		}
		index[d.Code] = len(details)
		details = append(details, d)
	}

	return details, skipped, nil
}

func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for idx, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for field, aliases := range columnAliases {
			if _, seen := cols[field]; seen {
				continue
			}
			for _, alias := range aliases {
				if h == strings.ToLower(alias) {
					cols[field] = idx
				}
			}
		}
	}

	for _, required := range []string{"code", "name"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	return cols, nil
}

func cell(row []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
