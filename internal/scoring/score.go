// Package scoring turns per-platform ranks into comparable composite scores
// and sector and multi-date rollups. Functions in this file are pure.
package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/wonny/hotrank/internal/contracts"
)

// Snapshot selection modes
const (
	ModeGlobal      = "global"
	ModePerPlatform = "per_platform"
)

// MaxScore is the score of rank 1
const MaxScore = 100

// TopSectors is the number of sector buckets returned by a rollup
const TopSectors = 10

// Score maps a rank to [1, 100]: rank 1 scores 100, floored at 1 from rank 100 on
func Score(rank int) int {
	s := MaxScore + 1 - rank
	if s < 1 {
		return 1
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

// Select applies the snapshot selection mode to rows
func Select(mode string, rows []contracts.DailyRanking) []contracts.DailyRanking {
	if mode == ModePerPlatform {
		return SelectPerPlatform(rows)
	}
	return SelectGlobal(rows)
}

// SelectGlobal keeps only rows sharing the maximum collected_at across all rows.
// Platforms whose latest row is older are excluded entirely.
func SelectGlobal(rows []contracts.DailyRanking) []contracts.DailyRanking {
	var latest time.Time
	for _, r := range rows {
		if r.CollectedAt.After(latest) {
			latest = r.CollectedAt
		}
	}

	out := make([]contracts.DailyRanking, 0, len(rows))
	for _, r := range rows {
		if r.CollectedAt.Equal(latest) {
			out = append(out, r)
		}
	}
	return out
}

// SelectPerPlatform keeps, per platform, the rows at that platform's own maximum collected_at
func SelectPerPlatform(rows []contracts.DailyRanking) []contracts.DailyRanking {
	latest := make(map[int64]time.Time)
	for _, r := range rows {
		if r.CollectedAt.After(latest[r.PlatformID]) {
			latest[r.PlatformID] = r.CollectedAt
		}
	}

	out := make([]contracts.DailyRanking, 0, len(rows))
	for _, r := range rows {
		if r.CollectedAt.Equal(latest[r.PlatformID]) {
			out = append(out, r)
		}
	}
	return out
}

// scoredEntry keeps the exact average next to the exported float
type scoredEntry struct {
	stock contracts.ScoredStock
	avg   decimal.Decimal
}

// Composite computes per-stock composite scores over the given snapshot rows.
// Each stock's score sum is divided by the number of active platforms and
// rounded half-up to 2 decimals. Rows of inactive platforms are ignored; a
// platform reporting a stock more than once contributes its best rank.
func Composite(rows []contracts.DailyRanking, platforms []contracts.Platform) []contracts.ScoredStock {
	entries := composite(rows, platforms)
	out := make([]contracts.ScoredStock, len(entries))
	for i, e := range entries {
		out[i] = e.stock
	}
	return out
}

func composite(rows []contracts.DailyRanking, platforms []contracts.Platform) []scoredEntry {
	active := make(map[int64]contracts.Platform)
	order := make(map[int64]int)
	for _, p := range platforms {
		if p.IsActive {
			active[p.ID] = p
			order[p.ID] = len(order)
		}
	}
	if len(active) == 0 {
		return []scoredEntry{}
	}
	denominator := decimal.NewFromInt(int64(len(active)))

	type stockAgg struct {
		best     map[int64]int // platform -> best rank
		industry string
		concept  string
	}

	aggs := make(map[string]*stockAgg)
	var names []string

	for _, r := range rows {
		if _, ok := active[r.PlatformID]; !ok {
			continue
		}
		a, ok := aggs[r.StockName]
		if !ok {
			a = &stockAgg{best: make(map[int64]int)}
			aggs[r.StockName] = a
			names = append(names, r.StockName)
		}
		if rank, seen := a.best[r.PlatformID]; !seen || r.Ranking < rank {
			a.best[r.PlatformID] = r.Ranking
		}
		if a.industry == "" {
			a.industry = strings.TrimSpace(r.Industry)
		}
		if a.concept == "" {
			a.concept = strings.TrimSpace(r.HotConcept)
		}
	}

	entries := make([]scoredEntry, 0, len(names))
	for _, name := range names {
		a := aggs[name]

		platformIDs := make([]int64, 0, len(a.best))
		for id := range a.best {
			platformIDs = append(platformIDs, id)
		}
		sort.Slice(platformIDs, func(i, j int) bool { return order[platformIDs[i]] < order[platformIDs[j]] })

		sum := 0
		scores := make([]contracts.PlatformScore, 0, len(platformIDs))
		for _, id := range platformIDs {
			rank := a.best[id]
			s := Score(rank)
			sum += s
			scores = append(scores, contracts.PlatformScore{Name: active[id].Name, Rank: rank, Score: s})
		}

		avg := decimal.NewFromInt(int64(sum)).DivRound(denominator, 2)
		entries = append(entries, scoredEntry{
			avg: avg,
			stock: contracts.ScoredStock{
				StockName:     name,
				AvgScore:      avg.InexactFloat64(),
				PlatformCount: len(scores),
				Platforms:     scores,
				Industry:      a.industry,
				Concept:       a.concept,
			},
		})
	}

	sortEntries(entries)
	return entries
}

// newCollator returns a zh collator; collators are not safe for concurrent use
func newCollator() *collate.Collator {
	return collate.New(language.Chinese)
}

// less is the total order: rounded score desc, platform count desc,
// zh collation of the name, then byte order
func less(col *collate.Collator, a, b scoredEntry) bool {
	if c := a.avg.Cmp(b.avg); c != 0 {
		return c > 0
	}
	if a.stock.PlatformCount != b.stock.PlatformCount {
		return a.stock.PlatformCount > b.stock.PlatformCount
	}
	if c := col.CompareString(a.stock.StockName, b.stock.StockName); c != 0 {
		return c < 0
	}
	return a.stock.StockName < b.stock.StockName
}

func sortEntries(entries []scoredEntry) {
	col := newCollator()
	sort.SliceStable(entries, func(i, j int) bool { return less(col, entries[i], entries[j]) })
}

// sectorOf returns the sector attribute of a joined row
func sectorOf(r contracts.DailyRanking, t contracts.SectorType) string {
	if t == contracts.SectorConcept {
		return strings.TrimSpace(r.HotConcept)
	}
	return strings.TrimSpace(r.Industry)
}

// RollupSectors counts distinct stocks per sector value and returns the top 10.
// Blank sector values are not counted; ties keep first-seen order.
func RollupSectors(rows []contracts.DailyRanking, t contracts.SectorType) []contracts.SectorCount {
	seen := make(map[string]bool)
	counts := make(map[string]int)
	var order []string

	for _, r := range rows {
		if seen[r.StockName] {
			continue
		}
		seen[r.StockName] = true

		sector := sectorOf(r, t)
		if sector == "" {
			continue
		}
		if _, ok := counts[sector]; !ok {
			order = append(order, sector)
		}
		counts[sector]++
	}

	out := make([]contracts.SectorCount, 0, len(order))
	for _, name := range order {
		out = append(out, contracts.SectorCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if len(out) > TopSectors {
		out = out[:TopSectors]
	}
	return out
}

// SectorStocks lists the stocks of one sector with their composite scores.
// Membership comes from selection rows by exact match on industry or hot
// concept; scores come from scoring rows.
func SectorStocks(selection, scoring []contracts.DailyRanking, platforms []contracts.Platform, t contracts.SectorType, sector string) []contracts.SectorStock {
	members := make(map[string]bool)
	for _, r := range selection {
		if sectorOf(r, t) == sector {
			members[r.StockName] = true
		}
	}
	if len(members) == 0 {
		return []contracts.SectorStock{}
	}

	filtered := make([]contracts.DailyRanking, 0, len(scoring))
	for _, r := range scoring {
		if members[r.StockName] {
			filtered = append(filtered, r)
		}
	}

	entries := composite(filtered, platforms)
	out := make([]contracts.SectorStock, 0, len(entries))
	for _, e := range entries {
		out = append(out, contracts.SectorStock{
			StockName:     e.stock.StockName,
			Industry:      e.stock.Industry,
			HotConcept:    e.stock.Concept,
			AvgScore:      e.stock.AvgScore,
			PlatformCount: e.stock.PlatformCount,
		})
	}
	return out
}

// Pivot builds the rank x date matrix for ranks 1..limit.
// Rows per date are expected newest snapshot first; the first stock seen for a rank wins.
// Missing ranks render as "".
func Pivot(dates []string, perDate map[string][]contracts.RankingRow, limit int) contracts.MultiDateMatrix {
	byDate := make(map[string]map[int]string, len(dates))
	for _, d := range dates {
		ranks := make(map[int]string)
		for _, r := range perDate[d] {
			if _, taken := ranks[r.Ranking]; !taken {
				ranks[r.Ranking] = r.StockName
			}
		}
		byDate[d] = ranks
	}

	rows := make([]contracts.PivotRow, 0, limit)
	for rank := 1; rank <= limit; rank++ {
		stocks := make(map[string]string, len(dates))
		for _, d := range dates {
			stocks[d] = byDate[d][rank]
		}
		rows = append(rows, contracts.PivotRow{Rank: rank, Stocks: stocks})
	}

	return contracts.MultiDateMatrix{Dates: dates, Rankings: rows}
}

// UniqueStocks counts distinct stock names
func UniqueStocks(rows []contracts.DailyRanking) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[r.StockName] = struct{}{}
	}
	return len(seen)
}
