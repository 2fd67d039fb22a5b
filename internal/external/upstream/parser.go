package upstream

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/hotrank/internal/contracts"
)

// RawRow is one upstream row: a rank field plus one column per platform label
type RawRow map[string]json.RawMessage

// RankField is the upstream column carrying the rank
const RankField = "排名"

// labelToPlatform maps upstream column labels to canonical platform names.
// New platforms must be added here; unmapped labels are ignored.
var labelToPlatform = map[string]string{
	"开盘啦": "开盘啦",
	"同花顺": "同花顺",
	"东财":  "东方财富",
	"大智慧": "大智慧",
	"通达信": "通达信",
	"财联社": "财联社",
}

// PlatformForLabel returns the canonical name for an upstream label
func PlatformForLabel(label string) (string, bool) {
	name, ok := labelToPlatform[label]
	return name, ok
}

// Parse normalizes raw rows into (platform, stock, rank) tuples.
// Rows without a positive integer rank are skipped, as are blank or non-string cells.
// Duplicates are kept.
func Parse(rows []RawRow) []contracts.ParsedRanking {
	var out []contracts.ParsedRanking

	for _, row := range rows {
		rank, ok := parseRank(row[RankField])
		if !ok {
			continue
		}

		for label, raw := range row {
			platform, ok := labelToPlatform[label]
			if !ok {
				continue
			}

			var name string
			if err := json.Unmarshal(raw, &name); err != nil {
				continue
			}
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			out = append(out, contracts.ParsedRanking{
				PlatformName: platform,
				StockName:    name,
				Rank:         rank,
			})
		}
	}

	return out
}

// parseRank accepts a JSON number or numeric string holding a positive integer
func parseRank(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return 0, false
		}
		text = num.String()
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
