package s0_data

import "github.com/wonny/hotrank/internal/contracts"

// DefaultPlatforms are the six canonical ranking sources, in display order.
// Names must match the parser's canonical names.
func DefaultPlatforms() []contracts.Platform {
	return []contracts.Platform{
		{Name: "开盘啦", Code: "kaipanla", DisplayOrder: 1, IsActive: true},
		{Name: "同花顺", Code: "tonghuashun", DisplayOrder: 2, IsActive: true},
		{Name: "东方财富", Code: "dongfangcaifu", DisplayOrder: 3, IsActive: true},
		{Name: "大智慧", Code: "dazhihui", DisplayOrder: 4, IsActive: true},
		{Name: "通达信", Code: "tongdaxin", DisplayOrder: 5, IsActive: true},
		{Name: "财联社", Code: "cailianshe", DisplayOrder: 6, IsActive: true},
	}
}
