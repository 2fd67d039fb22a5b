package handlers

import (
	"net/http"

	"github.com/wonny/hotrank/internal/calendar"
	"github.com/wonny/hotrank/internal/marketstats"
	"github.com/wonny/hotrank/pkg/logger"
)

// MarketHandler serves market breadth figures
type MarketHandler struct {
	provider marketstats.Provider
	today    func() string
	logger   *logger.Logger
}

// NewMarketHandler creates a new market handler; today supplies the default date
func NewMarketHandler(provider marketstats.Provider, today func() string, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		provider: provider,
		today:    today,
		logger:   log.Module("api"),
	}
}

// GetStats returns market statistics
// GET /api/market/stats?date=YYYY-MM-DD
func (h *MarketHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.today()
	} else if _, err := calendar.ParseDate(date); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.provider.MarketStats(r.Context(), date)
	empty := marketstats.Stats{Date: date, Source: marketstats.SourcePlaceholder, Ladder: []marketstats.LadderLevel{}}
	respondQuery(w, h.logger, "market.stats", stats, empty, err)
}
