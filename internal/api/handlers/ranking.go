package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/logger"
)

// RankingService is the query surface the ranking endpoints need
type RankingService interface {
	Platforms(ctx context.Context) ([]contracts.Platform, error)
	TodayRankings(ctx context.Context) ([]contracts.DailyRanking, error)
	RankingsByDate(ctx context.Context, date string) ([]contracts.DailyRanking, error)
	ScoreRankings(ctx context.Context, date string) ([]contracts.ScoredStock, error)
	HotSectors(ctx context.Context, date string, t contracts.SectorType) ([]contracts.SectorCount, error)
	SectorStocks(ctx context.Context, date string, t contracts.SectorType, sector string) ([]contracts.SectorStock, error)
	MultiDateRankings(ctx context.Context, dates []string, platformID int64, limit int) (contracts.MultiDateMatrix, error)
	AvailableDates(ctx context.Context) ([]string, error)
	CollectionLogs(ctx context.Context, limit int) ([]contracts.CollectionLog, error)
}

// RankingHandler handles ranking query endpoints
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	service RankingService
	logger  *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(service RankingService, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		logger:  log.Module("api"),
	}
}

// GetPlatforms returns the active platforms
// GET /api/platforms
func (h *RankingHandler) GetPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.service.Platforms(r.Context())
	respondQuery(w, h.logger, "platforms", platforms, []contracts.Platform{}, err)
}

// GetTodayRankings returns the current snapshot of today's trading day
// GET /api/rankings/today
func (h *RankingHandler) GetTodayRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.service.TodayRankings(r.Context())
	respondQuery(w, h.logger, "rankings.today", rankings, []contracts.DailyRanking{}, err)
}

// GetRankingsByDate returns the current snapshot of a trading day
// GET /api/rankings/{date}
func (h *RankingHandler) GetRankingsByDate(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	rankings, err := h.service.RankingsByDate(r.Context(), date)
	respondQuery(w, h.logger, "rankings.date", rankings, []contracts.DailyRanking{}, err)
}

// GetScores returns the composite ranking
// GET /api/scores?date=YYYY-MM-DD
func (h *RankingHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.service.ScoreRankings(r.Context(), r.URL.Query().Get("date"))
	respondQuery(w, h.logger, "scores", scores, []contracts.ScoredStock{}, err)
}

// GetHotSectors returns the top sectors
// GET /api/sectors?date=&type=industry|concept
func (h *RankingHandler) GetHotSectors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, err := contracts.ParseSectorType(q.Get("type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sectors, err := h.service.HotSectors(r.Context(), q.Get("date"), t)
	respondQuery(w, h.logger, "sectors", sectors, []contracts.SectorCount{}, err)
}

// GetSectorStocks returns the stocks of one sector
// GET /api/sectors/{name}/stocks?date=&type=
func (h *RankingHandler) GetSectorStocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, err := contracts.ParseSectorType(q.Get("type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := mux.Vars(r)["name"]
	stocks, err := h.service.SectorStocks(r.Context(), q.Get("date"), t, name)
	respondQuery(w, h.logger, "sectors.stocks", stocks, []contracts.SectorStock{}, err)
}

// GetMultiDate returns one platform's ranks pivoted across dates
// GET /api/multi-date?dates=a,b&platformId=&limit=
func (h *RankingHandler) GetMultiDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var dates []string
	for _, d := range strings.Split(q.Get("dates"), ",") {
		if d = strings.TrimSpace(d); d != "" {
			dates = append(dates, d)
		}
	}

	platformID, err := strconv.ParseInt(q.Get("platformId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "platformId must be an integer")
		return
	}

	limit := 0
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}

	matrix, err := h.service.MultiDateRankings(r.Context(), dates, platformID, limit)
	empty := contracts.MultiDateMatrix{Dates: dates, Rankings: []contracts.PivotRow{}}
	respondQuery(w, h.logger, "multi-date", matrix, empty, err)
}

// GetDates returns the newest trading days with data
// GET /api/dates
func (h *RankingHandler) GetDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.service.AvailableDates(r.Context())
	respondQuery(w, h.logger, "dates", dates, []string{}, err)
}

// GetCollectionLogs returns recent collection logs
// GET /api/collections?limit=20
func (h *RankingHandler) GetCollectionLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil {
			limit = l
		}
	}

	logs, err := h.service.CollectionLogs(r.Context(), limit)
	respondQuery(w, h.logger, "collections", logs, []contracts.CollectionLog{}, err)
}
