package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/logger"
)

// Collector runs one collection cycle
type Collector interface {
	CollectAndStore(ctx context.Context) (contracts.CollectResult, error)
}

// CollectHandler triggers collection on demand
type CollectHandler struct {
	collector Collector
	logger    *logger.Logger
}

// NewCollectHandler creates a new collect handler
func NewCollectHandler(col Collector, log *logger.Logger) *CollectHandler {
	return &CollectHandler{
		collector: col,
		logger:    log.Module("api"),
	}
}

// Collect runs a collection cycle and returns its result
// POST /api/collect
func (h *CollectHandler) Collect(w http.ResponseWriter, r *http.Request) {
	// 클라이언트 연결이 끊겨도 수집은 끝까지 진행
	ctx := context.WithoutCancel(r.Context())

	result, err := h.collector.CollectAndStore(ctx)
	if errors.Is(err, contracts.ErrCycleInProgress) {
		respondError(w, http.StatusConflict, "collection already in progress")
		return
	}
	if err != nil {
		h.logger.WithError(err).Warn("Manual collection failed")
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   result.ErrorMessage,
			"data":    result,
		})
		return
	}

	respondData(w, result)
}
