package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/hotrank/internal/api/handlers"
	"github.com/wonny/hotrank/pkg/logger"
)

// Handlers groups the endpoint handlers the router mounts
type Handlers struct {
	Ranking *handlers.RankingHandler
	Collect *handlers.CollectHandler
	Market  *handlers.MarketHandler
	WS      http.HandlerFunc // nil disables /ws/collections
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Ranking queries
	api.HandleFunc("/platforms", h.Ranking.GetPlatforms).Methods("GET")
	api.HandleFunc("/rankings/today", h.Ranking.GetTodayRankings).Methods("GET")
	api.HandleFunc("/rankings/{date}", h.Ranking.GetRankingsByDate).Methods("GET")
	api.HandleFunc("/scores", h.Ranking.GetScores).Methods("GET")
	api.HandleFunc("/sectors", h.Ranking.GetHotSectors).Methods("GET")
	api.HandleFunc("/sectors/{name}/stocks", h.Ranking.GetSectorStocks).Methods("GET")
	api.HandleFunc("/multi-date", h.Ranking.GetMultiDate).Methods("GET")
	api.HandleFunc("/dates", h.Ranking.GetDates).Methods("GET")
	api.HandleFunc("/collections", h.Ranking.GetCollectionLogs).Methods("GET")

	// Collection
	if h.Collect != nil {
		api.HandleFunc("/collect", h.Collect.Collect).Methods("POST")
		api.HandleFunc("/collect", methodNotAllowed("POST"))
	}

	// Market
	if h.Market != nil {
		api.HandleFunc("/market/stats", h.Market.GetStats).Methods("GET")
	}

	// WebSocket
	if h.WS != nil {
		r.HandleFunc("/ws/collections", h.WS).Methods("GET")
	}

	r.MethodNotAllowedHandler = methodNotAllowed("")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "hotrank-api",
	})
}

// methodNotAllowed answers 405; a subrouter method mismatch otherwise falls through to 404
func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow != "" {
			w.Header().Set("Allow", allow)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Method not allowed",
		})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
