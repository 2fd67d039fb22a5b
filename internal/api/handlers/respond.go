package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/logger"
)

// Envelope is the success response body
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func respondData(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// isBadRequest reports whether err came from caller input
func isBadRequest(err error) bool {
	return errors.Is(err, contracts.ErrInvalidDate) || errors.Is(err, contracts.ErrInvalidParameter)
}

// respondQuery writes data, a 400 for invalid input, or the empty value for store failures.
// 조회 실패는 빈 결과로 응답 (로그만 남김)
func respondQuery(w http.ResponseWriter, log *logger.Logger, op string, data interface{}, empty interface{}, err error) {
	if err == nil {
		respondData(w, data)
		return
	}
	if isBadRequest(err) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.WithError(err).WithField("op", op).Error("Query failed, responding with empty result")
	respondData(w, empty)
}
