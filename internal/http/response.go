package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success string `json:"success"`
	ID      string `json:"_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads a single JSON object from the request body. Errors are
// written to w; the caller only needs to return.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "request_too_large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		respondError(w, http.StatusBadRequest, "invalid_request", "request body is empty")
	default:
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
	}
	return false
}

// handleServiceError maps catalog errors onto HTTP statuses.
// StatusClientClosedRequest is the non-standard status recorded when the
// client went away before the response was written.
const StatusClientClosedRequest = 499

func handleServiceError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Code:    "validation_failed",
			Details: fieldDetails(verr),
		})
	case errors.Is(err, service.ErrInvalidID):
		respondError(w, http.StatusBadRequest, "invalid_id", err.Error())
	case errors.Is(err, service.ErrInvalidFilter):
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
	case errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrSlideNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, repository.ErrCategoryExists):
		respondError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, service.ErrCategoryInUse):
		respondError(w, http.StatusConflict, "category_in_use", err.Error())
	case errors.Is(err, context.Canceled):
		l := logger.WithContext(r.Context(), log)
		l.Debug().Str("path", r.URL.Path).Msg("request canceled by client")
		respondError(w, StatusClientClosedRequest, "request_canceled", "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected):
		l := logger.WithContext(r.Context(), log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("database unavailable")
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "database unavailable")
	default:
		l := logger.WithContext(r.Context(), log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func fieldDetails(verr *service.ValidationError) string {
	parts := make([]string, 0, len(verr.Fields))
	for field, msg := range verr.Fields {
		parts = append(parts, field+" "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
