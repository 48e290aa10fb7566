package shipments_api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BearBump/ShipTrack/internal/models"
)

const (
	msgNotFound          = "tracking number not found"
	msgRetryLater        = "unable to retrieve tracking details, please try again later"
	msgContactRetryLater = "message could not be sent, please try again later"
	maxBodyBytes         = 1 << 20
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}

// partialWarning: PartialFailureWarning не ошибка для клиента, основной результат есть.
func partialWarning(err error) (string, bool) {
	if w, ok := models.AsPartialFailure(err); ok {
		return w.Error(), true
	}
	return "", false
}

func statusOf(err error) int {
	switch {
	case models.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusServiceUnavailable {
		slog.Error("admin request failed", "error", err)
		msg = "storage unavailable, please try again later"
	}
	writeJSON(w, code, errorBody{Error: msg})
}

// writePublicError не раскрывает детали хранилища наружу.
func writePublicError(w http.ResponseWriter, err error) {
	switch code := statusOf(err); code {
	case http.StatusNotFound:
		writeJSON(w, code, errorBody{Error: msgNotFound})
	case http.StatusBadRequest:
		writeJSON(w, code, errorBody{Error: err.Error()})
	default:
		slog.Error("tracking lookup failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: msgRetryLater})
	}
}
