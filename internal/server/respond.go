package server

import (
	"encoding/json"
	"errors"
	"net/http"

	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
)

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail mirrors a structured error.
type ErrorDetail struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	// the status line is already sent; nothing useful can be done on failure
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(code scerrors.ErrorCode) int {
	switch code {
	case scerrors.ErrCodeSessionNotFound, scerrors.ErrCodeMovieNotFound:
		return http.StatusNotFound
	case scerrors.ErrCodeSessionBadRequest:
		return http.StatusBadRequest
	case scerrors.ErrCodeSessionLimit:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := scerrors.As(err)
	if !ok {
		se = scerrors.Wrap("INTERNAL", "internal error", err)
	}

	status := statusFor(se.Code)
	if status >= http.StatusInternalServerError {
		a.logger.WithError(err).ErrorContext(r.Context(), "request failed", "path", r.URL.Path)
	} else {
		a.logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "code", string(se.Code))
	}
	if a.metrics != nil {
		a.metrics.Errors.WithLabelValues(string(se.Code)).Inc()
	}

	writeJSON(w, status, ErrorBody{Error: ErrorDetail{
		Code:        string(se.Code),
		Message:     se.Message,
		Suggestions: se.Suggestions,
	}})
}

var errEmptyBody = errors.New("request body is empty")
