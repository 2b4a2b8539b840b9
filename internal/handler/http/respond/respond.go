// Package respond writes JSON responses for the ops endpoint. Error bodies
// never echo credentials.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// internalMessage replaces the body of every 5xx error response.
const internalMessage = "internal server error"

// JSON writes v as JSON with the given status code. A nil v writes no body.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes {"error": msg} with credentials masked.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": SanitizeError(err)})
}

// SafeError writes client errors (4xx) like Error. Server errors (5xx) get a
// generic body and the masked detail goes to the log instead.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError {
		Error(w, code, err)
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": internalMessage})
}

// InternalError writes the generic 500 body without logging. Callers that
// already logged the failure use it.
func InternalError(w http.ResponseWriter) {
	JSON(w, http.StatusInternalServerError, map[string]string{"error": internalMessage})
}
