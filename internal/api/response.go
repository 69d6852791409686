package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/gegenstand/internal/model"
	"github.com/erazemk/gegenstand/internal/service"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// errMalformedBody is a request body that is not a JSON object at all.
var errMalformedBody = errors.New("invalid request body")

type fieldErrorResponse struct {
	Error  string            `json:"error"`
	Fields model.FieldErrors `json:"fields"`
}

// writeError maps a service error to its status code. Anything unknown is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields model.FieldErrors
	switch {
	case errors.As(err, &fields):
		jsonResponse(w, http.StatusBadRequest, fieldErrorResponse{Error: "validation failed", Fields: fields})
	case errors.Is(err, errMalformedBody):
		jsonError(w, http.StatusBadRequest, errMalformedBody.Error())
	case errors.Is(err, service.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrDuplicateEmail):
		jsonError(w, http.StatusBadRequest, "email already in use")
	case errors.Is(err, service.ErrInvalidCredentials):
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", RequestID(r.Context()), "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
