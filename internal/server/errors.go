package server

import (
	"errors"
	"net/http"

	"github.com/KaramelBytes/exoscope/internal/analysis"
	"github.com/KaramelBytes/exoscope/internal/explorer"
	"github.com/go-chi/render"
)

// APIError is the JSON error body returned by every endpoint.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newError(status int, code, msg string) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: msg}
}

func badRequest(msg string) *APIError {
	return newError(http.StatusBadRequest, "INVALID_REQUEST", msg)
}

func notFound(msg string) *APIError {
	return newError(http.StatusNotFound, "NOT_FOUND", msg)
}

func unavailable(err error) *APIError {
	e := newError(http.StatusServiceUnavailable, "DATASET_UNAVAILABLE", "dataset not loaded")
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// toAPIError maps domain errors onto HTTP statuses.
func toAPIError(err error) *APIError {
	var ae *APIError
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, explorer.ErrUnknownField), errors.Is(err, analysis.ErrNotNumeric):
		return badRequest(err.Error())
	case errors.Is(err, explorer.ErrNotLoaded):
		return unavailable(nil)
	}
	return newError(http.StatusInternalServerError, "INTERNAL", "internal error")
}
