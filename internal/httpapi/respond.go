package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dshills/geolog-mcp/pkg/types"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// statusFor maps the error taxonomy to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidInterval), errors.Is(err, types.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrDuplicateIdentifier):
		return http.StatusConflict
	case errors.Is(err, types.ErrLinkedRecordProtected):
		return http.StatusLocked
	case errors.Is(err, types.ErrIdGenerationExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var verr *types.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = "internal error"
	}
	respondJSON(w, status, body)
}

// withBody decodes a JSON body into T, copies path values with bind and
// responds with the result of fn
func withBody[T, R any](s *Server, status int, bind func(*http.Request, *T), fn func(context.Context, T) (R, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&in); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if bind != nil {
			bind(r, &in)
		}
		out, err := fn(r.Context(), in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, status, out)
	}
}

// withParam calls fn with one path value
func withParam[R any](s *Server, param string, fn func(context.Context, string) (R, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context(), chi.URLParam(r, param))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// pathInto copies a path value into a string field of the decoded body
func pathInto[T any](param string, field func(*T) *string) func(*http.Request, *T) {
	return func(r *http.Request, v *T) {
		*field(v) = chi.URLParam(r, param)
	}
}
