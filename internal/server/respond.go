// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pdiddy/safescan/pkg/types"
)

type errorDetail struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

type errorBody struct {
	Error     string        `json:"error"`
	Details   []errorDetail `json:"details,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decode reads and validates a JSON body. On failure it writes a 400 and
// returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, fmt.Errorf("decoding request body: %w: %v", types.ErrInvalidInput, err))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]errorDetail, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, errorDetail{Path: fe.Namespace(), Info: validationMessage(fe)})
			}
			writeJSON(w, http.StatusBadRequest, errorBody{
				Error:     "validation failed",
				Details:   details,
				RequestID: requestIDFrom(r.Context()),
			})
			return false
		}
		s.writeError(w, r, fmt.Errorf("validating request: %w: %v", types.ErrInvalidInput, err))
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must have at least " + fe.Param() + " entries"
	case "excludesall":
		return fe.Field() + " must not contain " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// writeError maps error kinds to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger(r.Context()).Error("request failed", zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg, RequestID: requestIDFrom(r.Context())})
}
