// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ManuGH/eosgen/internal/catalog"
	"github.com/ManuGH/eosgen/internal/dataset"
	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/ManuGH/eosgen/internal/study"
)

// retryAfterRunning is advertised while a study holds the runner.
const retryAfterRunning = 30

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeServiceUnavailable answers 503 with Retry-After.
func writeServiceUnavailable(w http.ResponseWriter, err error, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeError(w, http.StatusServiceUnavailable, err)
}

// statusFor maps domain sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, dataset.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrInvalidName),
		errors.Is(err, solution.ErrUnknownKind),
		errors.Is(err, study.ErrInvalidGrid),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, solution.ErrInvalidParameters),
		errors.Is(err, profile.ErrNoBoundary),
		errors.Is(err, profile.ErrTooFewPoints),
		errors.Is(err, profile.ErrEmptyTable),
		errors.Is(err, dataset.ErrMalformedTable),
		errors.Is(err, dataset.ErrMissingColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, study.ErrRunning):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")
