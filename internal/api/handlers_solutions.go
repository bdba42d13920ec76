// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ManuGH/eosgen/internal/catalog"
	"github.com/ManuGH/eosgen/internal/dataset"
	xglog "github.com/ManuGH/eosgen/internal/log"
	"github.com/ManuGH/eosgen/internal/metrics"
	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/ManuGH/eosgen/internal/study"
	"github.com/ManuGH/eosgen/internal/viability"
	"github.com/go-chi/chi/v5"
)

// MaxEvaluatePoints bounds ad-hoc tables.
const MaxEvaluatePoints = 10_000

const (
	maxBodyBytes    = 1 << 20
	defaultPageSize = 100
)

func (s *Server) handleKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"kinds": solution.Kinds()})
}

type evaluateRequest struct {
	Kind         solution.Kind      `json:"kind"`
	Params       map[string]float64 `json:"params"`
	Points       int                `json:"points,omitempty"`
	IncludeTable bool               `json:"include_table,omitempty"`
}

type evaluateResponse struct {
	SolutionID string             `json:"solution_id"`
	Kind       solution.Kind      `json:"kind"`
	Params     map[string]float64 `json:"params"`
	File       string             `json:"file"`
	Points     int                `json:"points"`
	Report     viability.Report   `json:"report"`
	Rows       []profile.Row      `json:"rows,omitempty"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Points == 0 {
		req.Points = s.cfg.Study.Points
	}
	if req.Points < 2 || req.Points > MaxEvaluatePoints {
		writeError(w, http.StatusBadRequest, fmt.Errorf("points must be between 2 and %d", MaxEvaluatePoints))
		return
	}

	c := study.Case{Kind: req.Kind, Params: req.Params}
	key := s.evaluateKey(c, req)
	body, cached, err := s.evals.Get(r.Context(), key, func(context.Context) ([]byte, error) {
		an, err := study.Analyze(c, req.Points, s.cfg.Study.ProfileOptions(), s.cfg.Checks)
		if err != nil {
			return nil, err
		}
		params := an.Solution.Params()
		resp := evaluateResponse{
			SolutionID: catalog.SolutionID(c.Kind, params),
			Kind:       c.Kind,
			Params:     params.Map(),
			File:       dataset.FileName(c.Kind, params),
			Points:     len(an.Table.Rows),
			Report:     an.Report,
		}
		if req.IncludeTable {
			resp.Rows = an.Table.Rows
		}
		return json.Marshal(resp)
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	metrics.RecordEvaluation(string(c.Kind), cached)

	w.Header().Set("Content-Type", "application/json")
	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// evaluateKey identifies a request independent of parameter order.
func (s *Server) evaluateKey(c study.Case, req evaluateRequest) string {
	raw := fmt.Sprintf("%s|%d|%t|%g|%t|%+v", c.Key(), req.Points, req.IncludeTable,
		s.cfg.Study.SurfaceFraction, s.cfg.Study.IncludeUnphysical, s.cfg.Checks)
	sum := sha256.Sum256([]byte(raw))
	return "eval:" + hex.EncodeToString(sum[:16])
}

type page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (s *Server) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := s.pagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	f := catalog.Filter{Kind: solution.Kind(q.Get("kind")), StudyID: q.Get("study")}
	if v := q.Get("acceptable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("acceptable: %w", err))
			return
		}
		f.Acceptable = &b
	}

	recs, total, err := s.catalog.ListSolutions(r.Context(), f, limit, offset)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	for i := range recs {
		recs[i].Report = nil
	}
	if recs == nil {
		recs = []catalog.Record{}
	}
	writeJSON(w, http.StatusOK, page[catalog.Record]{Items: recs, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.GetSolution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSolutionTable(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.GetSolution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	s.serveTable(w, r, rec.File)
}

func (s *Server) serveTable(w http.ResponseWriter, r *http.Request, name string) {
	f, err := s.index.Open(name)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) pagination(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageSize
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
	}
	if s.cfg.API.MaxPageSize > 0 {
		limit = min(limit, s.cfg.API.MaxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

func (s *Server) domainError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.internalError(w, r, err)
		return
	}
	writeError(w, code, err)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger := xglog.WithComponentFromContext(r.Context(), "api")
	logger.Error().Err(err).Str(xglog.FieldEvent, "api.internal_error").Str(xglog.FieldPath, r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
}

func decodeJSON(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("unsupported content type %q", ct)
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}
