// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ManuGH/eosgen/internal/catalog"
	xglog "github.com/ManuGH/eosgen/internal/log"
	"github.com/ManuGH/eosgen/internal/study"
	"github.com/go-chi/chi/v5"
)

type startStudyRequest struct {
	Cases []study.Case     `json:"cases,omitempty"`
	Grids []study.GridSpec `json:"grids,omitempty"`
}

type startStudyResponse struct {
	ID     string              `json:"id"`
	Status catalog.StudyStatus `json:"status"`
	Cases  int                 `json:"cases"`
}

// handleStartStudy runs the posted cases, or the configured study when the
// body is empty.
func (s *Server) handleStartStudy(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusNotImplemented, errors.New("studies are disabled"))
		return
	}
	var req startStudyRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		cases []study.Case
		err   error
	)
	if len(req.Cases) == 0 && len(req.Grids) == 0 {
		cases, err = s.cfg.Study.Plan()
	} else {
		cases, err = study.Plan(req.Cases, req.Grids)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if len(cases) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: no cases", errBadRequest))
		return
	}

	id, done, err := s.runner.Start(s.baseCtx, cases)
	if errors.Is(err, study.ErrRunning) {
		writeServiceUnavailable(w, err, retryAfterRunning)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	go s.awaitStudy(done)

	logger := xglog.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str(xglog.FieldEvent, "api.study_started").
		Str(xglog.FieldStudyID, id).
		Int("cases", len(cases)).
		Msg("study started")
	w.Header().Set("Location", "/api/v1/studies/"+id)
	writeJSON(w, http.StatusAccepted, startStudyResponse{ID: id, Status: catalog.StudyRunning, Cases: len(cases)})
}

// awaitStudy refreshes the file index once a study finished, so listings
// are current even without a filesystem watcher.
func (s *Server) awaitStudy(done <-chan study.Result) {
	res := <-done
	if s.index == nil {
		return
	}
	if err := s.index.Refresh(); err != nil {
		logger := xglog.WithComponent("api")
		logger.Warn().Err(err).Str(xglog.FieldStudyID, res.StudyID).Msg("refresh file index")
	}
}

func (s *Server) handleListStudies(w http.ResponseWriter, r *http.Request) {
	limit, _, err := s.pagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	studies, err := s.catalog.ListStudies(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if studies == nil {
		studies = []catalog.Study{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": studies, "running": s.runner != nil && s.runner.Running()})
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	st, err := s.catalog.GetStudy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
