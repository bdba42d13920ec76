// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/ManuGH/eosgen/internal/dataset"
	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/viability"
	"github.com/go-chi/chi/v5"
)

type fileResponse struct {
	Name    string            `json:"name"`
	Meta    map[string]string `json:"meta,omitempty"`
	Columns []string          `json:"columns"`
	Rows    []profile.Row     `json:"rows"`
	Checks  []viability.Check `json:"checks"`
	Passed  bool              `json:"passed"`
}

func (s *Server) handleListFiles(w http.ResponseWriter, _ *http.Request) {
	entries := s.index.List()
	if entries == nil {
		entries = []dataset.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"dir": s.index.Dir(), "items": entries})
}

// handleGetFile returns the rows of a table with the table-only checks. The
// raw CSV is served instead when the client asks for text/csv.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if r.Header.Get("Accept") == "text/csv" {
		s.serveTable(w, r, name)
		return
	}
	parsed, err := s.index.Load(name)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	checks := viability.CheckRows(parsed.Rows, parsed.HasColumn("cs2"))
	passed := true
	for _, c := range checks {
		if c.Required && !c.Passed {
			passed = false
		}
	}
	writeJSON(w, http.StatusOK, fileResponse{
		Name:    name,
		Meta:    parsed.Meta,
		Columns: parsed.Columns,
		Rows:    parsed.Rows,
		Checks:  checks,
		Passed:  passed,
	})
}
