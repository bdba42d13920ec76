// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/ManuGH/eosgen/internal/viability"
)

// File names written next to the tables.
const (
	SummaryFile = "summary.json"
	IndexFile   = "dataset.csv"
)

// CaseResult is the outcome of one study case.
type CaseResult struct {
	Kind            solution.Kind                `json:"kind"`
	Params          map[string]float64           `json:"params"`
	SolutionID      string                       `json:"solution_id,omitempty"`
	Valid           bool                         `json:"valid"`
	Acceptable      bool                         `json:"acceptable"`
	DataPoints      int                          `json:"data_points"`
	File            string                       `json:"file,omitempty"`
	CentralDensity  float64                      `json:"central_density"`
	CentralPressure float64                      `json:"central_pressure"`
	BoundaryRadius  float64                      `json:"boundary_radius"`
	Compactness     float64                      `json:"compactness"`
	PhysicalChecks  map[viability.Criterion]bool `json:"physical_checks,omitempty"`
	EoSError        *float64                     `json:"eos_error"`
	Error           string                       `json:"error,omitempty"`
}

// Summary is the study document written to summary.json.
type Summary struct {
	StudyID    string       `json:"study_id,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	TotalCases int          `json:"total_cases"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []CaseResult `json:"results"`
}

// WriteSummary atomically writes s as indented JSON.
func WriteSummary(ctx context.Context, path string, s Summary) error {
	return writeAtomic(ctx, path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	})
}

// IndexColumns is the header of dataset.csv.
var IndexColumns = []string{
	"file", "kind", "params", "points",
	"central_density", "central_pressure", "boundary_radius", "compactness",
	"label",
}

// WriteIndex atomically writes one row per valid result, labelled 1 when the
// solution passed every required check.
func WriteIndex(ctx context.Context, path string, results []CaseResult) error {
	return writeAtomic(ctx, path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(IndexColumns); err != nil {
			return err
		}
		for _, res := range results {
			if !res.Valid {
				continue
			}
			label := "0"
			if res.Acceptable {
				label = "1"
			}
			if err := cw.Write([]string{
				res.File,
				string(res.Kind),
				paramsFromMap(res.Kind, res.Params).String(),
				strconv.Itoa(res.DataPoints),
				formatFloat(res.CentralDensity),
				formatFloat(res.CentralPressure),
				formatFloat(res.BoundaryRadius),
				formatFloat(res.Compactness),
				label,
			}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// paramsFromMap orders params the way the kind declares them.
func paramsFromMap(kind solution.Kind, m map[string]float64) solution.Params {
	spec, ok := solution.Lookup(kind)
	if !ok {
		return nil
	}
	out := make(solution.Params, 0, len(spec.Params))
	for _, name := range spec.Params {
		if v, ok := m[name]; ok {
			out = append(out, solution.Param{Name: name, Value: v})
		}
	}
	return out
}
