// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package profile samples analytic solutions into radial tables.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ManuGH/eosgen/internal/solution"
)

var (
	// ErrNoBoundary is returned when the solution has no radius where p = 0.
	ErrNoBoundary = errors.New("solution has no physical boundary")
	// ErrTooFewPoints is returned for tables with fewer than two samples.
	ErrTooFewPoints = errors.New("at least two points are required")
	// ErrEmptyTable is returned when filtering removed every sample.
	ErrEmptyTable = errors.New("no physical points in table")
)

// DefaultSurfaceFraction stops sampling just inside the surface so that the
// last row keeps a strictly positive pressure.
const DefaultSurfaceFraction = 0.999

// Options controls table generation.
type Options struct {
	// SurfaceFraction is the outermost sampled radius as a fraction of rb.
	SurfaceFraction float64
	// IncludeUnphysical keeps rows with p < 0 or ρ <= 0 (they are labelled 0).
	IncludeUnphysical bool
}

// Row is one radial sample.
type Row struct {
	R        float64 `json:"r"`
	Rho      float64 `json:"rho"`
	P        float64 `json:"p"`
	POverRho float64 `json:"p_over_rho"`
	CS2      float64 `json:"cs2"`
	Label    int     `json:"label"`
}

// Table is the sampled profile of one solution.
type Table struct {
	Kind     solution.Kind   `json:"kind"`
	Params   solution.Params `json:"params"`
	Boundary float64         `json:"boundary_radius"`
	Rows     []Row           `json:"rows"`
}

// Generate samples n radii evenly in [0, rb·SurfaceFraction].
func Generate(sol solution.Solution, n int, opts Options) (*Table, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}
	rb := sol.BoundaryRadius()
	if rb <= 0 || math.IsNaN(rb) {
		return nil, ErrNoBoundary
	}
	frac := opts.SurfaceFraction
	if frac <= 0 || frac > 1 {
		frac = DefaultSurfaceFraction
	}

	rMax := rb * frac
	table := &Table{
		Kind:     sol.Kind(),
		Params:   sol.Params(),
		Boundary: rb,
		Rows:     make([]Row, 0, n),
	}
	for i := 0; i < n; i++ {
		r := rMax * float64(i) / float64(n-1)
		rho := sol.Density(r)
		p := sol.Pressure(r)
		if !opts.IncludeUnphysical && (p < 0 || rho <= 0) {
			continue
		}
		row := Row{R: r, Rho: rho, P: p, CS2: SoundSpeedSquared(sol, r)}
		if rho != 0 {
			row.POverRho = p / rho
		}
		row.Label = PointLabel(row)
		table.Rows = append(table.Rows, row)
	}
	if len(table.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	return table, nil
}

// PointLabel is 1 when a single sample is locally acceptable: positive
// density, non-negative pressure, ρ >= p and 0 <= c_s² <= 1.
func PointLabel(row Row) int {
	if row.Rho > 0 && row.P >= 0 && row.Rho >= row.P && row.CS2 >= 0 && row.CS2 <= 1 {
		return 1
	}
	return 0
}

// SoundSpeedSquared returns dp/dρ at r. Solutions with an analytic sound
// speed are used directly; otherwise the ratio of central differences in r
// is taken. A vanishing density gradient yields +Inf.
func SoundSpeedSquared(sol solution.Solution, r float64) float64 {
	if ss, ok := sol.(solution.SoundSpeeder); ok {
		return ss.SoundSpeedSquared(r)
	}
	rb := sol.BoundaryRadius()
	h := rb * 1e-5
	if minR := rb * 1e-3; r < minR {
		// Both gradients vanish at the centre; take the limit from just outside.
		r = minR
	}
	dp := sol.Pressure(r+h) - sol.Pressure(r-h)
	drho := sol.Density(r+h) - sol.Density(r-h)
	if math.Abs(drho) <= 1e-14*math.Abs(sol.Density(r)) {
		return math.Inf(1)
	}
	return dp / drho
}

// MarshalJSON encodes a non-finite sound speed (incompressible fluid) as null.
func (r Row) MarshalJSON() ([]byte, error) {
	type alias Row
	return json.Marshal(struct {
		alias
		CS2 *float64 `json:"cs2"`
	}{alias(r), finiteOrNil(r.CS2)})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
