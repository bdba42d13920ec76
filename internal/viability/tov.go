// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package viability

import (
	"encoding/json"
	"math"

	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/solution"
)

// TOVResidual returns the largest relative deviation between the numerical
// pressure gradient of sol and the Tolman-Oppenheimer-Volkoff equation
//
//	dp/dr = -(ρ + p)(m + 4πr³p) / (r(r - 2m))
//
// over n radii spread across (0.05, 0.95)·rb. Exact solutions give values at
// the level of the finite-difference error. Returns +Inf without a boundary.
func TOVResidual(sol solution.Solution, n int) float64 {
	rb := sol.BoundaryRadius()
	if rb <= 0 || n < 1 {
		return math.Inf(1)
	}
	h := rb * 1e-5
	worst := 0.0
	for i := 0; i < n; i++ {
		r := rb * (0.05 + 0.9*float64(i)/float64(max(n-1, 1)))
		rho, p, m := sol.Density(r), sol.Pressure(r), sol.Mass(r)
		if r <= 2*m {
			return math.Inf(1)
		}
		rhs := -(rho + p) * (m + 4*math.Pi*r*r*r*p) / (r * (r - 2*m))
		lhs := (sol.Pressure(r+h) - sol.Pressure(r-h)) / (2 * h)
		scale := math.Abs(rhs)
		if scale == 0 {
			scale = math.Abs(lhs)
		}
		if scale == 0 {
			continue
		}
		res := math.Abs(lhs-rhs) / scale
		if math.IsNaN(res) {
			return math.Inf(1)
		}
		worst = math.Max(worst, res)
	}
	return worst
}

// VerifyEquationOfState compares the tabulated densities with the
// closed-form ρ(p) of the solution, in percent.
func VerifyEquationOfState(eos solution.EquationOfState, rows []profile.Row) EoSError {
	var sum, worst float64
	count := 0
	for _, row := range rows {
		if row.Rho <= 0 {
			continue
		}
		e := math.Abs(eos.DensityAt(row.P)-row.Rho) / row.Rho * 100
		sum += e
		worst = math.Max(worst, e)
		count++
	}
	if count == 0 {
		return EoSError{MeanPercent: math.NaN(), MaxPercent: math.NaN()}
	}
	return EoSError{MeanPercent: sum / float64(count), MaxPercent: worst}
}

// MarshalJSON encodes non-finite values as null.
func (c Check) MarshalJSON() ([]byte, error) {
	type alias Check
	return json.Marshal(struct {
		alias
		Value *float64 `json:"value"`
	}{alias(c), finiteOrNil(c.Value)})
}

// MarshalJSON encodes non-finite values as null.
func (e EoSError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MeanPercent *float64 `json:"mean_percent"`
		MaxPercent  *float64 `json:"max_percent"`
	}{finiteOrNil(e.MeanPercent), finiteOrNil(e.MaxPercent)})
}

// MarshalJSON encodes non-finite values (incompressible fluids, horizons)
// as null.
func (r Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(struct {
		alias
		SurfaceRedshift *float64 `json:"surface_redshift"`
		MaxCS2          *float64 `json:"max_cs2"`
	}{alias(r), finiteOrNil(r.SurfaceRedshift), finiteOrNil(r.MaxCS2)})
}

func finiteOrNil(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}
