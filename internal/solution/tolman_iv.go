// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package solution

import (
	"fmt"
	"math"
)

// TolmanIV is Tolman's solution IV in the Delgaty & Lake form:
//
//	e^ν = B²(1 + r²/A²)
//	e^λ = (1 + 2r²/A²) / ((1 - r²/R²)(1 + r²/A²))
type TolmanIV struct {
	a float64
	r float64
}

// NewTolmanIV builds a Tolman IV sphere. A and R must be positive and R > A,
// otherwise the central pressure is not positive and there is no boundary.
func NewTolmanIV(a, r float64) (*TolmanIV, error) {
	if a <= 0 || r <= 0 {
		return nil, fmt.Errorf("%w: tolman-iv: A and R must be positive (A=%g, R=%g)", ErrInvalidParameters, a, r)
	}
	if r <= a {
		return nil, fmt.Errorf("%w: tolman-iv: R must be greater than A (A=%g, R=%g)", ErrInvalidParameters, a, r)
	}
	return &TolmanIV{a: a, r: r}, nil
}

func (t *TolmanIV) Kind() Kind { return KindTolmanIV }

func (t *TolmanIV) Params() Params {
	return Params{{Name: "A", Value: t.a}, {Name: "R", Value: t.r}}
}

// A returns the A parameter.
func (t *TolmanIV) A() float64 { return t.a }

// R returns the R parameter.
func (t *TolmanIV) R() float64 { return t.r }

// Pressure implements 8πp = (1/A²)(1 - A²/R² - 3r²/R²)/(1 + 2r²/A²).
func (t *TolmanIV) Pressure(r float64) float64 {
	r2, a2, R2 := r*r, t.a*t.a, t.r*t.r
	eightPiP := (1 / a2) * (1 - a2/R2 - 3*r2/R2) / (1 + 2*r2/a2)
	return eightPiP / (8 * math.Pi)
}

// Density implements
// 8πρ = (1/A²)(1 + 3A²/R² + 3r²/R²)/(1 + 2r²/A²) + (2/A²)(1 - r²/R²)/(1 + 2r²/A²)².
func (t *TolmanIV) Density(r float64) float64 {
	r2, a2, R2 := r*r, t.a*t.a, t.r*t.r
	u := 1 + 2*r2/a2
	term1 := (1 / a2) * (1 + 3*a2/R2 + 3*r2/R2) / u
	term2 := (2 / a2) * (1 - r2/R2) / (u * u)
	return (term1 + term2) / (8 * math.Pi)
}

// Mass returns m(r) = r(1 - e^{-λ})/2.
func (t *TolmanIV) Mass(r float64) float64 {
	r2, a2, R2 := r*r, t.a*t.a, t.r*t.r
	expNegLambda := (1 - r2/R2) * (1 + r2/a2) / (1 + 2*r2/a2)
	return r * (1 - expNegLambda) / 2
}

// BoundaryRadius returns rb = (R/√3)·√(1 - A²/R²).
func (t *TolmanIV) BoundaryRadius() float64 {
	ratio := (t.a * t.a) / (t.r * t.r)
	if ratio >= 1 {
		return 0
	}
	return (t.r / math.Sqrt(3)) * math.Sqrt(1-ratio)
}

// Central returns 8πρc = 3/A² + 3/R² and 8πpc = 1/A² - 1/R².
func (t *TolmanIV) Central() (float64, float64) {
	a2, R2 := t.a*t.a, t.r*t.r
	rhoC := (3/a2 + 3/R2) / (8 * math.Pi)
	pC := (1/a2 - 1/R2) / (8 * math.Pi)
	return rhoC, pC
}

// DensityAt is the closed-form equation of state
// ρ = ρc - 5(pc - p) + 8(pc - p)²/(ρc + pc).
func (t *TolmanIV) DensityAt(p float64) float64 {
	rhoC, pC := t.Central()
	q := pC - p
	return rhoC - 5*q + 8*q*q/(rhoC+pC)
}

// SoundSpeedSquared returns dp/dρ = 1/(5 - 16(pc - p)/(ρc + pc)) at radius r.
func (t *TolmanIV) SoundSpeedSquared(r float64) float64 {
	rhoC, pC := t.Central()
	q := pC - t.Pressure(r)
	denom := 5 - 16*q/(rhoC+pC)
	if denom == 0 {
		return math.Inf(1)
	}
	return 1 / denom
}

// MetricNu returns e^ν(r) with B fixed by matching to the exterior
// Schwarzschild metric at the boundary: e^ν(rb) = 1 - 2M/rb.
func (t *TolmanIV) MetricNu(r float64) float64 {
	rb := t.BoundaryRadius()
	if rb <= 0 {
		return math.NaN()
	}
	a2 := t.a * t.a
	b2 := (1 - 2*t.Mass(rb)/rb) / (1 + rb*rb/a2)
	return b2 * (1 + r*r/a2)
}
