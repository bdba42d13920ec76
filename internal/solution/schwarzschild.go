// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package solution

import (
	"fmt"
	"math"
)

// SchwarzschildInterior is the uniform-density interior solution. R is the
// curvature radius (ρ = 3/(8πR²)) and rb the stellar surface.
type SchwarzschildInterior struct {
	curv float64
	rb   float64
}

// NewSchwarzschildInterior builds a uniform-density sphere. It requires
// 0 < rb < R and a finite central pressure, i.e. 2M/rb < 8/9.
func NewSchwarzschildInterior(curvature, rb float64) (*SchwarzschildInterior, error) {
	if curvature <= 0 || rb <= 0 {
		return nil, fmt.Errorf("%w: schwarzschild-interior: R and rb must be positive (R=%g, rb=%g)", ErrInvalidParameters, curvature, rb)
	}
	if rb >= curvature {
		return nil, fmt.Errorf("%w: schwarzschild-interior: rb must be smaller than R (R=%g, rb=%g)", ErrInvalidParameters, curvature, rb)
	}
	s := &SchwarzschildInterior{curv: curvature, rb: rb}
	if 3*s.y(rb) <= 1 {
		return nil, fmt.Errorf("%w: schwarzschild-interior: central pressure diverges (2M/rb=%g >= 8/9)", ErrInvalidParameters, rb*rb/(curvature*curvature))
	}
	return s, nil
}

func (s *SchwarzschildInterior) y(r float64) float64 {
	return math.Sqrt(1 - r*r/(s.curv*s.curv))
}

func (s *SchwarzschildInterior) Kind() Kind { return KindSchwarzschild }

func (s *SchwarzschildInterior) Params() Params {
	return Params{{Name: "R", Value: s.curv}, {Name: "rb", Value: s.rb}}
}

// Density is constant: ρ0 = 3/(8πR²).
func (s *SchwarzschildInterior) Density(float64) float64 {
	return 3 / (8 * math.Pi * s.curv * s.curv)
}

// Pressure implements p = ρ0 (y - yb)/(3yb - y).
func (s *SchwarzschildInterior) Pressure(r float64) float64 {
	y, yb := s.y(r), s.y(s.rb)
	return s.Density(r) * (y - yb) / (3*yb - y)
}

// Mass returns m(r) = r³/(2R²).
func (s *SchwarzschildInterior) Mass(r float64) float64 {
	return r * r * r / (2 * s.curv * s.curv)
}

func (s *SchwarzschildInterior) BoundaryRadius() float64 { return s.rb }

func (s *SchwarzschildInterior) Central() (float64, float64) {
	return s.Density(0), s.Pressure(0)
}

// SoundSpeedSquared is infinite: the fluid is incompressible.
func (s *SchwarzschildInterior) SoundSpeedSquared(float64) float64 {
	return math.Inf(1)
}
