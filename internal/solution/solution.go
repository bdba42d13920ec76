// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package solution implements closed-form interior solutions of Einstein's
// field equations for static, spherically symmetric perfect-fluid spheres.
//
// All quantities are in geometric units (G = c = 1). Density and pressure are
// returned with the 8π factor divided out.
package solution

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidParameters is returned when parameters do not describe a
	// regular, bounded configuration.
	ErrInvalidParameters = errors.New("invalid solution parameters")
	// ErrUnknownKind is returned by New for unregistered solution kinds.
	ErrUnknownKind = errors.New("unknown solution kind")
)

// Kind names a family of analytic solutions.
type Kind string

const (
	KindTolmanIV      Kind = "tolman-iv"
	KindSchwarzschild Kind = "schwarzschild-interior"
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	return string(k)
}

// Param is a single named solution parameter.
type Param struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Params is an ordered parameter list. Order follows the solution's
// canonical parameter order.
type Params []Param

// Get returns the value of the named parameter.
func (p Params) Get(name string) (float64, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return 0, false
}

// Map returns the parameters as a map.
func (p Params) Map() map[string]float64 {
	out := make(map[string]float64, len(p))
	for _, param := range p {
		out[param.Name] = param.Value
	}
	return out
}

// String renders parameters as "A=1,R=1.5".
func (p Params) String() string {
	parts := make([]string, 0, len(p))
	for _, param := range p {
		parts = append(parts, param.Name+"="+strconv.FormatFloat(param.Value, 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

// ParseParams parses "A=1,R=1.5" style assignments.
func ParseParams(items []string) (map[string]float64, error) {
	out := make(map[string]float64, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, raw, ok := strings.Cut(part, "=")
			if !ok {
				return nil, fmt.Errorf("parameter %q: expected name=value", part)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", name, err)
			}
			out[strings.TrimSpace(name)] = v
		}
	}
	return out, nil
}

// Solution is a closed-form static perfect-fluid interior.
type Solution interface {
	Kind() Kind
	Params() Params
	// Density returns ρ(r).
	Density(r float64) float64
	// Pressure returns p(r).
	Pressure(r float64) float64
	// Mass returns the gravitational mass m(r) enclosed within r.
	Mass(r float64) float64
	// BoundaryRadius returns the radius where p vanishes, or 0 if there is none.
	BoundaryRadius() float64
	// Central returns ρ(0) and p(0).
	Central() (rhoC, pC float64)
}

// EquationOfState is implemented by solutions with a closed-form ρ(p).
type EquationOfState interface {
	DensityAt(p float64) float64
}

// SoundSpeeder is implemented by solutions with an analytic dp/dρ.
type SoundSpeeder interface {
	SoundSpeedSquared(r float64) float64
}

// Spec describes a registered solution kind.
type Spec struct {
	Kind        Kind     `json:"kind"`
	Params      []string `json:"params"`
	Description string   `json:"description"`
}

type constructor func(params map[string]float64) (Solution, error)

type registration struct {
	spec Spec
	ctor constructor
}

var registry = map[Kind]registration{
	KindTolmanIV: {
		spec: Spec{
			Kind:        KindTolmanIV,
			Params:      []string{"A", "R"},
			Description: "Tolman IV: e^ν = B²(1 + r²/A²), requires R > A",
		},
		ctor: func(p map[string]float64) (Solution, error) {
			return NewTolmanIV(p["A"], p["R"])
		},
	},
	KindSchwarzschild: {
		spec: Spec{
			Kind:        KindSchwarzschild,
			Params:      []string{"R", "rb"},
			Description: "Schwarzschild interior: uniform density ρ = 3/(8πR²), surface at rb < R",
		},
		ctor: func(p map[string]float64) (Solution, error) {
			return NewSchwarzschildInterior(p["R"], p["rb"])
		},
	},
}

// Kinds lists the registered solution kinds sorted by name.
func Kinds() []Spec {
	out := make([]Spec, 0, len(registry))
	for _, reg := range registry {
		out = append(out, reg.spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Lookup returns the Spec for kind.
func Lookup(kind Kind) (Spec, bool) {
	reg, ok := registry[kind]
	return reg.spec, ok
}

// New builds a solution of the given kind. Every parameter the kind declares
// must be present and no others may be given.
func New(kind Kind, params map[string]float64) (Solution, error) {
	reg, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	for _, name := range reg.spec.Params {
		v, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s: missing parameter %q", ErrInvalidParameters, kind, name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s: parameter %q is not finite", ErrInvalidParameters, kind, name)
		}
	}
	if len(params) != len(reg.spec.Params) {
		for name := range params {
			if !contains(reg.spec.Params, name) {
				return nil, fmt.Errorf("%w: %s: unexpected parameter %q", ErrInvalidParameters, kind, name)
			}
		}
	}
	return reg.ctor(params)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Compactness returns 2M/rb for the solution, or 0 if it has no boundary.
func Compactness(s Solution) float64 {
	rb := s.BoundaryRadius()
	if rb <= 0 {
		return 0
	}
	return 2 * s.Mass(rb) / rb
}

// SurfaceRedshift returns z = (1 - 2M/rb)^(-1/2) - 1, or NaN when the
// surface lies inside the Schwarzschild radius.
func SurfaceRedshift(s Solution) float64 {
	c := Compactness(s)
	if c >= 1 {
		return math.NaN()
	}
	return 1/math.Sqrt(1-c) - 1
}
