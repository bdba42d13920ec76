// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package study

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ManuGH/eosgen/internal/solution"
)

// ErrInvalidGrid is returned for grids that cannot be expanded.
var ErrInvalidGrid = errors.New("invalid grid")

// Case is one parameter set to process.
type Case struct {
	Kind   solution.Kind      `yaml:"kind" json:"kind"`
	Params map[string]float64 `yaml:"params" json:"params"`
}

// Key identifies a case independent of map order.
func (c Case) Key() string {
	return string(c.Kind) + "|" + c.ordered().String()
}

func (c Case) ordered() solution.Params {
	names := make([]string, 0, len(c.Params))
	if spec, ok := solution.Lookup(c.Kind); ok {
		names = append(names, spec.Params...)
	}
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	var extra []string
	for n := range c.Params {
		if !known[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	out := make(solution.Params, 0, len(names))
	for _, n := range names {
		if v, ok := c.Params[n]; ok {
			out = append(out, solution.Param{Name: n, Value: v})
		}
	}
	return out
}

// Axis is a list of values or an inclusive linspace From..To with Steps points.
type Axis struct {
	Values []float64 `yaml:"values,omitempty" json:"values,omitempty"`
	From   float64   `yaml:"from,omitempty" json:"from,omitempty"`
	To     float64   `yaml:"to,omitempty" json:"to,omitempty"`
	Steps  int       `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Points returns the axis values.
func (a Axis) Points() ([]float64, error) {
	if len(a.Values) > 0 {
		if a.Steps != 0 {
			return nil, fmt.Errorf("%w: values and steps are exclusive", ErrInvalidGrid)
		}
		return append([]float64(nil), a.Values...), nil
	}
	switch {
	case a.Steps < 1:
		return nil, fmt.Errorf("%w: steps must be positive", ErrInvalidGrid)
	case a.Steps == 1:
		return []float64{a.From}, nil
	}
	out := make([]float64, a.Steps)
	for i := range out {
		out[i] = a.From + (a.To-a.From)*float64(i)/float64(a.Steps-1)
	}
	return out, nil
}

// GridSpec is the cartesian product of axes for one solution kind.
type GridSpec struct {
	Kind solution.Kind   `yaml:"kind" json:"kind"`
	Axes map[string]Axis `yaml:"axes" json:"axes"`
}

// Expand returns every combination of axis values. Axes are iterated in
// sorted name order, the last one varying fastest.
func (g GridSpec) Expand() ([]Case, error) {
	spec, ok := solution.Lookup(g.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", solution.ErrUnknownKind, g.Kind)
	}
	if len(g.Axes) != len(spec.Params) {
		return nil, fmt.Errorf("%w: %s needs axes %v", ErrInvalidGrid, g.Kind, spec.Params)
	}
	names := make([]string, 0, len(g.Axes))
	values := make(map[string][]float64, len(g.Axes))
	for name, axis := range g.Axes {
		pts, err := axis.Points()
		if err != nil {
			return nil, fmt.Errorf("axis %s: %w", name, err)
		}
		names = append(names, name)
		values[name] = pts
	}
	sort.Strings(names)
	for _, want := range spec.Params {
		if _, ok := values[want]; !ok {
			return nil, fmt.Errorf("%w: %s needs axis %q", ErrInvalidGrid, g.Kind, want)
		}
	}

	cases := []Case{{Kind: g.Kind, Params: map[string]float64{}}}
	for _, name := range names {
		next := make([]Case, 0, len(cases)*len(values[name]))
		for _, c := range cases {
			for _, v := range values[name] {
				params := make(map[string]float64, len(c.Params)+1)
				for k, pv := range c.Params {
					params[k] = pv
				}
				params[name] = v
				next = append(next, Case{Kind: g.Kind, Params: params})
			}
		}
		cases = next
	}
	return cases, nil
}

// Plan merges explicit cases and expanded grids, dropping duplicates while
// keeping first-seen order.
func Plan(cases []Case, grids []GridSpec) ([]Case, error) {
	out := make([]Case, 0, len(cases))
	seen := map[string]bool{}
	add := func(c Case) {
		if k := c.Key(); !seen[k] {
			seen[k] = true
			out = append(out, c)
		}
	}
	for _, c := range cases {
		add(c)
	}
	for _, g := range grids {
		expanded, err := g.Expand()
		if err != nil {
			return nil, err
		}
		for _, c := range expanded {
			add(c)
		}
	}
	return out, nil
}

// DefaultCases is the reference Tolman IV parameter study.
func DefaultCases() []Case {
	pairs := [][2]float64{
		{1, 1.5}, {1, 1.7},
		{5, 8}, {5, 10},
		{10, 15}, {10, 17},
		{2, 3}, {3, 5}, {7, 11},
	}
	out := make([]Case, len(pairs))
	for i, p := range pairs {
		out[i] = Case{Kind: solution.KindTolmanIV, Params: map[string]float64{"A": p[0], "R": p[1]}}
	}
	return out
}
