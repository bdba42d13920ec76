// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package study

import (
	"testing"

	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxis_Points(t *testing.T) {
	pts, err := Axis{From: 1, To: 2, Steps: 5}.Points()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1.25, 1.5, 1.75, 2}, pts)

	pts, err = Axis{From: 3, Steps: 1}.Points()
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, pts)

	pts, err = Axis{Values: []float64{5, 10}}.Points()
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 10}, pts)

	_, err = Axis{From: 1, To: 2}.Points()
	assert.ErrorIs(t, err, ErrInvalidGrid)
	_, err = Axis{Values: []float64{1}, Steps: 2}.Points()
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestGridSpec_Expand(t *testing.T) {
	g := GridSpec{
		Kind: solution.KindTolmanIV,
		Axes: map[string]Axis{
			"R": {Values: []float64{1.5, 2}},
			"A": {From: 1, To: 2, Steps: 2},
		},
	}
	cases, err := g.Expand()
	require.NoError(t, err)

	want := []Case{
		{Kind: solution.KindTolmanIV, Params: map[string]float64{"A": 1, "R": 1.5}},
		{Kind: solution.KindTolmanIV, Params: map[string]float64{"A": 1, "R": 2}},
		{Kind: solution.KindTolmanIV, Params: map[string]float64{"A": 2, "R": 1.5}},
		{Kind: solution.KindTolmanIV, Params: map[string]float64{"A": 2, "R": 2}},
	}
	if diff := cmp.Diff(want, cases); diff != "" {
		t.Errorf("cases mismatch (-want +got):\n%s", diff)
	}
}

func TestGridSpec_ExpandErrors(t *testing.T) {
	_, err := GridSpec{Kind: "kerr"}.Expand()
	assert.ErrorIs(t, err, solution.ErrUnknownKind)

	_, err = GridSpec{Kind: solution.KindTolmanIV, Axes: map[string]Axis{"A": {Values: []float64{1}}}}.Expand()
	assert.ErrorIs(t, err, ErrInvalidGrid)

	_, err = GridSpec{Kind: solution.KindTolmanIV, Axes: map[string]Axis{
		"A": {Values: []float64{1}},
		"B": {Values: []float64{1}},
	}}.Expand()
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestPlan_Deduplicates(t *testing.T) {
	explicit := []Case{{Kind: solution.KindTolmanIV, Params: map[string]float64{"R": 1.5, "A": 1}}}
	grid := GridSpec{Kind: solution.KindTolmanIV, Axes: map[string]Axis{
		"A": {Values: []float64{1}},
		"R": {Values: []float64{1.5, 1.7}},
	}}
	cases, err := Plan(explicit, []GridSpec{grid})
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, explicit[0], cases[0])
	assert.Equal(t, 1.7, cases[1].Params["R"])
	assert.Equal(t, "tolman-iv|A=1,R=1.5", cases[0].Key())
}

func TestDefaultCases(t *testing.T) {
	cases := DefaultCases()
	require.Len(t, cases, 9)
	for _, c := range cases {
		_, err := solution.New(c.Kind, c.Params)
		assert.NoError(t, err, c.Key())
	}
}
