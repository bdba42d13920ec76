// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package solution

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dmdr checks the mass function against dm/dr = 4πr²ρ.
func assertMassConsistent(t *testing.T, s Solution) {
	t.Helper()
	rb := s.BoundaryRadius()
	h := rb * 1e-5
	for _, frac := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		r := frac * rb
		numeric := (s.Mass(r+h) - s.Mass(r-h)) / (2 * h)
		analytic := 4 * math.Pi * r * r * s.Density(r)
		assert.InDelta(t, 1, numeric/analytic, 1e-6, "dm/dr at r=%g", r)
	}
}

func TestTolmanIV_RejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		a, r float64
	}{
		{name: "R equal to A", a: 1, r: 1},
		{name: "R below A", a: 5, r: 4},
		{name: "zero A", a: 0, r: 1},
		{name: "negative R", a: 1, r: -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTolmanIV(tt.a, tt.r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters))
		})
	}
}

func TestTolmanIV_CentralValuesMatchProfiles(t *testing.T) {
	s, err := NewTolmanIV(1, 1.5)
	require.NoError(t, err)

	rhoC, pC := s.Central()
	assert.InDelta(t, s.Density(0), rhoC, 1e-15)
	assert.InDelta(t, s.Pressure(0), pC, 1e-15)
	assert.InDelta(t, (3+3/2.25)/(8*math.Pi), rhoC, 1e-15)
	assert.InDelta(t, (1-1/2.25)/(8*math.Pi), pC, 1e-15)
	assert.Greater(t, pC, 0.0)
}

func TestTolmanIV_PressureVanishesAtBoundary(t *testing.T) {
	for _, tc := range [][2]float64{{1, 1.5}, {1, 1.7}, {5, 8}, {5, 10}, {10, 15}, {7, 11}} {
		s, err := NewTolmanIV(tc[0], tc[1])
		require.NoError(t, err)

		rb := s.BoundaryRadius()
		require.Greater(t, rb, 0.0)
		_, pC := s.Central()
		assert.InDelta(t, 0, s.Pressure(rb)/pC, 1e-12, "A=%g R=%g", tc[0], tc[1])
		assert.Greater(t, s.Pressure(0.99*rb), 0.0)
		assert.Less(t, s.Pressure(1.01*rb), 0.0)
	}
}

func TestTolmanIV_EquationOfStateIsExact(t *testing.T) {
	s, err := NewTolmanIV(5, 10)
	require.NoError(t, err)

	rb := s.BoundaryRadius()
	for i := 0; i <= 20; i++ {
		r := rb * float64(i) / 20
		got := s.DensityAt(s.Pressure(r))
		assert.InDelta(t, 1, got/s.Density(r), 1e-12, "r=%g", r)
	}
}

func TestTolmanIV_SoundSpeedMatchesFiniteDifference(t *testing.T) {
	s, err := NewTolmanIV(1, 1.5)
	require.NoError(t, err)

	rb := s.BoundaryRadius()
	h := rb * 1e-5
	for _, frac := range []float64{0.2, 0.5, 0.8} {
		r := frac * rb
		dp := s.Pressure(r+h) - s.Pressure(r-h)
		drho := s.Density(r+h) - s.Density(r-h)
		assert.InDelta(t, dp/drho, s.SoundSpeedSquared(r), 1e-6)
	}
	assert.InDelta(t, 0.2, s.SoundSpeedSquared(0), 1e-15)
}

func TestTolmanIV_MassAndMatching(t *testing.T) {
	s, err := NewTolmanIV(1, 1.5)
	require.NoError(t, err)
	assertMassConsistent(t, s)

	rb := s.BoundaryRadius()
	assert.InDelta(t, 1-Compactness(s), s.MetricNu(rb), 1e-14)
	assert.Less(t, Compactness(s), 8.0/9.0)
	assert.Greater(t, SurfaceRedshift(s), 0.0)
}

func TestSchwarzschildInterior(t *testing.T) {
	s, err := NewSchwarzschildInterior(2, 1)
	require.NoError(t, err)

	assert.InDelta(t, 0, s.Pressure(1), 1e-15)
	assert.InDelta(t, 0.25, Compactness(s), 1e-15)
	assert.Equal(t, s.Density(0), s.Density(0.9))
	assert.True(t, math.IsInf(s.SoundSpeedSquared(0.5), 1))
	assertMassConsistent(t, s)

	_, err = NewSchwarzschildInterior(2, 1.9)
	assert.ErrorIs(t, err, ErrInvalidParameters, "2M/rb above 8/9 must be rejected")

	_, err = NewSchwarzschildInterior(1, 2)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestNew_Registry(t *testing.T) {
	s, err := New(KindTolmanIV, map[string]float64{"A": 1, "R": 1.5})
	require.NoError(t, err)
	want := Params{{Name: "A", Value: 1}, {Name: "R", Value: 1.5}}
	if diff := cmp.Diff(want, s.Params()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}

	_, err = New("tolman-vii", map[string]float64{})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = New(KindTolmanIV, map[string]float64{"A": 1})
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = New(KindTolmanIV, map[string]float64{"A": 1, "R": 2, "B": 3})
	assert.ErrorIs(t, err, ErrInvalidParameters)

	kinds := Kinds()
	require.Len(t, kinds, 2)
	assert.Equal(t, KindSchwarzschild, kinds[0].Kind)
	assert.Equal(t, KindTolmanIV, kinds[1].Kind)
}

func TestParseParams(t *testing.T) {
	got, err := ParseParams([]string{"A=1", "R = 1.5", "x=2,y=3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 1, "R": 1.5, "x": 2, "y": 3}, got)

	_, err = ParseParams([]string{"A"})
	assert.Error(t, err)
	_, err = ParseParams([]string{"A=abc"})
	assert.Error(t, err)

	assert.Equal(t, "A=1,R=1.5", Params{{"A", 1}, {"R", 1.5}}.String())
}
