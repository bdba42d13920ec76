// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package viability decides whether an analytic solution is physically
// acceptable as a model of a compact star. The criteria follow the
// Delgaty & Lake catalogue conditions plus the energy, causality and
// equilibrium checks applied to tabulated profiles.
package viability

import (
	"fmt"
	"math"

	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/solution"
)

// Criterion names a single acceptability condition.
type Criterion string

const (
	RegularCenter          Criterion = "regular_center"
	PositiveDensity        Criterion = "positive_density"
	NonNegativePressure    Criterion = "non_negative_pressure"
	PressureDecreasing     Criterion = "pressure_decreasing"
	DensityDecreasing      Criterion = "density_decreasing"
	DominantEnergy         Criterion = "dominant_energy"
	StrongEnergy           Criterion = "strong_energy"
	Causality              Criterion = "causality"
	SoundSpeedDecreasing   Criterion = "sound_speed_decreasing"
	Buchdahl               Criterion = "buchdahl"
	BoundaryPressure       Criterion = "boundary_pressure"
	HydrostaticEquilibrium Criterion = "hydrostatic_equilibrium"
	AdiabaticIndex         Criterion = "adiabatic_index"
	EquationOfState        Criterion = "equation_of_state"
)

// BuchdahlLimit is the maximum compactness 2M/rb of a static fluid sphere.
const BuchdahlLimit = 8.0 / 9.0

// Tolerances bounds the numerical slack allowed by the checks.
type Tolerances struct {
	// Monotonic is the allowed increase between samples, relative to the
	// central value.
	Monotonic float64 `yaml:"monotonic" json:"monotonic"`
	// Boundary is the allowed |p(rb)|/pc.
	Boundary float64 `yaml:"boundary" json:"boundary"`
	// TOV is the allowed relative residual of the TOV equation.
	TOV float64 `yaml:"tov" json:"tov"`
	// EoSPercent is the allowed relative error (in %) of a closed-form EoS.
	EoSPercent float64 `yaml:"eosPercent" json:"eos_percent"`
}

// DefaultTolerances returns the tolerances used when none are configured.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Monotonic:  1e-12,
		Boundary:   1e-9,
		TOV:        1e-4,
		EoSPercent: 1e-6,
	}
}

func (t Tolerances) withDefaults() Tolerances {
	d := DefaultTolerances()
	if t.Monotonic <= 0 {
		t.Monotonic = d.Monotonic
	}
	if t.Boundary <= 0 {
		t.Boundary = d.Boundary
	}
	if t.TOV <= 0 {
		t.TOV = d.TOV
	}
	if t.EoSPercent <= 0 {
		t.EoSPercent = d.EoSPercent
	}
	return t
}

// Check is the outcome of one criterion.
type Check struct {
	Criterion Criterion `json:"criterion"`
	Passed    bool      `json:"passed"`
	Required  bool      `json:"required"`
	Value     float64   `json:"value"`
	Detail    string    `json:"detail,omitempty"`
}

// EoSError summarises the deviation between tabulated densities and ρ(p).
type EoSError struct {
	MeanPercent float64 `json:"mean_percent"`
	MaxPercent  float64 `json:"max_percent"`
}

// Report is the full acceptability assessment of one solution.
type Report struct {
	Acceptable      bool      `json:"acceptable"`
	Checks          []Check   `json:"checks"`
	CentralDensity  float64   `json:"central_density"`
	CentralPressure float64   `json:"central_pressure"`
	BoundaryRadius  float64   `json:"boundary_radius"`
	Mass            float64   `json:"mass"`
	Compactness     float64   `json:"compactness"`
	SurfaceRedshift float64   `json:"surface_redshift"`
	MaxPOverRho     float64   `json:"max_p_over_rho"`
	MaxCS2          float64   `json:"max_cs2"`
	EoS             *EoSError `json:"eos,omitempty"`
}

// Failed returns the required criteria that did not pass.
func (r Report) Failed() []Criterion {
	var out []Criterion
	for _, c := range r.Checks {
		if c.Required && !c.Passed {
			out = append(out, c.Criterion)
		}
	}
	return out
}

// Check returns the outcome of criterion c, if it was evaluated.
func (r Report) Check(c Criterion) (Check, bool) {
	for _, check := range r.Checks {
		if check.Criterion == c {
			return check, true
		}
	}
	return Check{}, false
}

// Evaluate assesses sol together with its sampled table.
func Evaluate(sol solution.Solution, table *profile.Table, tol Tolerances) Report {
	tol = tol.withDefaults()
	rhoC, pC := sol.Central()
	rb := sol.BoundaryRadius()

	rep := Report{
		CentralDensity:  rhoC,
		CentralPressure: pC,
		BoundaryRadius:  rb,
	}
	if rb > 0 {
		rep.Mass = sol.Mass(rb)
		rep.Compactness = solution.Compactness(sol)
		rep.SurfaceRedshift = solution.SurfaceRedshift(sol)
	}

	var rows []profile.Row
	if table != nil {
		rows = table.Rows
	}
	for _, row := range rows {
		rep.MaxPOverRho = math.Max(rep.MaxPOverRho, row.POverRho)
		rep.MaxCS2 = math.Max(rep.MaxCS2, row.CS2)
	}

	finite := isFinite(rhoC) && isFinite(pC)
	rep.add(RegularCenter, finite && rhoC > 0 && pC > 0, true, pC,
		fmt.Sprintf("rho_c=%.6e p_c=%.6e", rhoC, pC))

	rep.Checks = append(rep.Checks, rowChecks(rows, true, tol.Monotonic*math.Max(math.Abs(pC), math.Abs(rhoC)))...)

	rep.add(Buchdahl, rb > 0 && rep.Compactness < BuchdahlLimit, true, rep.Compactness,
		fmt.Sprintf("2M/rb=%.6f (limit 8/9)", rep.Compactness))

	pb := math.NaN()
	if rb > 0 {
		pb = sol.Pressure(rb)
	}
	boundaryOK := rb > 0 && pC > 0 && math.Abs(pb) <= tol.Boundary*pC
	rep.add(BoundaryPressure, boundaryOK, true, pb, fmt.Sprintf("p(rb)=%.3e", pb))

	residual := TOVResidual(sol, 32)
	rep.add(HydrostaticEquilibrium, residual <= tol.TOV, true, residual,
		fmt.Sprintf("max relative TOV residual %.3e", residual))

	gamma := math.NaN()
	if pC > 0 {
		gamma = (rhoC + pC) / pC * profile.SoundSpeedSquared(sol, 0)
	}
	rep.add(AdiabaticIndex, gamma > 4.0/3.0, false, gamma, fmt.Sprintf("Gamma_c=%.4f (stable above 4/3)", gamma))

	if eos, ok := sol.(solution.EquationOfState); ok && len(rows) > 0 {
		e := VerifyEquationOfState(eos, rows)
		rep.EoS = &e
		rep.add(EquationOfState, e.MaxPercent <= tol.EoSPercent, true, e.MaxPercent,
			fmt.Sprintf("mean %.2e%% max %.2e%%", e.MeanPercent, e.MaxPercent))
	}

	rep.Acceptable = len(rep.Failed()) == 0
	return rep
}

func (r *Report) add(c Criterion, passed, required bool, value float64, detail string) {
	r.Checks = append(r.Checks, Check{Criterion: c, Passed: passed, Required: required, Value: value, Detail: detail})
}

// CheckRows runs the table-only checks used when exploring CSV files of
// unknown origin. Causality requires p/ρ <= 1 and, when the table has it,
// 0 <= c_s² <= 1.
func CheckRows(rows []profile.Row, hasSoundSpeed bool) []Check {
	slack := 0.0
	if len(rows) > 0 {
		slack = DefaultTolerances().Monotonic * math.Max(math.Abs(rows[0].P), math.Abs(rows[0].Rho))
	}
	return rowChecks(rows, hasSoundSpeed, slack)
}

func rowChecks(rows []profile.Row, hasSoundSpeed bool, slack float64) []Check {
	var (
		positiveRho   = len(rows) > 0
		nonNegP       = len(rows) > 0
		pDecreasing   = true
		rhoDecreasing = true
		dominant      = len(rows) > 0
		strong        = len(rows) > 0
		causal        = len(rows) > 0
		cs2Decreasing = true
		minRho        = math.Inf(1)
		minP          = math.Inf(1)
		maxRatio      = 0.0
		maxCS2        = 0.0
	)
	for i, row := range rows {
		minRho = math.Min(minRho, row.Rho)
		minP = math.Min(minP, row.P)
		if row.Rho <= 0 {
			positiveRho = false
		}
		if row.P < 0 {
			nonNegP = false
		}
		if row.Rho < row.P {
			dominant = false
		}
		if row.Rho+3*row.P < 0 {
			strong = false
		}
		if row.POverRho > 1 || math.IsInf(row.POverRho, 0) {
			causal = false
		}
		if !math.IsNaN(row.POverRho) {
			maxRatio = math.Max(maxRatio, row.POverRho)
		}
		if hasSoundSpeed {
			if row.CS2 < 0 || row.CS2 > 1 || math.IsNaN(row.CS2) || math.IsInf(row.CS2, 0) {
				causal = false
			}
			if !math.IsNaN(row.CS2) {
				maxCS2 = math.Max(maxCS2, row.CS2)
			}
		}
		if i > 0 {
			prev := rows[i-1]
			if row.P-prev.P > slack {
				pDecreasing = false
			}
			if row.Rho-prev.Rho > slack {
				rhoDecreasing = false
			}
			if hasSoundSpeed && row.CS2 > prev.CS2 {
				cs2Decreasing = false
			}
		}
	}

	causality := Check{
		Criterion: Causality, Passed: causal, Required: true,
		Value: maxRatio, Detail: fmt.Sprintf("max p/rho=%.4g", maxRatio),
	}
	if hasSoundSpeed {
		causality.Value = maxCS2
		causality.Detail = fmt.Sprintf("max cs2=%.4g max p/rho=%.4g", maxCS2, maxRatio)
	}
	checks := []Check{
		{Criterion: PositiveDensity, Passed: positiveRho, Required: true, Value: minRho, Detail: "min rho"},
		{Criterion: NonNegativePressure, Passed: nonNegP, Required: true, Value: minP, Detail: "min p"},
		{Criterion: PressureDecreasing, Passed: pDecreasing, Required: true},
		{Criterion: DensityDecreasing, Passed: rhoDecreasing, Required: true},
		{Criterion: DominantEnergy, Passed: dominant, Required: true, Detail: "rho >= p"},
		{Criterion: StrongEnergy, Passed: strong, Required: true, Detail: "rho + 3p >= 0"},
		causality,
	}
	if hasSoundSpeed {
		checks = append(checks, Check{Criterion: SoundSpeedDecreasing, Passed: cs2Decreasing, Required: false})
	}
	return checks
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
