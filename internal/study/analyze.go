// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package study

import (
	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/ManuGH/eosgen/internal/viability"
)

// Analysis is a sampled and assessed solution.
type Analysis struct {
	Solution solution.Solution
	Table    *profile.Table
	Report   viability.Report
}

// Analyze builds, samples and evaluates one case. Errors wrap
// solution.ErrUnknownKind, solution.ErrInvalidParameters or the profile
// sentinels.
func Analyze(c Case, points int, opts profile.Options, tol viability.Tolerances) (*Analysis, error) {
	sol, err := solution.New(c.Kind, c.Params)
	if err != nil {
		return nil, err
	}
	table, err := profile.Generate(sol, points, opts)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Solution: sol,
		Table:    table,
		Report:   viability.Evaluate(sol, table, tol),
	}, nil
}
