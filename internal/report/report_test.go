// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/ManuGH/eosgen/internal/dataset"
	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/ManuGH/eosgen/internal/viability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	tbl := &Table{Title: "t", Headers: []string{"a", "bb"}}
	tbl.AddRow("xxxx", "y")
	tbl.AddRow("z")
	out := tbl.Render(NewStyles(&buf))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "t", lines[0])
	assert.Equal(t, lipglossWidth(lines[1]), lipglossWidth(lines[3]))
	assert.Contains(t, lines[3], "xxxx")
	assert.Equal(t, strings.Repeat("-", 11), lines[2])
}

func lipglossWidth(s string) int { return len([]rune(s)) }

func TestViability(t *testing.T) {
	sol, err := solution.NewSchwarzschildInterior(2, 1)
	require.NoError(t, err)
	table, err := profile.Generate(sol, 20, profile.Options{})
	require.NoError(t, err)
	rep := viability.Evaluate(sol, table, viability.DefaultTolerances())

	var buf bytes.Buffer
	require.NoError(t, Viability(&buf, sol.Kind(), sol.Params(), rep))
	out := buf.String()
	assert.Contains(t, out, "schwarzschild-interior R=2,rb=1")
	assert.Contains(t, out, "max cs2           inf")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "NOT ACCEPTABLE")
	assert.NotContains(t, out, "\x1b[", "no escape codes for non-terminals")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	err := Summary(&buf, dataset.Summary{
		StudyID: "s1", TotalCases: 2, Successful: 1, Failed: 1,
		Results: []dataset.CaseResult{
			{Kind: solution.KindTolmanIV, Params: map[string]float64{"R": 1.5, "A": 1}, Valid: true, Acceptable: true, DataPoints: 100, File: "tolmanIV_A1.0_R1.5.csv", Compactness: 0.37},
			{Kind: solution.KindTolmanIV, Params: map[string]float64{"A": 2, "R": 1}, Error: "invalid solution parameters"},
		},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "study s1: 2 cases, 1 successful, 1 failed")
	assert.Contains(t, out, "A=1,R=1.5")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "invalid solution parameters")
}

func TestFile(t *testing.T) {
	parsed := &dataset.Parsed{
		Meta:    map[string]string{"kind": "tolman-iv"},
		Columns: []string{"r", "rho", "p"},
		Rows:    []profile.Row{{R: 0, Rho: 1, P: 0.1}},
	}
	var buf bytes.Buffer
	require.NoError(t, File(&buf, "x.csv", parsed, viability.CheckRows(parsed.Rows, false)))
	assert.Contains(t, buf.String(), "rows     1")
	assert.Contains(t, buf.String(), "kind     tolman-iv")
}

func TestFloat(t *testing.T) {
	assert.Equal(t, "inf", Float(math.Inf(1)))
	assert.Equal(t, "-inf", Float(math.Inf(-1)))
	assert.Equal(t, "n/a", Float(math.NaN()))
	assert.Equal(t, "0.333333", Float(1.0/3))
}
