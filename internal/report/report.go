// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package report renders studies and viability reports for the terminal.
// Colours are dropped automatically when the writer is not a terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ManuGH/eosgen/internal/dataset"
	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/ManuGH/eosgen/internal/viability"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPass  = lipgloss.Color("#8BC34A")
	colorFail  = lipgloss.Color("#e53935")
	colorInfo  = lipgloss.Color("#2196F3")
	colorMuted = lipgloss.Color("#7a8699")
)

// Styles bundles the styles of one renderer.
type Styles struct {
	Title lipgloss.Style
	Bold  lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Info  lipgloss.Style
}

// NewStyles binds the palette to w's colour profile.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title: r.NewStyle().Bold(true).Foreground(colorInfo),
		Bold:  r.NewStyle().Bold(true),
		Body:  r.NewStyle(),
		Muted: r.NewStyle().Foreground(colorMuted),
		Pass:  r.NewStyle().Foreground(colorPass),
		Fail:  r.NewStyle().Foreground(colorFail).Bold(true),
		Info:  r.NewStyle().Foreground(colorInfo),
	}
}

// Table is a static column-aligned table.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render lays the table out with one space of padding per cell.
func (t *Table) Render(s Styles) string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(s.Title.Render(t.Title))
		sb.WriteString("\n")
	}
	header := s.Bold.Padding(0, 1)
	cell := s.Body.Padding(0, 1)
	sep := s.Muted.Render("|")

	for i, h := range t.Headers {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(header.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")

	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(s.Muted.Render(strings.Repeat("-", max(total, 0))))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		for i := range widths {
			if i > 0 {
				sb.WriteString(sep)
			}
			v := ""
			if i < len(row) {
				v = row[i]
			}
			sb.WriteString(cell.Width(widths[i]).Render(v))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Viability renders a single assessment.
func Viability(w io.Writer, kind solution.Kind, params solution.Params, rep viability.Report) error {
	s := NewStyles(w)
	var sb strings.Builder

	sb.WriteString(s.Title.Render(fmt.Sprintf("%s %s", kind, params)))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  central density   %s\n", Float(rep.CentralDensity))
	fmt.Fprintf(&sb, "  central pressure  %s\n", Float(rep.CentralPressure))
	fmt.Fprintf(&sb, "  boundary radius   %s\n", Float(rep.BoundaryRadius))
	fmt.Fprintf(&sb, "  mass              %s\n", Float(rep.Mass))
	fmt.Fprintf(&sb, "  compactness 2M/rb %s\n", Float(rep.Compactness))
	fmt.Fprintf(&sb, "  surface redshift  %s\n", Float(rep.SurfaceRedshift))
	fmt.Fprintf(&sb, "  max p/rho         %s\n", Float(rep.MaxPOverRho))
	fmt.Fprintf(&sb, "  max cs2           %s\n\n", Float(rep.MaxCS2))

	sb.WriteString(Checks(s, rep.Checks))
	sb.WriteString("\n")
	if rep.Acceptable {
		sb.WriteString(s.Pass.Render("ACCEPTABLE"))
	} else {
		sb.WriteString(s.Fail.Render("NOT ACCEPTABLE"))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// Checks renders criterion outcomes.
func Checks(s Styles, checks []viability.Check) string {
	t := &Table{Headers: []string{"criterion", "result", "value", "detail"}}
	for _, c := range checks {
		result := s.Pass.Render("pass")
		switch {
		case !c.Passed && c.Required:
			result = s.Fail.Render("FAIL")
		case !c.Passed:
			result = s.Muted.Render("info")
		}
		t.AddRow(string(c.Criterion), result, Float(c.Value), c.Detail)
	}
	return t.Render(s)
}

// Summary renders the outcome of a study.
func Summary(w io.Writer, sum dataset.Summary) error {
	s := NewStyles(w)
	t := &Table{
		Title:   fmt.Sprintf("study %s: %d cases, %d successful, %d failed", sum.StudyID, sum.TotalCases, sum.Successful, sum.Failed),
		Headers: []string{"kind", "params", "points", "compactness", "acceptable", "file / error"},
	}
	for _, r := range sum.Results {
		var status string
		target := r.File
		switch {
		case !r.Valid:
			status = s.Fail.Render("error")
			target = r.Error
		case r.Acceptable:
			status = s.Pass.Render("yes")
		default:
			status = s.Fail.Render("no")
		}
		t.AddRow(string(r.Kind), paramString(r.Params), strconv.Itoa(r.DataPoints), Float(r.Compactness), status, target)
	}
	_, err := io.WriteString(w, t.Render(s))
	return err
}

// File renders the table-only checks of a CSV file.
func File(w io.Writer, name string, parsed *dataset.Parsed, checks []viability.Check) error {
	s := NewStyles(w)
	var sb strings.Builder
	sb.WriteString(s.Title.Render(name))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  rows     %d\n", len(parsed.Rows))
	fmt.Fprintf(&sb, "  columns  %s\n", strings.Join(parsed.Columns, ","))
	for _, k := range parsed.MetaKeys() {
		fmt.Fprintf(&sb, "  %-8s %s\n", k, parsed.Meta[k])
	}
	sb.WriteString("\n")
	sb.WriteString(Checks(s, checks))
	_, err := io.WriteString(w, sb.String())
	return err
}

// Float formats a value for display; non-finite values are spelled out.
func Float(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func paramString(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(m[k], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
