// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dataset reads and writes the on-disk artefacts of a study: one CSV
// table per solution, the summary document and the training index.
package dataset

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ManuGH/eosgen/internal/solution"
)

// TableExt is the extension of profile tables.
const TableExt = ".csv"

var filePrefixes = map[solution.Kind]string{
	solution.KindTolmanIV:      "tolmanIV",
	solution.KindSchwarzschild: "schwarzschild",
}

// FileName returns the table file name for a solution, for example
// tolmanIV_A1.0_R1.5.csv.
func FileName(kind solution.Kind, params solution.Params) string {
	prefix, ok := filePrefixes[kind]
	if !ok {
		prefix = strings.ReplaceAll(string(kind), "-", "")
	}
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range params {
		b.WriteByte('_')
		b.WriteString(p.Name)
		b.WriteString(formatParam(p.Value))
	}
	b.WriteString(TableExt)
	return b.String()
}

// ParseFileName recovers kind and parameters from a name built by FileName.
func ParseFileName(name string) (solution.Kind, map[string]float64, bool) {
	base, ok := strings.CutSuffix(name, TableExt)
	if !ok {
		return "", nil, false
	}
	parts := strings.Split(base, "_")
	var kind solution.Kind
	for k, prefix := range filePrefixes {
		if prefix == parts[0] {
			kind = k
		}
	}
	if kind == "" || len(parts) < 2 {
		return "", nil, false
	}
	params := make(map[string]float64, len(parts)-1)
	for _, part := range parts[1:] {
		i := strings.IndexFunc(part, func(r rune) bool { return !unicode.IsLetter(r) })
		if i <= 0 {
			return "", nil, false
		}
		v, err := strconv.ParseFloat(part[i:], 64)
		if err != nil {
			return "", nil, false
		}
		params[part[:i]] = v
	}
	return kind, params, true
}

// formatParam always keeps a decimal point so that 1 and 1.0 name the same file.
func formatParam(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
