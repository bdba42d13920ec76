// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	xglog "github.com/ManuGH/eosgen/internal/log"
	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/google/renameio/v2"
)

var (
	// ErrMissingColumn is returned when a table lacks r, rho or p.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedTable is returned for unparsable cells.
	ErrMalformedTable = errors.New("malformed table")
)

// Columns is the header written by WriteTable.
var Columns = []string{"r", "rho", "p", "p_over_rho", "cs2", "label"}

// Metadata keys written above the header.
const (
	MetaKind     = "kind"
	MetaBoundary = "boundary_radius"
	MetaPoints   = "points"
)

// Parsed is a table read back from disk.
type Parsed struct {
	Meta    map[string]string `json:"meta,omitempty"`
	Columns []string          `json:"columns"`
	Rows    []profile.Row     `json:"rows"`
}

// HasColumn reports whether the source header contained name.
func (p *Parsed) HasColumn(name string) bool {
	for _, c := range p.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EncodeTable writes the metadata block and the CSV body of table to w.
func EncodeTable(w io.Writer, table *profile.Table) error {
	bw := bufio.NewWriter(w)
	meta := []string{MetaKind + "=" + string(table.Kind)}
	for _, p := range table.Params {
		meta = append(meta, p.Name+"="+formatFloat(p.Value))
	}
	meta = append(meta,
		MetaBoundary+"="+formatFloat(table.Boundary),
		MetaPoints+"="+strconv.Itoa(len(table.Rows)),
	)
	for _, line := range meta {
		if _, err := fmt.Fprintf(bw, "# %s\n", line); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(bw)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	record := make([]string, len(Columns))
	for _, row := range table.Rows {
		record[0] = formatFloat(row.R)
		record[1] = formatFloat(row.Rho)
		record[2] = formatFloat(row.P)
		record[3] = formatFloat(row.POverRho)
		record[4] = formatFloat(row.CS2)
		record[5] = strconv.Itoa(row.Label)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteTable atomically replaces path with the encoded table.
func WriteTable(ctx context.Context, path string, table *profile.Table) error {
	return writeAtomic(ctx, path, func(w io.Writer) error { return EncodeTable(w, table) })
}

// ReadTable parses a table. Leading "# key=value" lines become metadata,
// column names are case-insensitive and only r, rho and p are required.
// Missing p_over_rho and label columns are derived from the row.
func ReadTable(r io.Reader) (*Parsed, error) {
	br := bufio.NewReader(r)
	out := &Parsed{Meta: map[string]string{}}
	for {
		b, err := br.Peek(1)
		if err != nil || b[0] != '#' {
			break
		}
		line, err := br.ReadString('\n')
		if k, v, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), "="); ok {
			out.Meta[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		if err != nil {
			break
		}
	}

	cr := csv.NewReader(br)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMalformedTable)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}

	idx := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		out.Columns = append(out.Columns, name)
		idx[name] = i
	}
	for _, required := range []string{"r", "rho", "p"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	_, hasRatio := idx["p_over_rho"]
	_, hasLabel := idx["label"]
	cs2Col, hasCS2 := idx["cs2"]

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		cell := func(name string) (float64, error) {
			v, err := parseFloat(record[idx[name]])
			if err != nil {
				return 0, fmt.Errorf("%w: line %d column %s: %v", ErrMalformedTable, line, name, err)
			}
			return v, nil
		}

		var row profile.Row
		if row.R, err = cell("r"); err != nil {
			return nil, err
		}
		if row.Rho, err = cell("rho"); err != nil {
			return nil, err
		}
		if row.P, err = cell("p"); err != nil {
			return nil, err
		}
		if hasCS2 {
			if row.CS2, err = parseFloat(record[cs2Col]); err != nil {
				return nil, fmt.Errorf("%w: line %d column cs2: %v", ErrMalformedTable, line, err)
			}
		}
		if hasRatio {
			if row.POverRho, err = cell("p_over_rho"); err != nil {
				return nil, err
			}
		} else if row.Rho != 0 {
			row.POverRho = row.P / row.Rho
		}
		if hasLabel {
			label, err := strconv.Atoi(strings.TrimSpace(record[idx["label"]]))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column label: %v", ErrMalformedTable, line, err)
			}
			row.Label = label
		} else {
			row.Label = profile.PointLabel(row)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// ReadTableFile opens and parses path.
func ReadTableFile(path string) (*Parsed, error) {
	f, err := os.Open(path) // #nosec G304 -- caller controls path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadTable(f)
}

// MetaKeys returns the metadata keys in sorted order.
func (p *Parsed) MetaKeys() []string {
	keys := make([]string, 0, len(p.Meta))
	for k := range p.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeAtomic(ctx context.Context, path string, encode func(io.Writer) error) error {
	logger := xglog.FromContext(ctx)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file %s: %w", path, err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Str(xglog.FieldPath, path).Msg("cleanup pending file")
		}
	}()

	if err := encode(pendingFile); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}

// formatFloat writes infinities the way pandas does.
func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
