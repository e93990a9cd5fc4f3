package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"colroute/internal/integrations"
)

var _ integrations.MatrixSource = Source{}

// Source reads a header-less numeric table, one matrix row per line.
type Source struct {
	Path string
	// Comma is the field separator; zero means ';'.
	Comma rune
}

func (s Source) Name() string { return "csv-file" }

func (s Source) Load(ctx context.Context) ([][]float64, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	m, err := Parse(ctx, f, s.Comma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return m, nil
}

// Parse reads a matrix from r. Blank lines are skipped and cells are trimmed.
func Parse(ctx context.Context, r io.Reader, comma rune) ([][]float64, error) {
	if comma == 0 {
		comma = ';'
	}
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var out [][]float64
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]float64, 0, len(rec))
		for col, cell := range rec {
			cell = strings.TrimSpace(cell)
			if cell == "" && col == len(rec)-1 {
				// tolerate a trailing separator
				continue
			}
			v, err := strconv.ParseFloat(strings.Replace(cell, ",", ".", 1), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %q is not a number", line, col+1, cell)
			}
			row = append(row, v)
		}
		out = append(out, row)
	}
	return out, nil
}
