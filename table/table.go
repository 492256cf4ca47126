// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package table implements a monotone piecewise-linear lookup table, the
// level/volume/area/spill dimension table used by storage nodes (spec §4.4).
// It plays the same role gosl/la.LinInterp and friends play in gofem's
// tabulated boundary conditions, but linear interpolation and inversion only
// (the domain never needs splines): a monotone increasing independent
// column and an arbitrary number of monotone dependent columns.
package table

import (
	"sort"

	"github.com/cpmech/kalix/kerrors"
)

// Table is a level-indexed storage dimension table: one strictly increasing
// "level" column and any number of dependent columns (volume, area, spill,
// ...), each assumed monotone non-decreasing in level.
type Table struct {
	Level  []float64
	Cols   map[string][]float64
	colIdx []string
}

// New returns an empty Table.
func New() *Table {
	return &Table{Cols: make(map[string][]float64)}
}

// AddColumn registers a dependent column; values must have the same length
// as every row added via AddRow so far (or be added before any rows).
func (t *Table) AddColumn(name string, values []float64) error {
	if len(t.Level) != 0 && len(values) != len(t.Level) {
		return kerrors.New(kerrors.ConfigError, "table column %q has %d rows, expected %d", name, len(values), len(t.Level))
	}
	if _, ok := t.Cols[name]; !ok {
		t.colIdx = append(t.colIdx, name)
	}
	t.Cols[name] = values
	return nil
}

// AddRow appends one row: level plus one value per column named in cols
// (must exactly match the set of columns already registered via AddColumn,
// or be the very first row).
func (t *Table) AddRow(level float64, cols map[string]float64) error {
	if len(t.Level) > 0 && level <= t.Level[len(t.Level)-1] {
		return kerrors.New(kerrors.ConfigError, "table level column must be strictly increasing, got %v after %v", level, t.Level[len(t.Level)-1])
	}
	t.Level = append(t.Level, level)
	for name, v := range cols {
		if _, ok := t.Cols[name]; !ok {
			t.Cols[name] = make([]float64, len(t.Level)-1)
			t.colIdx = append(t.colIdx, name)
		}
		t.Cols[name] = append(t.Cols[name], v)
	}
	return nil
}

// NRows returns the number of rows in the table.
func (t *Table) NRows() int { return len(t.Level) }

// Validate checks every column has one value per level row and the level
// column has at least two rows (needed to bracket any interpolation).
func (t *Table) Validate() error {
	if len(t.Level) < 2 {
		return kerrors.New(kerrors.ConfigError, "storage dimension table needs at least 2 rows, got %d", len(t.Level))
	}
	for _, name := range t.colIdx {
		if len(t.Cols[name]) != len(t.Level) {
			return kerrors.New(kerrors.ConfigError, "table column %q has %d rows, expected %d", name, len(t.Cols[name]), len(t.Level))
		}
	}
	return nil
}

// bracket returns the row index i such that Level[i] <= x < Level[i+1], the
// last usable segment index (clamped) if x is outside the table's range.
func (t *Table) bracket(x float64) int {
	n := len(t.Level)
	i := sort.Search(n, func(i int) bool { return t.Level[i] > x }) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}
	return i
}

// Interp linearly interpolates column "col" at independent value x,
// extrapolating linearly from the nearest end segment if x lies outside the
// table's level range.
func (t *Table) Interp(col string, x float64) (float64, error) {
	vals, ok := t.Cols[col]
	if !ok {
		return 0, kerrors.New(kerrors.ConfigError, "unknown storage table column %q", col)
	}
	i := t.bracket(x)
	x0, x1 := t.Level[i], t.Level[i+1]
	y0, y1 := vals[i], vals[i+1]
	if x1 == x0 {
		return y0, nil
	}
	frac := (x - x0) / (x1 - x0)
	return y0 + frac*(y1-y0), nil
}

// InvertMonotone returns the level x such that Interp(col, x) == y, assuming
// col is monotone non-decreasing in level. If y lies outside the column's
// range the nearest end level is returned.
func (t *Table) InvertMonotone(col string, y float64) (float64, error) {
	vals, ok := t.Cols[col]
	if !ok {
		return 0, kerrors.New(kerrors.ConfigError, "unknown storage table column %q", col)
	}
	n := len(vals)
	if y <= vals[0] {
		return t.Level[0], nil
	}
	if y >= vals[n-1] {
		return t.Level[n-1], nil
	}
	i := sort.Search(n, func(i int) bool { return vals[i] > y }) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}
	y0, y1 := vals[i], vals[i+1]
	x0, x1 := t.Level[i], t.Level[i+1]
	if y1 == y0 {
		return x0, nil
	}
	frac := (y - y0) / (y1 - y0)
	return x0 + frac*(x1-x0), nil
}

// MaxLevel returns the greatest tabulated level.
func (t *Table) MaxLevel() float64 {
	if len(t.Level) == 0 {
		return 0
	}
	return t.Level[len(t.Level)-1]
}

// MinLevel returns the least tabulated level.
func (t *Table) MinLevel() float64 {
	if len(t.Level) == 0 {
		return 0
	}
	return t.Level[0]
}
