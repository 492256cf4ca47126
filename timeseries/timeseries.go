// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package timeseries implements the ordered (timestamp, value) series that
// underlies every input and result in the simulator: a common start
// timestamp, a fixed integer step size in seconds, and values indexed 0..N-1
// at timestamps start+i*step. A value may be NaN, meaning "missing".
package timeseries

import "math"

// Timeseries holds a uniformly-stepped sequence of values. Values[i]
// corresponds to timestamp StartTimestamp + i*StepSize (unix seconds).
type Timeseries struct {
	StartTimestamp int64
	StepSize       int64
	Values         []float64
}

// New returns an empty Timeseries with the given start and step.
func New(start, step int64) *Timeseries {
	return &Timeseries{StartTimestamp: start, StepSize: step}
}

// Len returns the number of values.
func (t *Timeseries) Len() int {
	return len(t.Values)
}

// TimestampAt returns the timestamp of index i.
func (t *Timeseries) TimestampAt(i int) int64 {
	return t.StartTimestamp + int64(i)*t.StepSize
}

// ValueAt returns the value at index i, or NaN if i is out of range.
func (t *Timeseries) ValueAt(i int) float64 {
	if i < 0 || i >= len(t.Values) {
		return math.NaN()
	}
	return t.Values[i]
}

// PadWithNaN grows Values to length n, filling new entries with NaN.
func (t *Timeseries) PadWithNaN(n int) {
	for len(t.Values) < n {
		t.Values = append(t.Values, math.NaN())
	}
}

// SetAt writes value at index i, padding preceding indices with NaN if the
// series is not yet that long.
func (t *Timeseries) SetAt(i int, value float64) {
	if i >= len(t.Values) {
		t.PadWithNaN(i + 1)
	}
	t.Values[i] = value
}

// IndexOfTimestamp returns the index of ts, or -1 if ts does not align with
// StartTimestamp/StepSize or falls outside [0, Len).
func (t *Timeseries) IndexOfTimestamp(ts int64) int {
	if t.StepSize <= 0 {
		return -1
	}
	delta := ts - t.StartTimestamp
	if delta < 0 || delta%t.StepSize != 0 {
		return -1
	}
	i := int(delta / t.StepSize)
	if i >= len(t.Values) {
		return -1
	}
	return i
}

// LongestNonNaNPrefix returns the length of the longest contiguous run of
// non-NaN values starting at index 0.
func (t *Timeseries) LongestNonNaNPrefix() int {
	n := 0
	for _, v := range t.Values {
		if math.IsNaN(v) {
			break
		}
		n++
	}
	return n
}

// Clone returns an independent deep copy.
func (t *Timeseries) Clone() *Timeseries {
	c := &Timeseries{StartTimestamp: t.StartTimestamp, StepSize: t.StepSize}
	c.Values = append(c.Values, t.Values...)
	return c
}

// AlignInner returns the values of a and b restricted to timestamps present
// in both series (inner join by absolute timestamp), preserving temporal
// order. Used by the Optimisation Problem to align observed and simulated
// series before scoring (spec §4.7, §8 Alignment invariant).
func AlignInner(a, b *Timeseries) (av, bv []float64) {
	// Build a's timestamp->value map once; walk b once in order.
	idx := make(map[int64]float64, a.Len())
	for i := 0; i < a.Len(); i++ {
		idx[a.TimestampAt(i)] = a.Values[i]
	}
	for i := 0; i < b.Len(); i++ {
		ts := b.TimestampAt(i)
		if va, ok := idx[ts]; ok {
			av = append(av, va)
			bv = append(bv, b.Values[i])
		}
	}
	return
}
