// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cache implements the Data Cache: a mapping from case-insensitive
// series name to series index, backed by an ordered sequence of Timeseries,
// plus the current-step cursor, calendar fields, and the Constants subcache.
//
// Everything in the cache is a timeseries: inputs, node results, and function
// results are all addressed the same way, first by name (during node
// initialisation) and then by integer index (the hot path).
package cache

import (
	"math"
	"strings"
	"time"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/kalix/timeseries"
)

// Cache is the Data Cache (spec §3, §4.1).
type Cache struct {
	series       []*timeseries.Timeseries
	namesByIndex []string
	nameToIndex  map[string]int
	critical     []bool

	CurrentStep    int
	StartTimestamp int64
	StepSize       int64

	Constants *Constants

	// derived calendar fields for the current step
	Year       int
	Month      int
	Day        int
	DayOfYear  int
	SecondsDay int
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		nameToIndex: make(map[string]int),
		Constants:   NewConstants(),
	}
}

func normalise(name string) string {
	return strings.ToLower(name)
}

// GetOrAddNewSeries returns the stable index of name, creating an empty
// series (with the cache's current start/step) if it does not exist yet.
// critical marks whether missing values in this series constrain the
// auto-detected simulation period (§4.2).
func (c *Cache) GetOrAddNewSeries(name string, critical bool) int {
	key := normalise(name)
	if idx, ok := c.nameToIndex[key]; ok {
		if critical {
			c.critical[idx] = true
		}
		return idx
	}
	idx := len(c.series)
	c.series = append(c.series, timeseries.New(c.StartTimestamp, c.StepSize))
	c.namesByIndex = append(c.namesByIndex, name)
	c.critical = append(c.critical, critical)
	c.nameToIndex[key] = idx
	return idx
}

// GetExistingSeriesIdx performs a read-only, case-insensitive lookup.
func (c *Cache) GetExistingSeriesIdx(name string) (int, bool) {
	idx, ok := c.nameToIndex[normalise(name)]
	return idx, ok
}

// SeriesName returns the series name at idx as originally registered.
func (c *Cache) SeriesName(idx int) string {
	return c.namesByIndex[idx]
}

// NumSeries returns the number of registered series.
func (c *Cache) NumSeries() int {
	return len(c.series)
}

// IsCritical reports whether the series at idx is a critical input.
func (c *Cache) IsCritical(idx int) bool {
	return c.critical[idx]
}

// Series returns the underlying Timeseries at idx (read access only; writes
// must go through AddValueAtIndex to preserve NaN padding).
func (c *Cache) Series(idx int) *timeseries.Timeseries {
	return c.series[idx]
}

// SetStartAndStepSize configures the horizon shared by every series and
// resets the current step to 0.
func (c *Cache) SetStartAndStepSize(start, step int64) {
	c.StartTimestamp = start
	c.StepSize = step
	for _, s := range c.series {
		s.StartTimestamp = start
		s.StepSize = step
	}
	c.SetCurrentStep(0)
}

// SetCurrentStep moves the cursor and recomputes calendar fields.
func (c *Cache) SetCurrentStep(i int) {
	c.CurrentStep = i
	ts := time.Unix(c.StartTimestamp+int64(i)*c.StepSize, 0).UTC()
	c.Year = ts.Year()
	c.Month = int(ts.Month())
	c.Day = ts.Day()
	c.DayOfYear = ts.YearDay()
	c.SecondsDay = ts.Hour()*3600 + ts.Minute()*60 + ts.Second()
}

// AddValueAtIndex pads idx's series with NaN up to CurrentStep if needed,
// then writes value at CurrentStep.
func (c *Cache) AddValueAtIndex(idx int, value float64) {
	c.series[idx].SetAt(c.CurrentStep, value)
}

// GetCurrentValue returns the value of series idx at the current step,
// with no bounds checking: this is the hot path and callers only use it for
// series known to have been written up to the current step.
func (c *Cache) GetCurrentValue(idx int) float64 {
	return c.series[idx].Values[c.CurrentStep]
}

// GetValueWithOffset returns the value offset steps away from the current
// step (negative offset = lookback); NaN if out of range.
func (c *Cache) GetValueWithOffset(idx int, offset int) float64 {
	i := c.CurrentStep + offset
	return c.series[idx].ValueAt(i)
}

// GetValueWithOffsetOrDefault is GetValueWithOffset but substitutes def when
// the looked-up value is NaN (whether from out-of-range or a missing value).
func (c *Cache) GetValueWithOffsetOrDefault(idx int, offset int, def float64) float64 {
	v := c.GetValueWithOffset(idx, offset)
	if math.IsNaN(v) {
		return def
	}
	return v
}

// Clone returns an independent deep copy, for use by optimisation workers
// that each own a cloned Model+Cache (spec §5, §4.7 CloneForParallel).
func (c *Cache) Clone() *Cache {
	out := &Cache{
		nameToIndex:    make(map[string]int, len(c.nameToIndex)),
		CurrentStep:    c.CurrentStep,
		StartTimestamp: c.StartTimestamp,
		StepSize:       c.StepSize,
		Constants:      c.Constants.Clone(),
		Year:           c.Year,
		Month:          c.Month,
		Day:            c.Day,
		DayOfYear:      c.DayOfYear,
		SecondsDay:     c.SecondsDay,
	}
	for k, v := range c.nameToIndex {
		out.nameToIndex[k] = v
	}
	out.namesByIndex = append(out.namesByIndex, c.namesByIndex...)
	out.critical = append(out.critical, c.critical...)
	for _, s := range c.series {
		out.series = append(out.series, s.Clone())
	}
	return out
}

// MustGetExistingSeriesIdx is a convenience wrapper that panics via
// chk.Panic on a missing series; reserved for callers that have already
// validated the name exists (e.g. recorder lookups right after creation).
func (c *Cache) MustGetExistingSeriesIdx(name string) int {
	idx, ok := c.GetExistingSeriesIdx(name)
	if !ok {
		chk.Panic("cache: series %q does not exist", name)
	}
	return idx
}
