// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import (
	"math"

	"github.com/cpmech/kalix/kerrors"
)

// Period is an auto-derived or user-specified simulation horizon (spec §4.2,
// "Model Configuration").
type Period struct {
	StartTimestamp int64
	EndTimestamp   int64
	StepSize       int64
	NSteps         int
}

// DetectSimulationPeriod implements §4.2: take the first critical input's
// series as the initial mask; for every subsequent critical input, mask out
// (set NaN) wherever that input is NaN, aligning by absolute timestamp; the
// simulation period is the longest contiguous all-non-NaN prefix of the
// resulting mask.
func (c *Cache) DetectSimulationPeriod() (Period, error) {
	var criticalIdx []int
	for i := range c.series {
		if c.critical[i] {
			criticalIdx = append(criticalIdx, i)
		}
	}
	if len(criticalIdx) == 0 {
		return Period{}, kerrors.New(kerrors.ConfigError, "no critical inputs registered; cannot auto-detect simulation period")
	}

	first := c.series[criticalIdx[0]]
	mask := make([]float64, first.Len())
	copy(mask, first.Values)
	maskStart := first.StartTimestamp
	maskStep := first.StepSize

	for _, idx := range criticalIdx[1:] {
		s := c.series[idx]
		if s.StepSize != maskStep {
			return Period{}, kerrors.WithIdent(kerrors.ConfigError, c.namesByIndex[idx],
				"critical input has a different step size than the rest of the model")
		}
		for i, v := range mask {
			if math.IsNaN(v) {
				continue
			}
			ts := maskStart + int64(i)*maskStep
			j := s.IndexOfTimestamp(ts)
			if j < 0 || math.IsNaN(s.Values[j]) {
				mask[i] = math.NaN()
			}
		}
	}

	n := 0
	for _, v := range mask {
		if math.IsNaN(v) {
			break
		}
		n++
	}
	if n == 0 {
		return Period{}, kerrors.New(kerrors.ConfigError, "no contiguous non-missing prefix found across critical inputs")
	}

	return Period{
		StartTimestamp: maskStart,
		EndTimestamp:   maskStart + int64(n-1)*maskStep,
		StepSize:       maskStep,
		NSteps:         n,
	}, nil
}
