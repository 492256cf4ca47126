// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"github.com/cpmech/kalix/mathfn"
	"github.com/cpmech/kalix/table"
)

// maxActiveSetIterations bounds the hysteresis loop that re-solves the
// equilibrium level as outlets cross their minimum operating level (MOL)
// thresholds, after which the solve is declared constrained and the
// remaining budget is allocated in outlet-priority order instead (spec
// §4.4).
const maxActiveSetIterations = 8

// storageSolveInputs are the per-timestep terms of the storage node's
// backward-Euler level balance:
//
//	Volume(L*) = V0 + netRainMM*Area(L*) - Seepage - max(Spill(L*), Q0) - sum_i Qi(L*)
//
// where Spill is the dimension table's uncontrollable spillway column, Q0
// is outlet 0's managed release (0 on the spill-limited pass, Orders[0] on
// the order-limited pass), so outlet 0 releases the larger of the two, and
// each Qi (i=1..3) is Orders[i] while L* is at or above that outlet's
// minimum operating level, else 0.
type storageSolveInputs struct {
	V0         float64    // start-of-step volume, after pond diversion
	NetRainMM  float64    // rain - evap depth this step (mm), applied over Area(level)
	SeepageVol float64    // fixed seepage volume this step, independent of level
	Orders     [4]float64 // requested release per outlet this step
	Enabled    [4]bool    // whether outlet i exists at all (OutletKind != OutletNone)
	MinOpLevel [4]float64 // minimum operating level per outlet (unused for outlet 0)
}

// storageSolveResult is the outcome of one timestep's backward-Euler solve.
type storageSolveResult struct {
	Level         float64
	Volume        float64
	Area          float64
	Spill         float64
	Ds            [4]float64 // flow released at each outlet this step
	Unconstrained bool       // false if the active-set loop had to clamp to a budget
}

func areaAndSpillAt(t *table.Table, level float64) (area, spill float64, err error) {
	area, err = t.Interp("area", level)
	if err != nil {
		return 0, 0, err
	}
	spill, err = t.Interp("spill", level)
	if err != nil {
		return 0, 0, err
	}
	return area, spill, nil
}

// solveEquilibrium bisects for the end-of-step level satisfying the balance
// equation given q0 (outlet 0's managed release, 0 or Orders[0]) and the
// active set of outlets 1-3, warm-started from warmStart.
func solveEquilibrium(t *table.Table, in storageSolveInputs, q0 float64, active [4]bool, warmStart float64) (float64, error) {
	minLevel, maxLevel := t.MinLevel(), t.MaxLevel()

	balance := func(level float64) float64 {
		vol, verr := t.Interp("volume", level)
		if verr != nil {
			return 0
		}
		area, spill, aerr := areaAndSpillAt(t, level)
		if aerr != nil {
			return 0
		}
		outflow := spill
		if q0 > outflow {
			outflow = q0
		}
		for i := 1; i < 4; i++ {
			if active[i] {
				outflow += in.Orders[i]
			}
		}
		predicted := in.V0 + in.NetRainMM*area - in.SeepageVol - outflow
		return vol - predicted
	}

	lo, hi, ok := mathfn.ExpandBracket(balance, warmStart, 0.05*(maxLevel-minLevel)+1e-9, 2, 40)
	if !ok {
		lo, hi = minLevel, maxLevel
	}
	if lo < minLevel {
		lo = minLevel
	}
	if hi > maxLevel {
		hi = maxLevel
	}
	return mathfn.Bisect(balance, lo, hi, 1e-7, 100), nil
}

// activeSetAt reports which of outlets 1-3 are at or above their minimum
// operating level at the given level.
func activeSetAt(in storageSolveInputs, level float64) [4]bool {
	var active [4]bool
	for i := 1; i < 4; i++ {
		active[i] = in.Enabled[i] && level >= in.MinOpLevel[i]
	}
	return active
}

// solveWithActiveSet runs the hysteresis loop (spec §4.4): solve assuming
// the current active set, recompute the active set at the solution, and
// repeat until it stops changing or the iteration budget is exhausted.
func solveWithActiveSet(t *table.Table, in storageSolveInputs, q0 float64, warmStart float64) (level float64, active [4]bool, unconstrained bool, err error) {
	active = activeSetAt(in, warmStart)
	level = warmStart
	for iter := 0; iter < maxActiveSetIterations; iter++ {
		level, err = solveEquilibrium(t, in, q0, active, level)
		if err != nil {
			return 0, active, false, err
		}
		next := activeSetAt(in, level)
		if next == active {
			return level, active, true, nil
		}
		active = next
	}
	return level, active, false, nil
}

// allocateConstrained distributes whatever volume budget remains at the
// clamped level in outlet-priority order 0,1,2,3, each capped at its own
// order; used only when solveWithActiveSet fails to settle within
// maxActiveSetIterations (spec §4.4's "constrained" case).
func allocateConstrained(in storageSolveInputs, v0, vol, area, spill, q0 float64) [4]float64 {
	var ds [4]float64
	ds[0] = spill
	if q0 > ds[0] {
		ds[0] = q0
	}
	remaining := v0 + in.NetRainMM*area - in.SeepageVol - vol - ds[0]
	for i := 1; i < 4; i++ {
		if !in.Enabled[i] || remaining <= 0 {
			continue
		}
		take := in.Orders[i]
		if take > remaining {
			take = remaining
		}
		if take < 0 {
			take = 0
		}
		ds[i] = take
		remaining -= take
	}
	return ds
}

// solveStorageTimestep runs the full two-pass backward-Euler solve for one
// step: pass 1 assumes outlet 0 only passes its uncontrollable spill
// (q0=0); if that pass's resulting spill already meets or exceeds outlet
// 0's order, it stands (the managed order is satisfied by the spillway
// alone, and outlet 0 releases the dimension table's spill interpolated at
// the solved level; that release is not recomputed from the step's mass
// balance). Otherwise pass 2 re-solves with outlet 0's order
// enforced as a floor on its release, warm-started from pass 1's level
// (spec §4.4).
func solveStorageTimestep(t *table.Table, in storageSolveInputs, warmStart float64) (storageSolveResult, error) {
	if err := t.Validate(); err != nil {
		return storageSolveResult{}, err
	}

	level1, active1, unconstrained1, err := solveWithActiveSet(t, in, 0, warmStart)
	if err != nil {
		return storageSolveResult{}, err
	}
	area1, spill1, err := areaAndSpillAt(t, level1)
	if err != nil {
		return storageSolveResult{}, err
	}

	if !in.Enabled[0] || spill1 >= in.Orders[0] {
		vol1, _ := t.Interp("volume", level1)
		return finishResult(t, level1, vol1, area1, spill1, 0, active1, in, unconstrained1), nil
	}

	level2, active2, unconstrained2, err := solveWithActiveSet(t, in, in.Orders[0], level1)
	if err != nil {
		return storageSolveResult{}, err
	}
	area2, spill2, err := areaAndSpillAt(t, level2)
	if err != nil {
		return storageSolveResult{}, err
	}
	vol2, _ := t.Interp("volume", level2)
	return finishResult(t, level2, vol2, area2, spill2, in.Orders[0], active2, in, unconstrained2), nil
}

func finishResult(t *table.Table, level, vol, area, spill, q0 float64, active [4]bool, in storageSolveInputs, unconstrained bool) storageSolveResult {
	var ds [4]float64
	if unconstrained {
		ds[0] = spill
		if q0 > ds[0] {
			ds[0] = q0
		}
		for i := 1; i < 4; i++ {
			if active[i] {
				ds[i] = in.Orders[i]
			}
		}
	} else {
		ds = allocateConstrained(in, in.V0, vol, area, spill, q0)
	}
	return storageSolveResult{
		Level:         level,
		Volume:        vol,
		Area:          area,
		Spill:         spill,
		Ds:            ds,
		Unconstrained: unconstrained,
	}
}
