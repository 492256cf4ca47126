// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/dynaminput"
	"github.com/cpmech/kalix/kerrors"
	"github.com/cpmech/kalix/table"
)

// OutletKind classifies one of Storage's four outlets.
type OutletKind int

const (
	// OutletNone means the outlet does not exist; its order is ignored and
	// it never contributes to the balance.
	OutletNone OutletKind = iota
	// OutletWithMOL is a managed outlet that only releases once the
	// reservoir is at or above MOLLevel, the minimum operating level.
	OutletWithMOL
	// OutletWithMOLAndCapacity is OutletWithMOL with an additional rated
	// capacity, recorded for reference but not separately enforced: the
	// dimension table's own extent already bounds achievable flow.
	OutletWithMOLAndCapacity
)

// OutletDef configures one of Storage's outlets.
type OutletDef struct {
	Kind     OutletKind
	MOLLevel float64 // minimum operating level (outlets 1-3 only)
	Capacity float64 // rated capacity, informational (OutletWithMOLAndCapacity)
}

// Storage is a reservoir node implementing the backward-Euler two-pass
// equilibrium solve of spec §4.4: a level/volume/area/spill dimension table,
// up to four outlets each with its own minimum operating level, a priority
// pond diversion taken before the solve, and a spill-limited/order-limited
// split on outlet 0 (the spillway). Unlike the original's
// (original_source/src/nodes/storage_node.rs) upstream order-routing
// network (FIFO travel-time buffers feeding each outlet's target level from
// downstream demand), this node evaluates Orders directly each step with no
// delay — a deliberate, documented simplification (see DESIGN.md).
type Storage struct {
	Base

	Inflow      dynaminput.Input
	Rain        dynaminput.Input // depth per step (mm) falling on the water surface
	PET         dynaminput.Input // depth per step (mm) evaporating from the water surface
	SeepageCoef float64          // fixed seepage volume per step (ML), independent of level
	PondDemand  dynaminput.Input // highest-priority diversion taken before the backward-Euler solve

	Orders  [4]dynaminput.Input
	Outlets [4]OutletDef

	Dimensions *table.Table

	Level             float64
	volume            float64
	minOperatingLevel [4]float64
	orders            [4]float64
	lastDs            [4]float64

	OutVolume, OutLevel, OutArea int
	OutPondDiversion             int
	OutSeep, OutRain, OutEvap    int
	OutDsflow                    int
	OutDsSpill                   int
	OutDsOutlet                  int
	OutDs                        [4]int
	OutOrder                     [4]int
	OutOrderDue                  [4]int
}

func init() { Register("storage", NewStorage) }

// NewStorage returns an uninitialised Storage node with a single
// uncontrolled spillway outlet; Dimensions must be set before Init runs.
func NewStorage(name string) Node {
	return &Storage{
		Base:    Base{NodeName: name},
		Outlets: [4]OutletDef{{Kind: OutletWithMOL}},
	}
}

// Init validates the dimension table, converts each outlet's minimum
// operating level (already a level, carried straight through), registers
// every recorder spec §4.4 names, and seeds the warm-start level at the
// bottom of the table if not otherwise configured.
func (n *Storage) Init(c *cache.Cache) error {
	n.resetBase()
	if n.Dimensions == nil {
		return kerrors.WithIdent(kerrors.ConfigError, n.NodeName, "storage node has no dimension table")
	}
	if err := n.Dimensions.Validate(); err != nil {
		return err
	}
	for i := 1; i < 4; i++ {
		n.minOperatingLevel[i] = n.Outlets[i].MOLLevel
	}

	n.OutVolume = c.GetOrAddNewSeries(makeResultName(n.NodeName, "volume"), false)
	n.OutLevel = c.GetOrAddNewSeries(makeResultName(n.NodeName, "level"), false)
	n.OutArea = c.GetOrAddNewSeries(makeResultName(n.NodeName, "area"), false)
	n.OutPondDiversion = c.GetOrAddNewSeries(makeResultName(n.NodeName, "pond_diversion"), false)
	n.OutSeep = c.GetOrAddNewSeries(makeResultName(n.NodeName, "seep"), false)
	n.OutRain = c.GetOrAddNewSeries(makeResultName(n.NodeName, "rain"), false)
	n.OutEvap = c.GetOrAddNewSeries(makeResultName(n.NodeName, "evap"), false)
	n.OutDsflow = c.GetOrAddNewSeries(makeResultName(n.NodeName, "dsflow"), false)
	n.OutDsSpill = c.GetOrAddNewSeries(makeResultName(n.NodeName, "ds_1_spill"), false)
	n.OutDsOutlet = c.GetOrAddNewSeries(makeResultName(n.NodeName, "ds_1_outlet"), false)
	for i := 1; i < 4; i++ {
		if n.Outlets[i].Kind == OutletNone {
			continue
		}
		n.OutDs[i] = c.GetOrAddNewSeries(makeResultName(n.NodeName, dsSeriesName(i)), false)
		n.OutOrder[i] = c.GetOrAddNewSeries(makeResultName(n.NodeName, dsSeriesName(i)+"_order"), false)
		n.OutOrderDue[i] = c.GetOrAddNewSeries(makeResultName(n.NodeName, dsSeriesName(i)+"_order_due"), false)
	}
	n.OutOrder[0] = c.GetOrAddNewSeries(makeResultName(n.NodeName, "ds_1_order"), false)
	n.OutOrderDue[0] = c.GetOrAddNewSeries(makeResultName(n.NodeName, "ds_1_order_due"), false)

	if n.Level == 0 {
		n.Level = n.Dimensions.MinLevel()
	}
	vol, err := n.Dimensions.Interp("volume", n.Level)
	if err != nil {
		return err
	}
	n.volume = vol
	return nil
}

// dsSeriesName returns the ds_N outlet name for a zero-based outlet index.
func dsSeriesName(outlet int) string {
	switch outlet {
	case 0:
		return "ds_1"
	case 1:
		return "ds_2"
	case 2:
		return "ds_3"
	case 3:
		return "ds_4"
	default:
		return "ds_?"
	}
}

// RunOrderPhase reads each enabled outlet's order Dynamic Input for this
// step. Orders are evaluated directly with no upstream travel-time delay
// (see the Storage doc comment and DESIGN.md).
func (n *Storage) RunOrderPhase(c *cache.Cache) error {
	for i := 0; i < 4; i++ {
		if (i > 0 && n.Outlets[i].Kind == OutletNone) || n.Orders[i].Kind == dynaminput.KindNone {
			n.orders[i] = 0
			continue
		}
		n.orders[i] = n.Orders[i].GetValue(c)
	}
	return nil
}

// RunFlowPhase takes the pond diversion, then runs the two-pass
// backward-Euler equilibrium solve for the end-of-step level (spec §4.4).
func (n *Storage) RunFlowPhase(c *cache.Cache) error {
	inflow := 0.0
	if n.Inflow.Kind != dynaminput.KindNone {
		inflow = n.Inflow.GetValue(c)
	}
	v0 := n.volume + n.usflow + inflow

	pondDiversion := 0.0
	if n.PondDemand.Kind != dynaminput.KindNone {
		pondDiversion = n.PondDemand.GetValue(c)
		if pondDiversion > v0 {
			pondDiversion = v0
		}
		if pondDiversion < 0 {
			pondDiversion = 0
		}
		v0 -= pondDiversion
	}

	rain, evap := 0.0, 0.0
	if n.Rain.Kind != dynaminput.KindNone {
		rain = n.Rain.GetValue(c)
	}
	if n.PET.Kind != dynaminput.KindNone {
		evap = n.PET.GetValue(c)
	}

	// Outlet 0 is the spillway: it is always physically present and
	// participates in the balance regardless of how Outlets[0] is
	// configured (its Kind only governs whether it additionally carries a
	// managed order on the order-limited pass).
	var enabled [4]bool
	enabled[0] = true
	for i := 1; i < 4; i++ {
		enabled[i] = n.Outlets[i].Kind != OutletNone
	}

	result, err := solveStorageTimestep(n.Dimensions, storageSolveInputs{
		V0:         v0,
		NetRainMM:  rain - evap,
		SeepageVol: n.SeepageCoef,
		Orders:     n.orders,
		Enabled:    enabled,
		MinOpLevel: n.minOperatingLevel,
	}, n.Level)
	if err != nil {
		return err
	}

	n.Level = result.Level
	n.volume = result.Volume

	c.AddValueAtIndex(n.OutLevel, result.Level)
	c.AddValueAtIndex(n.OutVolume, result.Volume)
	c.AddValueAtIndex(n.OutArea, result.Area)
	c.AddValueAtIndex(n.OutPondDiversion, pondDiversion)
	c.AddValueAtIndex(n.OutSeep, n.SeepageCoef)
	c.AddValueAtIndex(n.OutRain, rain*result.Area)
	c.AddValueAtIndex(n.OutEvap, evap*result.Area)

	ds1Outlet := result.Ds[0] - result.Spill
	if ds1Outlet < 0 {
		ds1Outlet = 0
	}
	c.AddValueAtIndex(n.OutDsSpill, result.Spill)
	c.AddValueAtIndex(n.OutDsOutlet, ds1Outlet)
	c.AddValueAtIndex(n.OutDsflow, result.Ds[0])
	c.AddValueAtIndex(n.OutOrder[0], n.orders[0])
	c.AddValueAtIndex(n.OutOrderDue[0], result.Ds[0])

	totalOut := result.Ds[0]
	for i := 1; i < 4; i++ {
		if n.Outlets[i].Kind == OutletNone {
			continue
		}
		c.AddValueAtIndex(n.OutDs[i], result.Ds[i])
		c.AddValueAtIndex(n.OutOrder[i], n.orders[i])
		c.AddValueAtIndex(n.OutOrderDue[i], result.Ds[i])
		totalOut += result.Ds[i]
	}

	n.mbal += pondDiversion + totalOut - n.usflow - inflow
	n.usflow = 0
	n.lastDs = result.Ds
	return nil
}

// RemoveDsflow returns and clears outlet 0-3's accumulated release.
func (n *Storage) RemoveDsflow(outlet int) float64 {
	if outlet < 0 || outlet > 3 {
		return 0
	}
	v := n.lastDs[outlet]
	n.lastDs[outlet] = 0
	return v
}

// ListParams returns the storage node's scalar parameters.
func (n *Storage) ListParams() []ParamInfo {
	minLevel, maxLevel := 0.0, 1e6
	if n.Dimensions != nil {
		minLevel, maxLevel = n.Dimensions.MinLevel(), n.Dimensions.MaxLevel()
	}
	params := []ParamInfo{
		{Name: "seepage_coef", Min: 0, Max: 1e6},
		{Name: "initial_level", Min: minLevel, Max: maxLevel},
	}
	for i := 0; i < 4; i++ {
		if n.Outlets[i].Kind == OutletNone {
			continue
		}
		params = append(params, ParamInfo{Name: dsSeriesName(i) + "_mol", Min: minLevel, Max: maxLevel})
	}
	return params
}

// GetParam returns the current value of a parameter by name.
func (n *Storage) GetParam(name string) (float64, error) {
	switch name {
	case "seepage_coef":
		return n.SeepageCoef, nil
	case "initial_level":
		return n.Level, nil
	}
	for i := 0; i < 4; i++ {
		if name == dsSeriesName(i)+"_mol" {
			return n.Outlets[i].MOLLevel, nil
		}
	}
	return 0, kerrors.WithIdent(kerrors.InvalidParams, name, "unknown storage parameter")
}

// SetParam assigns a parameter by name.
func (n *Storage) SetParam(name string, value float64) error {
	switch name {
	case "seepage_coef":
		if value < 0 {
			return kerrors.WithIdent(kerrors.InvalidParams, name, "seepage_coef must be non-negative")
		}
		n.SeepageCoef = value
		return nil
	case "initial_level":
		n.Level = value
		return nil
	}
	for i := 0; i < 4; i++ {
		if name == dsSeriesName(i)+"_mol" {
			n.Outlets[i].MOLLevel = value
			n.minOperatingLevel[i] = value
			return nil
		}
	}
	return kerrors.WithIdent(kerrors.InvalidParams, name, "unknown storage parameter")
}

// Clone returns an independent copy. Dimensions is never mutated after
// configuration, so it is safe to share the pointer across clones.
func (n *Storage) Clone() Node {
	clone := *n
	return &clone
}
