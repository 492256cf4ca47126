// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/dynaminput"
	"github.com/cpmech/kalix/kerrors"
)

// User is a water demand node: it diverts up to PumpCapacity from its
// accumulated inflow to satisfy Demand, subject to an annual extraction cap
// (reset each ResetMonth) and a minimum downstream flow threshold below
// which no pumping occurs. Unmet demand carries over to the next timestep
// rather than being dropped, a richer model than the unconstrained
// diversion node it descends from (original_source/src/nodes/
// diversion_node.rs has a single ds_link and no annual cap/carryover).
// Outlet 0 (ds_1) carries the remaining flow past the user; outlet 1
// (ds_2) carries the extracted volume, so a downstream consumer of the
// extraction amount can be wired generically instead of reading a
// recorder by name.
type User struct {
	Base

	Demand  dynaminput.Input
	Regular dynaminput.Input // a secondary, non-demand-driven consumptive use

	PumpCapacity  float64
	AnnualCap     float64
	FlowThreshold float64
	ResetMonth    int // 1-12, month in which AnnualExtracted resets to 0

	AnnualExtracted float64
	lastMonth       int
	carryover       float64

	dsflow    float64
	extracted float64

	OutFlow      int
	OutExtracted int
}

func init() { Register("user", NewUser) }

// NewUser returns an uninitialised User node with an unlimited pump
// capacity and cap, a reset month of January, and no flow threshold.
func NewUser(name string) Node {
	return &User{
		Base:          Base{NodeName: name},
		PumpCapacity:  1e18,
		AnnualCap:     1e18,
		FlowThreshold: 0,
		ResetMonth:    1,
		lastMonth:     -1,
	}
}

// Init registers this node's output series.
func (n *User) Init(c *cache.Cache) error {
	n.resetBase()
	n.dsflow, n.extracted = 0, 0
	n.OutFlow = c.GetOrAddNewSeries(makeResultName(n.NodeName, "ds_1"), false)
	n.OutExtracted = c.GetOrAddNewSeries(makeResultName(n.NodeName, "ds_2"), false)
	n.lastMonth = -1
	n.AnnualExtracted = 0
	n.carryover = 0
	return nil
}

// RunFlowPhase extracts water to meet demand plus any carried-over
// shortfall, bounded by pump capacity, the remaining annual cap, and the
// requirement that downstream flow not drop below FlowThreshold.
func (n *User) RunFlowPhase(c *cache.Cache) error {
	if c.Month != n.lastMonth {
		if c.Month == n.ResetMonth {
			n.AnnualExtracted = 0
		}
		n.lastMonth = c.Month
	}

	in := n.usflow
	demand := n.Demand.GetValue(c) + n.carryover
	if demand < 0 {
		demand = 0
	}
	if reg := n.Regular; reg.Kind != dynaminput.KindNone {
		demand += reg.GetValue(c)
	}

	available := in - n.FlowThreshold
	if available < 0 {
		available = 0
	}

	capRemaining := n.AnnualCap - n.AnnualExtracted
	if capRemaining < 0 {
		capRemaining = 0
	}

	extract := demand
	if extract > n.PumpCapacity {
		extract = n.PumpCapacity
	}
	if extract > available {
		extract = available
	}
	if extract > capRemaining {
		extract = capRemaining
	}
	if extract < 0 {
		extract = 0
	}

	n.AnnualExtracted += extract
	n.carryover = demand - extract
	n.extracted = extract
	n.dsflow = in - extract

	c.AddValueAtIndex(n.OutExtracted, n.extracted)
	c.AddValueAtIndex(n.OutFlow, n.dsflow)
	n.mbal += (n.dsflow + n.extracted) - n.usflow
	n.usflow = 0
	return nil
}

// RemoveDsflow returns and clears outlet 0 (remaining flow) or outlet 1
// (extracted volume).
func (n *User) RemoveDsflow(outlet int) float64 {
	switch outlet {
	case 0:
		v := n.dsflow
		n.dsflow = 0
		return v
	case 1:
		v := n.extracted
		n.extracted = 0
		return v
	default:
		return 0
	}
}

// ListParams returns the names and bounds of this node's scalar parameters.
func (n *User) ListParams() []ParamInfo {
	return []ParamInfo{
		{Name: "pump_capacity", Min: 0, Max: 1e7},
		{Name: "annual_cap", Min: 0, Max: 1e9},
		{Name: "flow_threshold", Min: 0, Max: 1e6},
		{Name: "reset_month", Min: 1, Max: 12},
	}
}

// GetParam returns the current value of a parameter by name.
func (n *User) GetParam(name string) (float64, error) {
	switch name {
	case "pump_capacity":
		return n.PumpCapacity, nil
	case "annual_cap":
		return n.AnnualCap, nil
	case "flow_threshold":
		return n.FlowThreshold, nil
	case "reset_month":
		return float64(n.ResetMonth), nil
	default:
		return 0, kerrors.WithIdent(kerrors.InvalidParams, name, "unknown user parameter")
	}
}

// SetParam assigns a parameter by name.
func (n *User) SetParam(name string, value float64) error {
	switch name {
	case "pump_capacity":
		if value < 0 {
			return kerrors.WithIdent(kerrors.InvalidParams, name, "pump_capacity must be non-negative")
		}
		n.PumpCapacity = value
	case "annual_cap":
		if value < 0 {
			return kerrors.WithIdent(kerrors.InvalidParams, name, "annual_cap must be non-negative")
		}
		n.AnnualCap = value
	case "flow_threshold":
		n.FlowThreshold = value
	case "reset_month":
		m := int(value)
		if m < 1 || m > 12 {
			return kerrors.WithIdent(kerrors.InvalidParams, name, "reset_month must lie in [1,12], got %v", value)
		}
		n.ResetMonth = m
	default:
		return kerrors.WithIdent(kerrors.InvalidParams, name, "unknown user parameter")
	}
	return nil
}

// Clone returns an independent copy.
func (n *User) Clone() Node {
	clone := *n
	return &clone
}
