// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/kerrors"
)

// Gauge is a pass-through observation point: downstream flow equals
// whatever arrived via its incoming links, but the node records the value
// under its own name so a series can be addressed by gauge name in
// observed-vs-simulated comparisons (spec §4.8 Optimisation Problem).
type Gauge struct {
	Base
	dsflow  float64
	OutFlow int
}

func init() { Register("gauge", NewGauge) }

// NewGauge returns an uninitialised Gauge node.
func NewGauge(name string) Node { return &Gauge{Base: Base{NodeName: name}} }

// Init registers this node's output series.
func (n *Gauge) Init(c *cache.Cache) error {
	n.resetBase()
	n.dsflow = 0
	n.OutFlow = c.GetOrAddNewSeries(makeResultName(n.NodeName, "dsflow"), false)
	return nil
}

// RunFlowPhase passes accumulated inflow through unchanged.
func (n *Gauge) RunFlowPhase(c *cache.Cache) error {
	n.dsflow = n.usflow
	c.AddValueAtIndex(n.OutFlow, n.dsflow)
	n.usflow = 0
	return nil
}

// RemoveDsflow returns and clears the accumulated downstream flow at
// outlet 0; Gauge has no other outlets.
func (n *Gauge) RemoveDsflow(outlet int) float64 {
	if outlet != 0 {
		return 0
	}
	v := n.dsflow
	n.dsflow = 0
	return v
}

// ListParams returns no scalar parameters.
func (n *Gauge) ListParams() []ParamInfo { return nil }

// GetParam always errors: Gauge has no scalar parameters.
func (n *Gauge) GetParam(name string) (float64, error) {
	return 0, kerrors.WithIdent(kerrors.InvalidParams, name, "gauge node has no scalar parameters")
}

// SetParam always errors: Gauge has no scalar parameters.
func (n *Gauge) SetParam(name string, value float64) error {
	return kerrors.WithIdent(kerrors.InvalidParams, name, "gauge node has no scalar parameters")
}

// Clone returns an independent copy.
func (n *Gauge) Clone() Node {
	clone := *n
	return &clone
}
