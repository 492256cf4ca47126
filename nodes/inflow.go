// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/dynaminput"
	"github.com/cpmech/kalix/kerrors"
)

// Inflow is a source node: its downstream flow is an arbitrary Dynamic
// Input (usually a DirectReference to a gauged or generated inflow series)
// plus whatever the generic link mechanism delivers to its inlet, so an
// Inflow can also serve as a join point if another node is ever linked
// into it.
type Inflow struct {
	Base
	Flow    dynaminput.Input
	dsflow  float64
	OutFlow int // cache series index this node writes to
}

func init() { Register("inflow", NewInflow) }

// NewInflow returns an uninitialised Inflow node.
func NewInflow(name string) Node { return &Inflow{Base: Base{NodeName: name}} }

// Init registers this node's output series.
func (n *Inflow) Init(c *cache.Cache) error {
	n.resetBase()
	n.dsflow = 0
	n.OutFlow = c.GetOrAddNewSeries(makeResultName(n.NodeName, "dsflow"), false)
	return nil
}

// RunFlowPhase writes the Dynamic Input's current value plus any upstream
// link flow as downstream flow.
func (n *Inflow) RunFlowPhase(c *cache.Cache) error {
	n.dsflow = n.Flow.GetValue(c) + n.usflow
	c.AddValueAtIndex(n.OutFlow, n.dsflow)
	n.mbal += n.dsflow - n.usflow
	n.usflow = 0
	return nil
}

// RemoveDsflow returns and clears the accumulated downstream flow at
// outlet 0; Inflow has no other outlets.
func (n *Inflow) RemoveDsflow(outlet int) float64 {
	if outlet != 0 {
		return 0
	}
	v := n.dsflow
	n.dsflow = 0
	return v
}

// ListParams returns no calibratable scalar parameters; the Flow Dynamic
// Input's own rainfall-weight parameters (if any) are addressed separately.
func (n *Inflow) ListParams() []ParamInfo { return nil }

// GetParam always errors: Inflow has no scalar parameters.
func (n *Inflow) GetParam(name string) (float64, error) {
	return 0, kerrors.WithIdent(kerrors.InvalidParams, name, "inflow node has no scalar parameters")
}

// SetParam always errors: Inflow has no scalar parameters.
func (n *Inflow) SetParam(name string, value float64) error {
	return kerrors.WithIdent(kerrors.InvalidParams, name, "inflow node has no scalar parameters")
}

// Clone returns an independent copy.
func (n *Inflow) Clone() Node {
	clone := *n
	return &clone
}
