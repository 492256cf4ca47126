// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/kerrors"
)

// Confluence is the graph's join point: it sums every link's flow into its
// inlet (the generic AddUsflow accumulation every node already performs)
// and passes the total on unchanged. Unlike every other simple node here,
// Confluence is typically fed by more than one incoming link, but it needs
// no special-cased summing logic of its own — Base's accumulator already
// sums whatever arrives (original_source/src/nodes/confluence_node.rs is,
// correspondingly, a plain pass-through identical to Gauge's).
type Confluence struct {
	Base
	dsflow  float64
	OutFlow int
}

func init() { Register("confluence", NewConfluence) }

// NewConfluence returns an uninitialised Confluence node.
func NewConfluence(name string) Node { return &Confluence{Base: Base{NodeName: name}} }

// Init registers this node's output series.
func (n *Confluence) Init(c *cache.Cache) error {
	n.resetBase()
	n.dsflow = 0
	n.OutFlow = c.GetOrAddNewSeries(makeResultName(n.NodeName, "dsflow"), false)
	return nil
}

// RunFlowPhase sums every inflow accumulated this step into downstream flow.
func (n *Confluence) RunFlowPhase(c *cache.Cache) error {
	n.dsflow = n.usflow
	c.AddValueAtIndex(n.OutFlow, n.dsflow)
	n.usflow = 0
	return nil
}

// RemoveDsflow returns and clears the accumulated downstream flow at
// outlet 0; Confluence has no other outlets.
func (n *Confluence) RemoveDsflow(outlet int) float64 {
	if outlet != 0 {
		return 0
	}
	v := n.dsflow
	n.dsflow = 0
	return v
}

// ListParams returns no scalar parameters.
func (n *Confluence) ListParams() []ParamInfo { return nil }

// GetParam always errors: Confluence has no scalar parameters.
func (n *Confluence) GetParam(name string) (float64, error) {
	return 0, kerrors.WithIdent(kerrors.InvalidParams, name, "confluence node has no scalar parameters")
}

// SetParam always errors: Confluence has no scalar parameters.
func (n *Confluence) SetParam(name string, value float64) error {
	return kerrors.WithIdent(kerrors.InvalidParams, name, "confluence node has no scalar parameters")
}

// Clone returns an independent copy.
func (n *Confluence) Clone() Node {
	clone := *n
	return &clone
}
