// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/kerrors"
)

// Blackhole is a terminal sink node: it consumes whatever flow arrives via
// its incoming links and produces no downstream flow, used to close mass
// balance at the bottom of a network or to discard water deliberately
// (e.g. an ocean outfall).
type Blackhole struct {
	Base
	InConsum int
}

func init() { Register("blackhole", NewBlackhole) }

// NewBlackhole returns an uninitialised Blackhole node.
func NewBlackhole(name string) Node { return &Blackhole{Base: Base{NodeName: name}} }

// Init registers the series this node records consumed inflow into.
func (n *Blackhole) Init(c *cache.Cache) error {
	n.resetBase()
	n.InConsum = c.GetOrAddNewSeries(makeResultName(n.NodeName, "consumed"), false)
	return nil
}

// RunFlowPhase records the inflow received this step; nothing flows onward.
func (n *Blackhole) RunFlowPhase(c *cache.Cache) error {
	c.AddValueAtIndex(n.InConsum, n.usflow)
	n.mbal -= n.usflow
	n.usflow = 0
	return nil
}

// RemoveDsflow always returns 0: Blackhole has no outlets.
func (n *Blackhole) RemoveDsflow(outlet int) float64 { return 0 }

// ListParams returns no scalar parameters.
func (n *Blackhole) ListParams() []ParamInfo { return nil }

// GetParam always errors: Blackhole has no scalar parameters.
func (n *Blackhole) GetParam(name string) (float64, error) {
	return 0, kerrors.WithIdent(kerrors.InvalidParams, name, "blackhole node has no scalar parameters")
}

// SetParam always errors: Blackhole has no scalar parameters.
func (n *Blackhole) SetParam(name string, value float64) error {
	return kerrors.WithIdent(kerrors.InvalidParams, name, "blackhole node has no scalar parameters")
}

// Clone returns an independent copy.
func (n *Blackhole) Clone() Node {
	clone := *n
	return &clone
}
