// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/kerrors"
)

// Loss removes a fixed rate of flow (e.g. channel seepage or evaporation)
// from its accumulated inflow before passing the remainder downstream;
// loss can never exceed the available inflow.
type Loss struct {
	Base
	LossRate float64
	dsflow   float64
	OutFlow  int
	OutLoss  int
}

func init() { Register("loss", NewLoss) }

// NewLoss returns an uninitialised Loss node.
func NewLoss(name string) Node { return &Loss{Base: Base{NodeName: name}} }

// Init registers this node's output series.
func (n *Loss) Init(c *cache.Cache) error {
	n.resetBase()
	n.dsflow = 0
	n.OutFlow = c.GetOrAddNewSeries(makeResultName(n.NodeName, "dsflow"), false)
	n.OutLoss = c.GetOrAddNewSeries(makeResultName(n.NodeName, "loss"), false)
	return nil
}

// RunFlowPhase subtracts LossRate from the accumulated inflow, clamped to
// non-negative downstream flow.
func (n *Loss) RunFlowPhase(c *cache.Cache) error {
	in := n.usflow
	loss := n.LossRate
	if loss > in {
		loss = in
	}
	n.dsflow = in - loss
	c.AddValueAtIndex(n.OutLoss, loss)
	c.AddValueAtIndex(n.OutFlow, n.dsflow)
	n.mbal += n.dsflow - n.usflow
	n.usflow = 0
	return nil
}

// RemoveDsflow returns and clears the accumulated downstream flow at
// outlet 0; Loss has no other outlets.
func (n *Loss) RemoveDsflow(outlet int) float64 {
	if outlet != 0 {
		return 0
	}
	v := n.dsflow
	n.dsflow = 0
	return v
}

// ListParams returns "loss_rate".
func (n *Loss) ListParams() []ParamInfo {
	return []ParamInfo{{Name: "loss_rate", Min: 0, Max: 1e6}}
}

// GetParam returns the loss rate.
func (n *Loss) GetParam(name string) (float64, error) {
	if name != "loss_rate" {
		return 0, kerrors.WithIdent(kerrors.InvalidParams, name, "unknown loss parameter")
	}
	return n.LossRate, nil
}

// SetParam sets the loss rate, which must be non-negative.
func (n *Loss) SetParam(name string, value float64) error {
	if name != "loss_rate" {
		return kerrors.WithIdent(kerrors.InvalidParams, name, "unknown loss parameter")
	}
	if value < 0 {
		return kerrors.WithIdent(kerrors.InvalidParams, name, "loss_rate must be non-negative, got %v", value)
	}
	n.LossRate = value
	return nil
}

// Clone returns an independent copy.
func (n *Loss) Clone() Node {
	clone := *n
	return &clone
}
