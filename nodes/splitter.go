// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/kerrors"
)

// Splitter divides its accumulated inflow between two downstream outlets
// by a fixed fraction: Fraction goes to outlet 0 (ds_1), the remainder to
// outlet 1 (ds_2).
type Splitter struct {
	Base
	Fraction float64
	dsflowA  float64
	dsflowB  float64
	OutFlowA int
	OutFlowB int
}

func init() { Register("splitter", NewSplitter) }

// NewSplitter returns an uninitialised Splitter node with an even 50/50
// default split.
func NewSplitter(name string) Node {
	return &Splitter{Base: Base{NodeName: name}, Fraction: 0.5}
}

// Init registers this node's two output series.
func (n *Splitter) Init(c *cache.Cache) error {
	n.resetBase()
	n.dsflowA, n.dsflowB = 0, 0
	n.OutFlowA = c.GetOrAddNewSeries(makeResultName(n.NodeName, "ds_1"), false)
	n.OutFlowB = c.GetOrAddNewSeries(makeResultName(n.NodeName, "ds_2"), false)
	return nil
}

// RunFlowPhase splits the accumulated inflow by Fraction.
func (n *Splitter) RunFlowPhase(c *cache.Cache) error {
	in := n.usflow
	n.dsflowA = in * n.Fraction
	n.dsflowB = in * (1 - n.Fraction)
	c.AddValueAtIndex(n.OutFlowA, n.dsflowA)
	c.AddValueAtIndex(n.OutFlowB, n.dsflowB)
	n.usflow = 0
	return nil
}

// RemoveDsflow returns and clears outlet 0 (ds_1) or outlet 1 (ds_2).
func (n *Splitter) RemoveDsflow(outlet int) float64 {
	switch outlet {
	case 0:
		v := n.dsflowA
		n.dsflowA = 0
		return v
	case 1:
		v := n.dsflowB
		n.dsflowB = 0
		return v
	default:
		return 0
	}
}

// ListParams returns "fraction".
func (n *Splitter) ListParams() []ParamInfo {
	return []ParamInfo{{Name: "fraction", Min: 0, Max: 1}}
}

// GetParam returns the split fraction.
func (n *Splitter) GetParam(name string) (float64, error) {
	if name != "fraction" {
		return 0, kerrors.WithIdent(kerrors.InvalidParams, name, "unknown splitter parameter")
	}
	return n.Fraction, nil
}

// SetParam sets the split fraction, which must lie in [0,1].
func (n *Splitter) SetParam(name string, value float64) error {
	if name != "fraction" {
		return kerrors.WithIdent(kerrors.InvalidParams, name, "unknown splitter parameter")
	}
	if value < 0 || value > 1 {
		return kerrors.WithIdent(kerrors.InvalidParams, name, "fraction must lie in [0,1], got %v", value)
	}
	n.Fraction = value
	return nil
}

// Clone returns an independent copy.
func (n *Splitter) Clone() Node {
	clone := *n
	return &clone
}
