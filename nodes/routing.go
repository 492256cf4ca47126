// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import (
	"math"

	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/kerrors"
	"github.com/cpmech/kalix/mathfn"
)

// Routing is a channel routing node: a pure translation lag (a circular
// buffer of Lag+1 steps) followed by a piecewise-linear Muskingum
// attenuation component split into PWLDivs equal sub-reaches. Each
// sub-reach's storage/flow relationship is reconstructed from an
// (index flow, travel time) breakpoint table of up to 32 points, with an
// inflow bias X controlling how much of the reference flow comes from
// inflow versus outflow (original_source/src/nodes/routing_node.rs). X=1
// reads the reference flow straight from inflow; X<1 requires solving a
// quadratic each sub-reach via mathfn.QuadraticPlus (spec §4.3).
type Routing struct {
	Base

	Lag      int
	X        float64   // inflow bias, in [0,1]
	PWLDivs  int       // number of equal sub-reaches
	PWLFlows []float64 // index flows, up to 32 breakpoints
	PWLTimes []float64 // travel times (days) at each breakpoint, divided by PWLDivs per sub-reach

	lagBuf []float64
	lagIdx int

	segQ1, segQ2 []float64
	segA, segB, segC []float64
	pwlStorage   []float64

	dsflow float64

	OutDsflow int
	OutUsflow int
	OutStorage int
}

func init() { Register("routing", NewRouting) }

// NewRouting returns an uninitialised Routing node with no lag, a single
// sub-reach and a full inflow-bias (pure translation until a routing table
// is set via SetTable).
func NewRouting(name string) Node {
	return &Routing{
		Base:    Base{NodeName: name},
		Lag:     0,
		X:       1,
		PWLDivs: 1,
	}
}

// SetTable configures the (index flow, travel time) breakpoint table; both
// slices must be the same length (at least 2) and index flows strictly
// increasing.
func (n *Routing) SetTable(indexFlows, travelTimes []float64) error {
	if len(indexFlows) != len(travelTimes) || len(indexFlows) < 2 {
		return kerrors.New(kerrors.ConfigError, "routing node %q: index flow and travel time tables must have matching length >= 2", n.NodeName)
	}
	if len(indexFlows) > 32 {
		return kerrors.New(kerrors.ConfigError, "routing node %q: routing table supports at most 32 breakpoints, got %d", n.NodeName, len(indexFlows))
	}
	for i := 1; i < len(indexFlows); i++ {
		if indexFlows[i] <= indexFlows[i-1] {
			return kerrors.New(kerrors.ConfigError, "routing node %q: index flow breakpoints must be strictly increasing", n.NodeName)
		}
	}
	n.PWLFlows = append([]float64(nil), indexFlows...)
	n.PWLTimes = append([]float64(nil), travelTimes...)
	return nil
}

// Init allocates the lag buffer and precomputes the PWL segment
// coefficients, then registers this node's output series.
func (n *Routing) Init(c *cache.Cache) error {
	n.resetBase()
	if len(n.PWLFlows) < 2 {
		return kerrors.WithIdent(kerrors.ConfigError, n.NodeName, "routing node has no routing table; call SetTable first")
	}
	if n.PWLDivs < 1 {
		n.PWLDivs = 1
	}
	if n.Lag < 0 {
		n.Lag = 0
	}

	n.lagBuf = make([]float64, n.Lag+1)
	n.lagIdx = 0

	nsegs := len(n.PWLFlows) - 1
	n.segQ1 = make([]float64, nsegs)
	n.segQ2 = make([]float64, nsegs)
	n.segA = make([]float64, nsegs)
	n.segB = make([]float64, nsegs)
	n.segC = make([]float64, nsegs)

	d := float64(n.PWLDivs)
	v := 0.0
	for i := 0; i < nsegs; i++ {
		q1, q2 := n.PWLFlows[i], n.PWLFlows[i+1]
		t1, t2 := n.PWLTimes[i]/d, n.PWLTimes[i+1]/d
		a := 0.5 * (t2 - t1) / (q2 - q1)
		b := t1 - q1*(t2-t1)/(q2-q1)
		cc := v - a*q1*q1 - b*q1
		v2 := a*q2*q2 + b*q2 + cc
		n.segQ1[i], n.segQ2[i] = q1, q2
		n.segA[i], n.segB[i], n.segC[i] = a, b, cc
		v = v2
	}
	n.pwlStorage = make([]float64, n.PWLDivs)
	n.dsflow = 0

	n.OutDsflow = c.GetOrAddNewSeries(makeResultName(n.NodeName, "dsflow"), false)
	n.OutUsflow = c.GetOrAddNewSeries(makeResultName(n.NodeName, "usflow"), false)
	n.OutStorage = c.GetOrAddNewSeries(makeResultName(n.NodeName, "storage"), false)
	return nil
}

// RunFlowPhase advances the lag buffer by one slot, then routes the lagged
// inflow through each PWL sub-reach in turn.
func (n *Routing) RunFlowPhase(c *cache.Cache) error {
	n.lagBuf[n.lagIdx] = n.usflow
	oldest := (n.lagIdx + 1) % len(n.lagBuf)
	lagged := n.lagBuf[oldest]
	n.lagBuf[oldest] = 0
	n.lagIdx = oldest

	qout := lagged
	for i := 0; i < n.PWLDivs; i++ {
		qin := qout
		vi := n.pwlStorage[i]
		vf := vi + qin // passthrough default if no segment matches

		for j := range n.segA {
			if n.X > 0.999999 {
				qr := qin
				if qr >= n.segQ1[j] && qr <= n.segQ2[j] {
					vf = n.segA[j]*qr*qr + n.segB[j]*qr + n.segC[j]
					qout = vi + qin - vf
					break
				}
			} else {
				a := n.segA[j]
				b := n.segB[j] + 1/(1-n.X)
				cc := n.segC[j] - vi - qin/(1-n.X)
				qr := mathfn.QuadraticPlus(a, b, cc)
				if !math.IsNaN(qr) && qr >= n.segQ1[j] && qr <= n.segQ2[j] {
					qout = (qr - qin*n.X) / (1 - n.X)
					vf = vi + qin - qout
					break
				}
			}
		}

		if qout < 0 {
			qout = 0
			vf = vi + qin
		}
		n.pwlStorage[i] = vf
	}

	n.dsflow = qout
	c.AddValueAtIndex(n.OutDsflow, n.dsflow)
	c.AddValueAtIndex(n.OutUsflow, n.usflow)

	storage := 0.0
	for _, v := range n.lagBuf {
		storage += v
	}
	for _, v := range n.pwlStorage {
		storage += v
	}
	c.AddValueAtIndex(n.OutStorage, storage)

	n.mbal += n.dsflow - n.usflow
	n.usflow = 0
	return nil
}

// RemoveDsflow returns and clears the accumulated downstream flow at
// outlet 0; Routing has no other outlets.
func (n *Routing) RemoveDsflow(outlet int) float64 {
	if outlet != 0 {
		return 0
	}
	v := n.dsflow
	n.dsflow = 0
	return v
}

// ListParams returns "lag", "x" and "pwl_divs".
func (n *Routing) ListParams() []ParamInfo {
	return []ParamInfo{
		{Name: "lag", Min: 0, Max: 31},
		{Name: "x", Min: 0, Max: 1},
		{Name: "pwl_divs", Min: 1, Max: 32},
	}
}

// GetParam returns the current value of a parameter by name.
func (n *Routing) GetParam(name string) (float64, error) {
	switch name {
	case "lag":
		return float64(n.Lag), nil
	case "x":
		return n.X, nil
	case "pwl_divs":
		return float64(n.PWLDivs), nil
	default:
		return 0, kerrors.WithIdent(kerrors.InvalidParams, name, "unknown routing parameter")
	}
}

// SetParam assigns a parameter by name.
func (n *Routing) SetParam(name string, value float64) error {
	switch name {
	case "lag":
		if value < 0 {
			return kerrors.WithIdent(kerrors.InvalidParams, name, "lag must be non-negative")
		}
		n.Lag = int(value)
	case "x":
		if value < 0 || value > 1 {
			return kerrors.WithIdent(kerrors.InvalidParams, name, "x must lie in [0,1], got %v", value)
		}
		n.X = value
	case "pwl_divs":
		if value < 1 {
			return kerrors.WithIdent(kerrors.InvalidParams, name, "pwl_divs must be at least 1")
		}
		n.PWLDivs = int(value)
	default:
		return kerrors.WithIdent(kerrors.InvalidParams, name, "unknown routing parameter")
	}
	return nil
}

// Clone returns an independent copy, including the lag and PWL storage
// state.
func (n *Routing) Clone() Node {
	clone := *n
	clone.PWLFlows = append([]float64(nil), n.PWLFlows...)
	clone.PWLTimes = append([]float64(nil), n.PWLTimes...)
	clone.lagBuf = append([]float64(nil), n.lagBuf...)
	clone.segQ1 = append([]float64(nil), n.segQ1...)
	clone.segQ2 = append([]float64(nil), n.segQ2...)
	clone.segA = append([]float64(nil), n.segA...)
	clone.segB = append([]float64(nil), n.segB...)
	clone.segC = append([]float64(nil), n.segC...)
	clone.pwlStorage = append([]float64(nil), n.pwlStorage...)
	return &clone
}
