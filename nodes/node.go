// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package nodes implements the node kinds of the simulation graph (spec
// §4.3): each kind is a small struct satisfying the Node interface, the Go
// equivalent of the tagged NodeEnum dispatch the model graph executes in
// topological order. This mirrors how gofem's ele.Element interface lets
// fem.Domain iterate over heterogeneous element kinds uniformly.
package nodes

import "github.com/cpmech/kalix/cache"

// ParamInfo describes one calibratable scalar parameter: its target
// address name and the bounds a caller (an optimiser's Parameter Mapping,
// or a user-facing bounds check) should respect when setting it (spec
// §4.6).
type ParamInfo struct {
	Name     string
	Min, Max float64
}

// Node is one vertex of the simulation graph. Init runs once before the
// first timestep (after Dynamic Inputs are bound and constants resolved).
// Each step, the model runtime calls RunOrderPhase on every node (in
// execution order) before any flow is propagated, then RunFlowPhase (also
// in execution order), propagating flow along each outgoing Link between
// the two phases of the nodes it connects: after a node's flow phase, the
// runtime calls RemoveDsflow(link.FromOutlet) and, if positive, passes the
// result to the downstream node's AddUsflow(v, link.ToInlet) (spec §4.5).
// A node never reaches "upstream" through a Dynamic Input to read another
// node's flow; AddUsflow/RemoveDsflow is the only connectivity mechanism,
// so any node can accumulate flow from more than one incoming link at a
// single inlet.
type Node interface {
	// Name returns the node's unique name within the model.
	Name() string

	// Init prepares any internal state ahead of the first timestep,
	// including resetting the mass-balance accumulator to zero.
	Init(c *cache.Cache) error

	// RunOrderPhase runs before any node's flow phase this step; only
	// storage-type nodes give it a non-trivial implementation (the
	// upstream-ordering phase of spec §4.4), every other kind inherits
	// Base's no-op.
	RunOrderPhase(c *cache.Cache) error

	// RunFlowPhase executes one simulation step's flow computation,
	// consuming whatever AddUsflow accumulated since the last step and
	// populating the outlets RemoveDsflow will drain.
	RunFlowPhase(c *cache.Cache) error

	// AddUsflow accumulates v into inlet (0 for every node kind except
	// Storage, which has a single inlet too; inlet exists for forward
	// compatibility with multi-inlet kinds). Multiple incoming links may
	// each call AddUsflow once per step; the node must sum them.
	AddUsflow(v float64, inlet int)

	// RemoveDsflow returns and clears the accumulated flow at outlet
	// (0 for the primary/only outlet; Splitter and Storage expose more).
	RemoveDsflow(outlet int) float64

	// ListParams returns the calibratable parameters this node exposes to
	// Parameter Mapping and scripted configuration (spec §4.6 target
	// addressing, "node.<name>.<param>"), each with its physical bounds.
	ListParams() []ParamInfo

	// GetParam returns the current value of a parameter by name.
	GetParam(name string) (float64, error)

	// SetParam assigns a parameter by name.
	SetParam(name string, value float64) error

	// GetMassBalance returns the running sum of downstream flow minus
	// upstream flow accumulated since Init, in megalitres (spec §3). A
	// node with no imbalance (passes through exactly what it receives)
	// stays at zero, and so does User, whose extraction leaves through its
	// second outlet; Storage is where it tracks real accrual/release.
	GetMassBalance() float64

	// Clone returns an independent copy of this node, including its
	// internal state (store levels, unit hydrograph accumulators, lag
	// buffers), for a worker-owned Model clone (spec §5 worker-pool
	// concurrency model: one clone per worker, not per evaluation).
	Clone() Node
}

// Base holds the fields and default behaviour common to every node kind:
// its name, the generic single-inlet flow accumulator, and the
// mass-balance accumulator. Embedding Base spares each kind from
// reimplementing Name, RunOrderPhase, AddUsflow and GetMassBalance.
type Base struct {
	NodeName string

	usflow float64
	mbal   float64
}

// Name returns the node's name.
func (b *Base) Name() string { return b.NodeName }

// RunOrderPhase is a no-op by default; only Storage overrides it.
func (b *Base) RunOrderPhase(c *cache.Cache) error { return nil }

// AddUsflow accumulates v at the node's single inlet. inlet is ignored by
// every node that only has one.
func (b *Base) AddUsflow(v float64, inlet int) { b.usflow += v }

// GetMassBalance returns the accumulated dsflow-usflow sum since Init.
func (b *Base) GetMassBalance() float64 { return b.mbal }

// resetBase zeroes the flow and mass-balance accumulators; call from every
// kind's Init.
func (b *Base) resetBase() {
	b.usflow = 0
	b.mbal = 0
}

// makeResultName builds the recorder series name spec §4.3 mandates for
// every node output: "node.<node_name>.<attribute>".
func makeResultName(nodeName, attribute string) string {
	return "node." + nodeName + "." + attribute
}
