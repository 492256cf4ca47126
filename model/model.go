// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/kerrors"
	"github.com/cpmech/kalix/nodes"
)

// Link is one directed edge of the node graph: flow leaving upstream's
// outlet FromOutlet is delivered to downstream's inlet ToInlet as soon as
// upstream has run its flow phase for the step, before the next node in
// execution order runs (spec §4.5). A link carries no buffer of its own.
type Link struct {
	From       string
	To         string
	FromOutlet int
	ToInlet    int
}

// Model is an assembled node-graph simulation: a set of nodes, the directed
// Links between them, and the shared Data Cache all of them read and write
// through.
type Model struct {
	Cache *cache.Cache

	nodeNames  []string
	nodeByName map[string]nodes.Node
	edges      map[string][]string // upstream -> downstream, for topological ordering
	links      []Link

	order []string
}

// New returns an empty Model backed by a fresh Data Cache.
func New() *Model {
	return &Model{
		Cache:      cache.New(),
		nodeByName: make(map[string]nodes.Node),
		edges:      make(map[string][]string),
	}
}

// AddNode registers a node in the graph. Names must be unique.
func (m *Model) AddNode(n nodes.Node) error {
	if _, exists := m.nodeByName[n.Name()]; exists {
		return kerrors.WithIdent(kerrors.ConfigError, n.Name(), "duplicate node name")
	}
	m.nodeByName[n.Name()] = n
	m.nodeNames = append(m.nodeNames, n.Name())
	m.order = nil
	return nil
}

// Link records a directed edge: after upstream's flow phase, the flow it
// accumulated at outlet fromOutlet is removed and added to downstream's
// inlet toInlet (spec §4.5). AddUsflow accumulates rather than overwrites,
// so more than one Link may feed the same node's inlet 0 (e.g. a
// Confluence, or any node with two upstream links into its single inlet).
func (m *Model) Link(upstream, downstream string, fromOutlet, toInlet int) error {
	if _, ok := m.nodeByName[upstream]; !ok {
		return kerrors.WithIdent(kerrors.ConfigError, upstream, "unknown upstream node in link")
	}
	if _, ok := m.nodeByName[downstream]; !ok {
		return kerrors.WithIdent(kerrors.ConfigError, downstream, "unknown downstream node in link")
	}
	m.edges[upstream] = append(m.edges[upstream], downstream)
	m.links = append(m.links, Link{From: upstream, To: downstream, FromOutlet: fromOutlet, ToInlet: toInlet})
	m.order = nil
	return nil
}

// Node returns the node registered under name, if any.
func (m *Model) Node(name string) (nodes.Node, bool) {
	n, ok := m.nodeByName[name]
	return n, ok
}

// Nodes returns every registered node, in registration order.
func (m *Model) Nodes() []nodes.Node {
	out := make([]nodes.Node, len(m.nodeNames))
	for i, name := range m.nodeNames {
		out[i] = m.nodeByName[name]
	}
	return out
}

// Links returns every registered link, in registration order.
func (m *Model) Links() []Link {
	return append([]Link(nil), m.links...)
}

// CloneStructure returns an independent Model with the same nodes (deep
// cloned via Node.Clone) and the same links, backed by newCache instead of
// m.Cache. Used to build one worker-owned Model per optimisation clone
// without recomputing the graph (spec §5 worker-pool concurrency model).
func (m *Model) CloneStructure(newCache *cache.Cache) *Model {
	clone := New()
	clone.Cache = newCache
	for _, name := range m.nodeNames {
		_ = clone.AddNode(m.nodeByName[name].Clone())
	}
	for _, link := range m.links {
		_ = clone.Link(link.From, link.To, link.FromOutlet, link.ToInlet)
	}
	return clone
}

// DetermineExecutionOrder computes (and caches) a valid topological order
// over the node graph via Kahn's algorithm, returning a ConfigError if the
// graph contains a cycle.
func (m *Model) DetermineExecutionOrder() ([]string, error) {
	if m.order != nil {
		return m.order, nil
	}
	order, err := topoSort(m.nodeNames, m.edges)
	if err != nil {
		return nil, err
	}
	m.order = order
	return order, nil
}

// InitializeNodes runs Init on every node, in execution order.
func (m *Model) InitializeNodes() error {
	order, err := m.DetermineExecutionOrder()
	if err != nil {
		return err
	}
	for _, name := range order {
		if err := m.nodeByName[name].Init(m.Cache); err != nil {
			return kerrors.WithIdent(kerrors.SimulationError, name, "node initialisation failed: %v", err)
		}
	}
	return nil
}

// propagate runs the link transfer out of one node: for each link leaving
// from, remove whatever that node accumulated at the link's outlet and add
// it to the downstream node's inlet, skipping non-positive transfers
// (spec §4.5).
func (m *Model) propagate(from string) {
	for _, link := range m.links {
		if link.From != from {
			continue
		}
		v := m.nodeByName[link.From].RemoveDsflow(link.FromOutlet)
		if v > 0 {
			m.nodeByName[link.To].AddUsflow(v, link.ToInlet)
		}
	}
}

// GetParam resolves a "node.<name>.<param>" or "c.<name>" target address
// (spec §4.6 Parameter Mapping) against this model.
func (m *Model) GetParam(address string) (float64, error) {
	kind, node, param, err := parseTargetAddress(address)
	if err != nil {
		return 0, err
	}
	switch kind {
	case targetConstant:
		return m.Cache.Constants.Get(param)
	case targetNode:
		n, ok := m.nodeByName[node]
		if !ok {
			return 0, kerrors.WithIdent(kerrors.ConfigError, node, "unknown node in target address")
		}
		return n.GetParam(param)
	default:
		return 0, kerrors.WithIdent(kerrors.ConfigError, address, "unrecognised target address")
	}
}

// SetParam resolves and assigns a target address (spec §4.6).
func (m *Model) SetParam(address string, value float64) error {
	kind, node, param, err := parseTargetAddress(address)
	if err != nil {
		return err
	}
	switch kind {
	case targetConstant:
		m.Cache.Constants.Set(param, value)
		return nil
	case targetNode:
		n, ok := m.nodeByName[node]
		if !ok {
			return kerrors.WithIdent(kerrors.ConfigError, node, "unknown node in target address")
		}
		return n.SetParam(param, value)
	default:
		return kerrors.WithIdent(kerrors.ConfigError, address, "unrecognised target address")
	}
}
