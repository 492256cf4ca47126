// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"context"
	"math"
	"testing"

	"github.com/cpmech/kalix/dynaminput"
	"github.com/cpmech/kalix/nodes"
)

func TestTopoSortLinearChain(t *testing.T) {
	names := []string{"c", "b", "a"}
	edges := map[string][]string{"a": {"b"}, "b": {"c"}}
	order, err := topoSort(names, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	if !(pos["a"] < pos["b"] && pos["b"] < pos["c"]) {
		t.Fatalf("expected order a,b,c, got %v", order)
	}
}

func TestTopoSortDetectsCycle(t *testing.T) {
	names := []string{"a", "b"}
	edges := map[string][]string{"a": {"b"}, "b": {"a"}}
	if _, err := topoSort(names, edges); err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestModelInflowGaugeBlackholeMassBalance(t *testing.T) {
	m := New()
	m.Cache.SetStartAndStepSize(0, 86400)
	rainIdx := m.Cache.GetOrAddNewSeries("rain", true)
	for i := 0; i < 5; i++ {
		m.Cache.SetCurrentStep(i)
		m.Cache.AddValueAtIndex(rainIdx, float64(i+1)*2.0)
	}

	in := nodes.NewInflow("in1").(*nodes.Inflow)
	in.Flow = dynaminput.DirectRef(rainIdx)
	if err := m.AddNode(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gauge := nodes.NewGauge("g1").(*nodes.Gauge)
	if err := m.AddNode(gauge); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Link("in1", "g1", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink := nodes.NewBlackhole("sink").(*nodes.Blackhole)
	if err := m.AddNode(sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Link("g1", "sink", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := m.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var totalIn, totalGauge, totalConsumed float64
	for i := 0; i < 5; i++ {
		totalIn += m.Cache.Series(rainIdx).ValueAt(i)
		totalGauge += m.Cache.Series(gauge.OutFlow).ValueAt(i)
		totalConsumed += m.Cache.Series(sink.InConsum).ValueAt(i)
	}
	if math.Abs(totalIn-totalGauge) > 1e-9 {
		t.Fatalf("expected gauge to pass flow through unchanged: in=%v gauge=%v", totalIn, totalGauge)
	}
	if math.Abs(totalIn-totalConsumed) > 1e-9 {
		t.Fatalf("expected mass conservation end to end: in=%v consumed=%v", totalIn, totalConsumed)
	}
}

func TestModelRejectsDuplicateNodeName(t *testing.T) {
	m := New()
	if err := m.AddNode(nodes.NewInflow("dup")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AddNode(nodes.NewInflow("dup")); err == nil {
		t.Fatal("expected an error for duplicate node name")
	}
}

func TestParseTargetAddress(t *testing.T) {
	kind, node, param, err := parseTargetAddress("node.res1.seepage_coef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != targetNode || node != "res1" || param != "seepage_coef" {
		t.Fatalf("unexpected parse: %v %v %v", kind, node, param)
	}

	kind2, _, param2, err := parseTargetAddress("c.area")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind2 != targetConstant || param2 != "c.area" {
		t.Fatalf("unexpected parse: %v %v", kind2, param2)
	}
}

func TestModelSetAndGetParam(t *testing.T) {
	m := New()
	loss := nodes.NewLoss("l1")
	if err := m.AddNode(loss); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.SetParam("node.l1.loss_rate", 1.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := m.GetParam("node.l1.loss_rate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1.5 {
		t.Fatalf("expected 1.5, got %v", v)
	}
}
