// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package paramap

import (
	"math"
	"testing"
)

type fakeSetter struct {
	values map[string]float64
}

func newFakeSetter() *fakeSetter { return &fakeSetter{values: make(map[string]float64)} }

func (f *fakeSetter) SetParam(address string, value float64) error {
	f.values[address] = value
	return nil
}

func TestLinRangeTransformRoundTrip(t *testing.T) {
	tr := Transform{Kind: LinRange, Min: 10, Max: 20}
	v := tr.Apply(0.5)
	if math.Abs(v-15) > 1e-9 {
		t.Fatalf("expected 15, got %v", v)
	}
	u := tr.Invert(v)
	if math.Abs(u-0.5) > 1e-9 {
		t.Fatalf("expected round trip to 0.5, got %v", u)
	}
}

func TestLogRangeTransformRoundTrip(t *testing.T) {
	tr := Transform{Kind: LogRange, Min: 1, Max: 100}
	v := tr.Apply(0.5)
	if math.Abs(v-10) > 1e-6 {
		t.Fatalf("expected 10, got %v", v)
	}
	u := tr.Invert(v)
	if math.Abs(u-0.5) > 1e-9 {
		t.Fatalf("expected round trip to 0.5, got %v", u)
	}
}

func TestTiedGenesShareOneDimension(t *testing.T) {
	type entry = struct {
		GeneName  string
		Target    string
		Transform Transform
	}
	cfg := NewConfig([]entry{
		{GeneName: "k", Target: "node.a.k", Transform: Transform{Kind: LinRange, Min: 0, Max: 1}},
		{GeneName: "k", Target: "node.b.k", Transform: Transform{Kind: LinRange, Min: 0, Max: 10}},
		{GeneName: "x", Target: "node.a.x", Transform: Transform{Kind: LinRange, Min: 0, Max: 100}},
	})
	if cfg.NGenes() != 2 {
		t.Fatalf("expected 2 distinct genes, got %d", cfg.NGenes())
	}
	s := newFakeSetter()
	if err := cfg.Apply([]float64{0.5, 1.0}, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(s.values["node.a.k"]-0.5) > 1e-9 {
		t.Fatalf("expected node.a.k=0.5, got %v", s.values["node.a.k"])
	}
	if math.Abs(s.values["node.b.k"]-5.0) > 1e-9 {
		t.Fatalf("expected node.b.k=5.0 from the same tied gene scaled differently, got %v", s.values["node.b.k"])
	}
	if math.Abs(s.values["node.a.x"]-100.0) > 1e-9 {
		t.Fatalf("expected node.a.x=100.0, got %v", s.values["node.a.x"])
	}
}

func TestApplyRejectsWrongGeneCount(t *testing.T) {
	type entry = struct {
		GeneName  string
		Target    string
		Transform Transform
	}
	cfg := NewConfig([]entry{{GeneName: "k", Target: "node.a.k", Transform: Transform{Kind: LinRange, Min: 0, Max: 1}}})
	if err := cfg.Apply([]float64{0.1, 0.2}, newFakeSetter()); err == nil {
		t.Fatal("expected an error for mismatched gene count")
	}
}

func TestApplyRejectsOutOfRangeGene(t *testing.T) {
	type entry = struct {
		GeneName  string
		Target    string
		Transform Transform
	}
	cfg := NewConfig([]entry{{GeneName: "k", Target: "node.a.k", Transform: Transform{Kind: LinRange, Min: 0, Max: 1}}})
	if err := cfg.Apply([]float64{1.5}, newFakeSetter()); err == nil {
		t.Fatal("expected an error for a gene outside [0,1]")
	}
}
