// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rainfallrunoff

import "testing"

func TestGR4JNonNegativeRunoff(t *testing.T) {
	g := NewGR4J(GR4JParams{X1: 350, X2: 0, X3: 40, X4: 0.5})
	for i := 0; i < 200; i++ {
		p, e := 0.0, 3.0
		if i%10 == 0 {
			p = 20.0
		}
		q := g.RunStep(p, e)
		if q < 0 {
			t.Fatalf("step %d: expected non-negative runoff, got %v", i, q)
		}
	}
}

func TestGR4JDryCatchmentProducesNoRunoff(t *testing.T) {
	g := NewGR4J(GR4JParams{X1: 350, X2: 0, X3: 40, X4: 0.5})
	g.ProductionStore = 0
	g.RoutingStore = 0
	var total float64
	for i := 0; i < 30; i++ {
		total += g.RunStep(0, 5.0)
	}
	if total > 1e-6 {
		t.Fatalf("expected negligible runoff from a dry catchment with no rainfall, got %v", total)
	}
}

func TestGR4JRespondsToRainPulse(t *testing.T) {
	g := NewGR4J(GR4JParams{X1: 350, X2: 0, X3: 40, X4: 1.0})
	for i := 0; i < 5; i++ {
		g.RunStep(0, 2.0)
	}
	var before float64
	for i := 0; i < 10; i++ {
		before += g.RunStep(0, 2.0)
	}
	g2 := NewGR4J(GR4JParams{X1: 350, X2: 0, X3: 40, X4: 1.0})
	for i := 0; i < 5; i++ {
		g2.RunStep(0, 2.0)
	}
	g2.RunStep(80, 0)
	var after float64
	for i := 0; i < 10; i++ {
		after += g2.RunStep(0, 2.0)
	}
	if after <= before {
		t.Fatalf("expected a large rain pulse to increase subsequent runoff: before=%v after=%v", before, after)
	}
}

func TestGR4JSetParamsRebuildsUnitHydrographOnX4Change(t *testing.T) {
	g := NewGR4J(GR4JParams{X1: 350, X2: 0, X3: 40, X4: 0.5})
	n1 := len(g.uh1)
	g.SetParams(GR4JParams{X1: 350, X2: 0, X3: 40, X4: 5})
	if len(g.uh1) == n1 {
		t.Fatalf("expected unit hydrograph length to change after X4 changed")
	}
}

// TestGR4JReferenceScenarioIsDeterministic drives a GR4J model configured
// with the calibrated Rex Creek parameters against the same synthetic
// rainfall/PET pulses used by the original's own test_gr4j() smoke test
// (the Rex Creek driving/reference CSV fixtures themselves are not present
// in this repository), and checks that two independently constructed models
// given the same inputs produce bit-identical runoff sequences. This stands
// in for the original's exact reference-match assertion, which compared
// against externally-sourced fixture data unavailable here.
func TestGR4JReferenceScenarioIsDeterministic(t *testing.T) {
	params := GR4JParams{
		X1: 1999.99999999996,
		X2: 5.99999999999991,
		X3: 65.2245666006408,
		X4: 0.380800595584489,
	}
	const areaKM2 = 22.8
	const rainfallFactor = 1.72036997687526

	pp := []float64{20, 20, 20, 20, 0, 0, 5, 2, 0, 50, 0, 0, 0, 18, 0}
	ee := []float64{5, 5, 5, 5, 5, 4, 4, 4, 4, 4, 5, 5, 5, 5, 5}

	run := func() []float64 {
		g := NewGR4J(params)
		flows := make([]float64, len(pp))
		for i := range pp {
			q := g.RunStep(pp[i]*rainfallFactor, ee[i])
			flows[i] = q * areaKM2
		}
		return flows
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("step %d: expected deterministic runoff, got %v then %v", i, first[i], second[i])
		}
		if first[i] < 0 {
			t.Fatalf("step %d: expected non-negative runoff, got %v", i, first[i])
		}
	}
}

func TestSacramentoNonNegativeRunoff(t *testing.T) {
	s := NewSacramento(SacramentoParams{
		UZTWM: 50, UZFWM: 40, UZK: 0.3,
		LZTWM: 130, LZFSM: 25, LZFPM: 60, LZSK: 0.05, LZPK: 0.01,
		PFREE: 0.1,
	})
	for i := 0; i < 100; i++ {
		p, e := 0.0, 3.0
		if i%7 == 0 {
			p = 15.0
		}
		q := s.RunStep(p, e)
		if q < 0 {
			t.Fatalf("step %d: expected non-negative runoff, got %v", i, q)
		}
	}
}

func TestSacramentoStoresStayWithinCapacity(t *testing.T) {
	s := NewSacramento(SacramentoParams{
		UZTWM: 50, UZFWM: 40, UZK: 0.3,
		LZTWM: 130, LZFSM: 25, LZFPM: 60, LZSK: 0.05, LZPK: 0.01,
		PFREE: 0.1,
	})
	for i := 0; i < 50; i++ {
		s.RunStep(100, 0)
	}
	if s.UZTWC > s.Params.UZTWM+1e-9 {
		t.Fatalf("expected upper zone tension store to stay within capacity, got %v > %v", s.UZTWC, s.Params.UZTWM)
	}
	if s.UZFWC > s.Params.UZFWM+1e-9 {
		t.Fatalf("expected upper zone free store to stay within capacity, got %v > %v", s.UZFWC, s.Params.UZFWM)
	}
}
