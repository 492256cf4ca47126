// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package table

import (
	"math"
	"testing"
)

func buildTestTable(t *testing.T) *Table {
	tb := New()
	rows := []struct {
		level, volume, area, spill float64
	}{
		{0, 0, 10, 0},
		{1, 10, 12, 0},
		{2, 25, 15, 0},
		{3, 45, 18, 100},
	}
	for _, r := range rows {
		if err := tb.AddRow(r.level, map[string]float64{"volume": r.volume, "area": r.area, "spill": r.spill}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := tb.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tb
}

func TestInterpMidSegment(t *testing.T) {
	tb := buildTestTable(t)
	v, err := tb.Interp("volume", 1.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(v-17.5) > 1e-9 {
		t.Fatalf("expected 17.5, got %v", v)
	}
}

func TestInterpExtrapolatesBelowRange(t *testing.T) {
	tb := buildTestTable(t)
	v, err := tb.Interp("volume", -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v >= 0 {
		t.Fatalf("expected linear extrapolation below zero, got %v", v)
	}
}

func TestInvertMonotoneRoundTrip(t *testing.T) {
	tb := buildTestTable(t)
	for _, level := range []float64{0.2, 1.3, 2.9} {
		vol, err := tb.Interp("volume", level)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		back, err := tb.InvertMonotone("volume", vol)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(back-level) > 1e-9 {
			t.Fatalf("expected round-trip to recover level %v, got %v", level, back)
		}
	}
}

func TestInvertMonotoneClampsOutOfRange(t *testing.T) {
	tb := buildTestTable(t)
	lo, err := tb.InvertMonotone("volume", -100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo != tb.MinLevel() {
		t.Fatalf("expected clamp to min level, got %v", lo)
	}
	hi, err := tb.InvertMonotone("volume", 1e6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hi != tb.MaxLevel() {
		t.Fatalf("expected clamp to max level, got %v", hi)
	}
}

func TestValidateRejectsTooFewRows(t *testing.T) {
	tb := New()
	tb.AddRow(0, map[string]float64{"volume": 0})
	if err := tb.Validate(); err == nil {
		t.Fatal("expected error for single-row table")
	}
}

func TestAddRowRejectsNonIncreasingLevel(t *testing.T) {
	tb := New()
	if err := tb.AddRow(1, map[string]float64{"volume": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tb.AddRow(0.5, map[string]float64{"volume": 2}); err == nil {
		t.Fatal("expected error for non-increasing level")
	}
}
