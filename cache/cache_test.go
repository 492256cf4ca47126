// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import (
	"math"
	"testing"
)

func TestGetOrAddNewSeriesCaseInsensitive(t *testing.T) {
	c := New()
	i1 := c.GetOrAddNewSeries("Node.Gauge1.dsflow", false)
	i2 := c.GetOrAddNewSeries("node.gauge1.DSFLOW", false)
	if i1 != i2 {
		t.Fatalf("expected case-insensitive lookup to reuse index, got %d and %d", i1, i2)
	}
	if c.NumSeries() != 1 {
		t.Fatalf("expected 1 series, got %d", c.NumSeries())
	}
}

func TestAddValueAtIndexPadsWithNaN(t *testing.T) {
	c := New()
	c.SetStartAndStepSize(0, 86400)
	idx := c.GetOrAddNewSeries("s1", false)
	c.SetCurrentStep(3)
	c.AddValueAtIndex(idx, 5.0)
	s := c.Series(idx)
	if s.Len() != 4 {
		t.Fatalf("expected length 4 after padding, got %d", s.Len())
	}
	for i := 0; i < 3; i++ {
		if !math.IsNaN(s.Values[i]) {
			t.Fatalf("expected padded value at %d to be NaN, got %v", i, s.Values[i])
		}
	}
	if s.Values[3] != 5.0 {
		t.Fatalf("expected 5.0 at index 3, got %v", s.Values[3])
	}
}

func TestGetValueWithOffsetOutOfRange(t *testing.T) {
	c := New()
	c.SetStartAndStepSize(0, 86400)
	idx := c.GetOrAddNewSeries("s1", false)
	c.SetCurrentStep(0)
	c.AddValueAtIndex(idx, 1.0)
	if v := c.GetValueWithOffset(idx, -1); !math.IsNaN(v) {
		t.Fatalf("expected NaN for out-of-range offset, got %v", v)
	}
	if v := c.GetValueWithOffsetOrDefault(idx, -1, 42.0); v != 42.0 {
		t.Fatalf("expected default 42.0, got %v", v)
	}
}

func TestConstantsUnassignedIsConfigError(t *testing.T) {
	cs := NewConstants()
	cs.Declare("c.a")
	if err := cs.AssertAllAssigned(); err == nil {
		t.Fatal("expected error for unassigned constant")
	}
	cs.Set("c.a", 1.5)
	if err := cs.AssertAllAssigned(); err != nil {
		t.Fatalf("expected no error once assigned: %v", err)
	}
	v, err := cs.Get("c.a")
	if err != nil || v != 1.5 {
		t.Fatalf("expected 1.5, got %v, %v", v, err)
	}
}

func TestDetectSimulationPeriod(t *testing.T) {
	c := New()
	c.SetStartAndStepSize(0, 86400)
	idx1 := c.GetOrAddNewSeries("in1", true)
	idx2 := c.GetOrAddNewSeries("in2", true)
	for i := 0; i < 10; i++ {
		c.SetCurrentStep(i)
		c.AddValueAtIndex(idx1, float64(i))
		if i == 6 {
			c.AddValueAtIndex(idx2, math.NaN())
		} else {
			c.AddValueAtIndex(idx2, float64(i)*2)
		}
	}
	p, err := c.DetectSimulationPeriod()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.NSteps != 6 {
		t.Fatalf("expected 6 steps (prefix up to the NaN at index 6), got %d", p.NSteps)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := New()
	c.SetStartAndStepSize(0, 86400)
	idx := c.GetOrAddNewSeries("s1", false)
	c.SetCurrentStep(0)
	c.AddValueAtIndex(idx, 1.0)

	clone := c.Clone()
	clone.SetCurrentStep(0)
	clone.AddValueAtIndex(idx, 99.0)

	if c.GetCurrentValue(idx) != 1.0 {
		t.Fatalf("expected original unaffected by clone mutation, got %v", c.GetCurrentValue(idx))
	}
}
