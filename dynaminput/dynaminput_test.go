// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynaminput

import (
	"math"
	"testing"

	"github.com/cpmech/kalix/cache"
)

func TestConstantValue(t *testing.T) {
	c := cache.New()
	in := Const(3.5)
	if got := in.GetValue(c); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
}

func TestDirectReference(t *testing.T) {
	c := cache.New()
	c.SetStartAndStepSize(0, 86400)
	idx := c.GetOrAddNewSeries("rain", false)
	c.SetCurrentStep(0)
	c.AddValueAtIndex(idx, 12.0)
	in := DirectRef(idx)
	if got := in.GetValue(c); got != 12.0 {
		t.Fatalf("expected 12.0, got %v", got)
	}
}

func TestDirectConstantReference(t *testing.T) {
	c := cache.New()
	c.Constants.Set("c.area", 4.2)
	in := DirectConstRef("c.area")
	if got := in.GetValue(c); got != 4.2 {
		t.Fatalf("expected 4.2, got %v", got)
	}
}

func TestDirectConstantReferenceUnassignedIsNaN(t *testing.T) {
	c := cache.New()
	in := DirectConstRef("c.missing")
	if got := in.GetValue(c); !math.IsNaN(got) {
		t.Fatalf("expected NaN for unassigned constant, got %v", got)
	}
}

func TestLinearCombinationUniformWeights(t *testing.T) {
	c := cache.New()
	c.SetStartAndStepSize(0, 86400)
	i1 := c.GetOrAddNewSeries("g1", false)
	i2 := c.GetOrAddNewSeries("g2", false)
	i3 := c.GetOrAddNewSeries("g3", false)
	c.SetCurrentStep(0)
	c.AddValueAtIndex(i1, 1.0)
	c.AddValueAtIndex(i2, 1.0)
	c.AddValueAtIndex(i3, 1.0)

	in := NewLinearCombination([]int{i1, i2, i3})
	for i, w := range in.Coefficients {
		if math.Abs(w-1.0/3.0) > 1e-9 {
			t.Fatalf("expected uniform weight 1/3 at %d, got %v", i, w)
		}
	}
	if got := in.GetValue(c); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected combination of uniform unit series to equal bias 1.0, got %v", got)
	}
}

func TestLinearCombinationSkewedWeights(t *testing.T) {
	i1, i2 := 0, 1
	in := Input{
		Kind:          KindLinearCombination,
		SeriesIndices: []int{i1, i2},
		Coefficients:  []float64{0.5, 0.5},
		UParams:       []float64{0.01},
		Bias:          1.0,
	}
	if err := SetRainfallParam(&in, "rf_d0", 0.01); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Coefficients[0] <= in.Coefficients[1] {
		t.Fatalf("expected station 0 (reference logit 0) to dominate over station 1 (logit(0.01) << 0), got %v", in.Coefficients)
	}
	sum := in.Coefficients[0] + in.Coefficients[1]
	if math.Abs(sum-in.Bias) > 1e-9 {
		t.Fatalf("expected weights to sum to bias %v, got sum %v", in.Bias, sum)
	}

	if err := SetRainfallParam(&in, "rf_d0", 0.99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Coefficients[1] <= in.Coefficients[0] {
		t.Fatalf("expected station 1 to dominate once u=0.99, got %v", in.Coefficients)
	}
}

func TestSetRainfallParamBias(t *testing.T) {
	in := NewLinearCombination([]int{0, 1})
	if err := SetRainfallParam(&in, "rf_bias", 2.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := in.Coefficients[0] + in.Coefficients[1]
	if math.Abs(sum-2.0) > 1e-9 {
		t.Fatalf("expected weights to rescale to new bias 2.0, got sum %v", sum)
	}
}

func TestSetRainfallParamRejectsOutOfRange(t *testing.T) {
	in := NewLinearCombination([]int{0, 1})
	if err := SetRainfallParam(&in, "rf_d0", 1.5); err == nil {
		t.Fatal("expected error for out-of-range distribution parameter")
	}
}

func TestIsRainfallParam(t *testing.T) {
	cases := map[string]bool{
		"rf_bias": true,
		"rf_d0":   true,
		"rf_d12":  true,
		"rf_x":    false,
		"bias":    false,
	}
	for name, want := range cases {
		if got := IsRainfallParam(name); got != want {
			t.Errorf("IsRainfallParam(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestListRainfallParams(t *testing.T) {
	in := NewLinearCombination([]int{0, 1, 2})
	names := ListRainfallParams(in)
	want := []string{"rf_bias", "rf_d0", "rf_d1"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestFunctionVariant(t *testing.T) {
	c := cache.New()
	in := Func(func(ctx VarContext) float64 { return 7.0 })
	if got := in.GetValue(c); got != 7.0 {
		t.Fatalf("expected 7.0, got %v", got)
	}
}

func TestNoneVariant(t *testing.T) {
	c := cache.New()
	in := None()
	if got := in.GetValue(c); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
