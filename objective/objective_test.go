// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package objective

import (
	"math"
	"testing"
)

func TestNSEPerfectMatchIsZero(t *testing.T) {
	obs := []float64{1, 2, 3, 4, 5}
	if got := NSE(obs, obs); math.Abs(got) > 1e-12 {
		t.Fatalf("expected 0 for a perfect match, got %v", got)
	}
}

func TestNSEMeanPredictorIsOne(t *testing.T) {
	obs := []float64{1, 2, 3, 4, 5}
	mean := meanOf(obs)
	sim := make([]float64, len(obs))
	for i := range sim {
		sim[i] = mean
	}
	if got := NSE(sim, obs); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected 1 for a mean predictor, got %v", got)
	}
}

func TestRMSEAndMAEPerfectMatchAreZero(t *testing.T) {
	obs := []float64{1, 2, 3}
	if got := RMSE(obs, obs); got != 0 {
		t.Fatalf("expected 0 RMSE, got %v", got)
	}
	if got := MAE(obs, obs); got != 0 {
		t.Fatalf("expected 0 MAE, got %v", got)
	}
}

func TestKGEPerfectMatchIsZero(t *testing.T) {
	obs := []float64{1, 2, 3, 4, 5, 2, 1, 3}
	if got := KGE(obs, obs); math.Abs(got) > 1e-9 {
		t.Fatalf("expected 0 for a perfect match, got %v", got)
	}
}

func TestPBIASDetectsOverestimate(t *testing.T) {
	obs := []float64{10, 10, 10}
	sim := []float64{11, 11, 11}
	got := PBIAS(sim, obs)
	if math.Abs(got-10) > 1e-9 {
		t.Fatalf("expected 10%% bias, got %v", got)
	}
}

func TestSDEBPerfectMatchIsZero(t *testing.T) {
	obs := []float64{3, 1, 2}
	sim := []float64{2, 3, 1}
	if got := SDEB(sim, obs); got != 0 {
		t.Fatalf("expected 0 for matching distributions regardless of order, got %v", got)
	}
}

func TestByNameResolvesKnownObjectives(t *testing.T) {
	names := []string{"nse", "log_nse", "rmse", "mae", "kge", "pbias", "sdeb"}
	for _, n := range names {
		if _, ok := ByName(n); !ok {
			t.Errorf("expected %q to resolve", n)
		}
	}
	if _, ok := ByName("nonexistent"); ok {
		t.Error("expected unknown objective name to fail")
	}
}
