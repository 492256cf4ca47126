// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sce

import (
	"context"
	"math"
	"testing"

	"github.com/cpmech/kalix/opt"
)

// sphereEval scores a gene vector in [0,1]^n against the sphere function
// centred at 0.5 in every dimension, a standard optimiser smoke-test
// surface with a single known minimum.
type sphereEval struct{ n int }

func (s sphereEval) NGenes() int { return s.n }

func (s sphereEval) Evaluate(ctx context.Context, genes []float64) (float64, error) {
	var sum float64
	for _, g := range genes {
		d := g - 0.5
		sum += d * d
	}
	return sum, nil
}

func (s sphereEval) CloneForParallel() opt.Evaluator { return s }

func TestSCEConvergesOnSphereFunction(t *testing.T) {
	eval := sphereEval{n: 3}
	result, err := Run(context.Background(), eval, Options{
		NDim:        3,
		NComplexes:  4,
		NThreads:    2,
		Seed:        42,
		MaxShuffles: 30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BestScore > 0.05 {
		t.Fatalf("expected convergence near the sphere minimum, got score %v genes %v", result.BestScore, result.BestGenes)
	}
	for _, g := range result.BestGenes {
		if math.Abs(g-0.5) > 0.3 {
			t.Fatalf("expected genes near 0.5, got %v", result.BestGenes)
		}
	}
}

func TestSCEIsDeterministicForAFixedSeed(t *testing.T) {
	opts := Options{NDim: 2, NComplexes: 2, NThreads: 1, Seed: 7, MaxShuffles: 10}
	r1, err := Run(context.Background(), sphereEval{n: 2}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := Run(context.Background(), sphereEval{n: 2}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.BestScore != r2.BestScore {
		t.Fatalf("expected identical seed to reproduce the same result: %v vs %v", r1.BestScore, r2.BestScore)
	}
}
