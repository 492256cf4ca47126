// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"context"
	"testing"
)

type sumEval struct{}

func (sumEval) NGenes() int { return 3 }

func (sumEval) Evaluate(ctx context.Context, genes []float64) (float64, error) {
	var sum float64
	for _, g := range genes {
		sum += g
	}
	return sum, nil
}

func (sumEval) CloneForParallel() Evaluator { return sumEval{} }

func TestPoolEvaluateAllPreservesOrder(t *testing.T) {
	pool := NewPool(context.Background(), sumEval{}, 4)
	defer pool.Close()

	population := [][]float64{
		{1, 0, 0},
		{0, 2, 0},
		{0, 0, 3},
		{1, 1, 1},
	}
	scores, err := pool.EvaluateAll(population)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 2, 3, 3}
	for i, w := range want {
		if scores[i] != w {
			t.Fatalf("expected scores %v, got %v", want, scores)
		}
	}
}

func TestPoolCanEvaluateMultipleRounds(t *testing.T) {
	pool := NewPool(context.Background(), sumEval{}, 2)
	defer pool.Close()

	for round := 0; round < 3; round++ {
		scores, err := pool.EvaluateAll([][]float64{{1, 1, 1}, {2, 2, 2}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if scores[0] != 3 || scores[1] != 6 {
			t.Fatalf("round %d: unexpected scores %v", round, scores)
		}
	}
}
