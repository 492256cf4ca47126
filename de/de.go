// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package de implements canonical rand/1/bin Differential Evolution (spec
// §4.10): population initialised uniformly in [0,1]^n, mutant vectors
// clipped back into [0,1] rather than reflected or wrapped (an explicit
// Open Question decision, see DESIGN.md), binomial crossover, and greedy
// (child replaces parent only if strictly better) replacement. Population
// evaluation runs through the same worker pool the SCE-UA optimiser uses.
package de

import (
	"context"
	"math/rand"

	"github.com/cpmech/kalix/opt"
)

// Options configures one DE run.
type Options struct {
	NDim         int
	PopSize      int
	NThreads     int
	Seed         int64
	MaxGenerations int
	F            float64 // differential weight, typically in [0.4, 1.0]
	CR           float64 // crossover probability, typically in [0.1, 1.0]
	OnGeneration func(gen int, best float64)
}

// Result is the outcome of a completed DE run.
type Result struct {
	BestGenes []float64
	BestScore float64
}

// Run executes Differential Evolution against evaluator.
func Run(ctx context.Context, evaluator opt.Evaluator, o Options) (Result, error) {
	if o.PopSize < 4 {
		o.PopSize = 4
	}
	if o.F == 0 {
		o.F = 0.8
	}
	if o.CR == 0 {
		o.CR = 0.9
	}

	rng := rand.New(rand.NewSource(o.Seed))
	population := make([][]float64, o.PopSize)
	for i := range population {
		population[i] = randomVector(rng, o.NDim)
	}

	pool := opt.NewPool(ctx, evaluator, o.NThreads)
	defer pool.Close()

	scores, err := pool.EvaluateAll(population)
	if err != nil {
		return Result{}, err
	}

	bestIdx := indexOfBest(scores)

	for gen := 0; gen < o.MaxGenerations; gen++ {
		select {
		case <-ctx.Done():
			return Result{BestGenes: population[bestIdx], BestScore: scores[bestIdx]}, ctx.Err()
		default:
		}

		trials := make([][]float64, o.PopSize)
		for i := range population {
			trials[i] = makeTrialVector(rng, population, i, o.F, o.CR)
		}

		trialScores, err := pool.EvaluateAll(trials)
		if err != nil {
			return Result{}, err
		}

		for i := range population {
			if trialScores[i] < scores[i] {
				population[i] = trials[i]
				scores[i] = trialScores[i]
			}
		}
		bestIdx = indexOfBest(scores)

		if o.OnGeneration != nil {
			o.OnGeneration(gen, scores[bestIdx])
		}
	}

	return Result{BestGenes: population[bestIdx], BestScore: scores[bestIdx]}, nil
}

func randomVector(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()
	}
	return out
}

func indexOfBest(scores []float64) int {
	best := 0
	for i, s := range scores {
		if s < scores[best] {
			best = i
		}
	}
	return best
}

// makeTrialVector builds one rand/1/bin trial vector for target index i:
// pick three distinct donors other than i, form the mutant
// a + F*(b - c), clip each component back into [0,1], then binomially
// cross it with the target vector, guaranteeing at least one mutant
// component via a forced crossover index.
func makeTrialVector(rng *rand.Rand, population [][]float64, i int, f, cr float64) []float64 {
	n := len(population)
	d := len(population[i])
	a, b, c := pickThreeDistinct(rng, n, i)

	mutant := make([]float64, d)
	for k := 0; k < d; k++ {
		v := population[a][k] + f*(population[b][k]-population[c][k])
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		mutant[k] = v
	}

	trial := make([]float64, d)
	copy(trial, population[i])
	forced := rng.Intn(d)
	for k := 0; k < d; k++ {
		if k == forced || rng.Float64() < cr {
			trial[k] = mutant[k]
		}
	}
	return trial
}

func pickThreeDistinct(rng *rand.Rand, n, exclude int) (int, int, int) {
	pick := func(avoid map[int]bool) int {
		for {
			idx := rng.Intn(n)
			if !avoid[idx] {
				return idx
			}
		}
	}
	avoid := map[int]bool{exclude: true}
	a := pick(avoid)
	avoid[a] = true
	b := pick(avoid)
	avoid[b] = true
	c := pick(avoid)
	return a, b, c
}
