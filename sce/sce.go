// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sce implements the Shuffled Complex Evolution (SCE-UA) global
// optimiser (spec §4.9): Latin hypercube initial sampling, partitioning into
// complexes, per-complex simplex evolution with trapezoidal rank-weighted
// parent selection and centroid reflection/contraction/random fallback, and
// periodic shuffling of complexes back into one population.
package sce

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/cpmech/kalix/opt"
)

// Options configures one SCE-UA run.
type Options struct {
	NDim         int
	NComplexes   int
	NThreads     int
	Seed         int64
	MaxShuffles  int
	OnGeneration func(shuffle int, best float64)
}

// Result is the outcome of a completed SCE-UA run.
type Result struct {
	BestGenes []float64
	BestScore float64
}

type member struct {
	genes []float64
	score float64
}

// Run executes SCE-UA against evaluator, returning the best gene vector
// found (lower score is better, spec §4.8 convention).
func Run(ctx context.Context, evaluator opt.Evaluator, o Options) (Result, error) {
	if o.NComplexes < 1 {
		o.NComplexes = 1
	}
	pointsPerComplex := 2*o.NDim + 1
	popSize := o.NComplexes * pointsPerComplex

	rng := rand.New(rand.NewSource(o.Seed))
	population := latinHypercube(rng, popSize, o.NDim)

	pool := opt.NewPool(ctx, evaluator, o.NThreads)
	defer pool.Close()

	scores, err := pool.EvaluateAll(population)
	if err != nil {
		return Result{}, err
	}
	members := makeMembers(population, scores)
	sortMembers(members)

	for shuffle := 0; shuffle < o.MaxShuffles; shuffle++ {
		select {
		case <-ctx.Done():
			return Result{BestGenes: members[0].genes, BestScore: members[0].score}, ctx.Err()
		default:
		}

		complexes := partitionComplexes(members, o.NComplexes)
		for ci, complex := range complexes {
			evolveComplex(ctx, evaluator, rng, complex)
			complexes[ci] = complex
		}
		members = flattenComplexes(complexes)
		sortMembers(members)

		if o.OnGeneration != nil {
			o.OnGeneration(shuffle, members[0].score)
		}
	}

	return Result{BestGenes: members[0].genes, BestScore: members[0].score}, nil
}

// latinHypercube draws n samples of dimension d via stratified Latin
// hypercube sampling in [0,1]^d.
func latinHypercube(rng *rand.Rand, n, d int) [][]float64 {
	samples := make([][]float64, n)
	for i := range samples {
		samples[i] = make([]float64, d)
	}
	for dim := 0; dim < d; dim++ {
		perm := rng.Perm(n)
		for i := 0; i < n; i++ {
			samples[i][dim] = (float64(perm[i]) + rng.Float64()) / float64(n)
		}
	}
	return samples
}

func makeMembers(population [][]float64, scores []float64) []member {
	out := make([]member, len(population))
	for i := range population {
		out[i] = member{genes: population[i], score: scores[i]}
	}
	return out
}

func sortMembers(members []member) {
	sort.Slice(members, func(i, j int) bool { return members[i].score < members[j].score })
}

// partitionComplexes splits a rank-sorted population into nComplexes using
// the classical SCE interleaved assignment: complex k receives members at
// ranks k, k+nComplexes, k+2*nComplexes, ...
func partitionComplexes(members []member, nComplexes int) [][]member {
	complexes := make([][]member, nComplexes)
	for i, m := range members {
		k := i % nComplexes
		complexes[k] = append(complexes[k], m)
	}
	return complexes
}

func flattenComplexes(complexes [][]member) []member {
	var out []member
	for _, c := range complexes {
		out = append(out, c...)
	}
	return out
}

// evolveComplex runs the Competitive Complex Evolution (CCE) procedure on
// one complex in place: repeatedly selects a sub-simplex by trapezoidal
// rank weighting (lower-ranked, i.e. better, members are more likely to be
// chosen) and replaces its worst point via reflection, contraction, or a
// uniform-random point as a last resort.
func evolveComplex(ctx context.Context, evaluator opt.Evaluator, rng *rand.Rand, complex []member) {
	n := len(complex)
	if n < 2 {
		return
	}
	nDim := len(complex[0].genes)
	subSize := nDim + 1
	if subSize > n {
		subSize = n
	}
	nOffspring := n

	for iter := 0; iter < nOffspring; iter++ {
		sortMembers(complex)
		subIdx := selectSubSimplex(rng, n, subSize)
		sub := make([]member, subSize)
		for i, idx := range subIdx {
			sub[i] = complex[idx]
		}
		sortMembers(sub)
		worst := sub[len(sub)-1]

		centroid := make([]float64, nDim)
		for _, m := range sub[:len(sub)-1] {
			for d := range centroid {
				centroid[d] += m.genes[d] / float64(len(sub)-1)
			}
		}

		reflected := clampUnit(reflect(centroid, worst.genes, 1.0))
		score, err := evaluator.Evaluate(ctx, reflected)
		var candidate member
		if err == nil && score < worst.score {
			candidate = member{genes: reflected, score: score}
		} else {
			contracted := clampUnit(reflect(centroid, worst.genes, -0.5))
			score2, err2 := evaluator.Evaluate(ctx, contracted)
			if err2 == nil && score2 < worst.score {
				candidate = member{genes: contracted, score: score2}
			} else {
				randomPoint := randomUnitVector(rng, nDim)
				score3, err3 := evaluator.Evaluate(ctx, randomPoint)
				if err3 != nil {
					score3 = math.Inf(1)
				}
				candidate = member{genes: randomPoint, score: score3}
			}
		}

		// sub was re-sorted after being filled, so its positions no longer
		// line up with subIdx; find the worst selected member in complex.
		worstComplexIdx := subIdx[0]
		for _, idx := range subIdx[1:] {
			if complex[idx].score > complex[worstComplexIdx].score {
				worstComplexIdx = idx
			}
		}
		complex[worstComplexIdx] = candidate
	}
}

// selectSubSimplex draws subSize distinct indices from [0,n) with
// trapezoidal rank weighting: index i (already rank-sorted, 0 = best) is
// drawn with probability proportional to 2*(n-i)/(n*(n+1)).
func selectSubSimplex(rng *rand.Rand, n, subSize int) []int {
	weights := make([]float64, n)
	var total float64
	for i := 0; i < n; i++ {
		weights[i] = float64(2*(n-i)) / float64(n*(n+1))
		total += weights[i]
	}
	chosen := make(map[int]bool)
	var out []int
	for len(out) < subSize {
		r := rng.Float64() * total
		var cum float64
		pick := n - 1
		for i, w := range weights {
			cum += w
			if r <= cum {
				pick = i
				break
			}
		}
		if !chosen[pick] {
			chosen[pick] = true
			out = append(out, pick)
		}
	}
	return out
}

func indexOfWorst(sub []member) int {
	worst := 0
	for i, m := range sub {
		if m.score > sub[worst].score {
			worst = i
		}
	}
	return worst
}

// reflect computes centroid + alpha*(centroid - worst), the generalised
// reflection/contraction step (alpha=1 reflection, alpha=-0.5 contraction).
func reflect(centroid, worst []float64, alpha float64) []float64 {
	out := make([]float64, len(centroid))
	for i := range centroid {
		out[i] = centroid[i] + alpha*(centroid[i]-worst[i])
	}
	return out
}

func clampUnit(genes []float64) []float64 {
	for i, g := range genes {
		if g < 0 {
			genes[i] = 0
		}
		if g > 1 {
			genes[i] = 1
		}
	}
	return genes
}

func randomUnitVector(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()
	}
	return out
}
