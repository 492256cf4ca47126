// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package optim adapts a model.Model plus a paramap.Config into an
// Optimisation Problem: something an optimiser can hand a gene vector to
// and get a single scalar score back (spec §4.7-§4.9).
package optim

import (
	"context"

	"github.com/cpmech/kalix/kerrors"
	"github.com/cpmech/kalix/model"
	"github.com/cpmech/kalix/objective"
	"github.com/cpmech/kalix/paramap"
	"github.com/cpmech/kalix/timeseries"
)

// ComparisonPair names a simulated series (a node output, by cache series
// name) and the observed series it is scored against.
type ComparisonPair struct {
	SimulatedSeriesName string
	Observed            *timeseries.Timeseries
	Objective           objective.Func
	Weight              float64
}

// Problem is one Optimisation Problem instance: a Model, its Parameter
// Mapping, and the set of ComparisonPairs scored after each run.
type Problem struct {
	Model    *model.Model
	Mapping  *paramap.Config
	Pairs    []ComparisonPair
	RunOpts  model.RunOptions
}

// NewProblem returns a Problem wrapping m, scored according to mapping and
// pairs.
func NewProblem(m *model.Model, mapping *paramap.Config, pairs []ComparisonPair) *Problem {
	return &Problem{Model: m, Mapping: mapping, Pairs: pairs}
}

// NGenes returns the dimensionality of the gene vector this Problem expects.
func (p *Problem) NGenes() int { return p.Mapping.NGenes() }

// Evaluate applies genes to the model, runs a full simulation, and returns
// the weighted sum of each ComparisonPair's objective score (spec §4.8:
// lower is always better).
func (p *Problem) Evaluate(ctx context.Context, genes []float64) (float64, error) {
	if err := p.Mapping.Apply(genes, p.Model); err != nil {
		return 0, err
	}
	if err := p.Model.Run(ctx, p.RunOpts); err != nil {
		return 0, err
	}

	var total float64
	for _, pair := range p.Pairs {
		idx, ok := p.Model.Cache.GetExistingSeriesIdx(pair.SimulatedSeriesName)
		if !ok {
			return 0, kerrors.WithIdent(kerrors.ResultNotFound, pair.SimulatedSeriesName, "simulated series not found after run")
		}
		simSeries := p.Model.Cache.Series(idx)
		simValues, obsValues := timeseries.AlignInner(simSeries, pair.Observed)
		if len(simValues) == 0 {
			return 0, kerrors.WithIdent(kerrors.ResultNotFound, pair.SimulatedSeriesName, "no overlapping timestamps between simulated and observed series")
		}
		score := pair.Objective(simValues, obsValues)
		weight := pair.Weight
		if weight == 0 {
			weight = 1
		}
		total += weight * score
	}
	return total, nil
}

// CloneForParallel returns an independent deep copy of p suitable for
// handing to one worker goroutine: the Data Cache is deep-copied so that
// concurrent Evaluate calls on different clones never share mutable state
// (spec §5 worker-pool concurrency model: one clone per worker, not per
// evaluation).
func (p *Problem) CloneForParallel() *Problem {
	clonedCache := p.Model.Cache.Clone()
	return &Problem{
		Model:   p.Model.CloneStructure(clonedCache),
		Mapping: p.Mapping,
		Pairs:   p.Pairs,
		RunOpts: p.RunOpts,
	}
}
