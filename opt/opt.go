// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package opt provides the shared worker-pool evaluator used by both the
// SCE-UA and Differential Evolution optimisers (spec §4.9, §5): exactly
// NThreads workers are created once per optimiser invocation, each owning a
// cloned Evaluator, rather than cloning per evaluation. Tasks go through one
// shared channel and each is taken by whichever worker is free; there is no
// fixed round-robin assignment of tasks to workers. Grounded on the goroutine/channel/WaitGroup
// worker pool pattern used elsewhere in the corpus for bounded concurrent
// task processing.
package opt

import "context"

// Evaluator scores a gene vector (each gene normalised to [0,1]) and
// supports independent cloning for parallel use. optim.Problem has the same
// three methods, but its CloneForParallel returns *optim.Problem rather than
// Evaluator, so a *optim.Problem does not satisfy this interface as is.
type Evaluator interface {
	NGenes() int
	Evaluate(ctx context.Context, genes []float64) (float64, error)
	CloneForParallel() Evaluator
}

// Task is one unit of work handed to the pool: a gene vector to score and
// the slot its result belongs in.
type Task struct {
	Genes []float64
	Slot  int
}

// Result pairs a Task's slot with its outcome.
type Result struct {
	Slot  int
	Score float64
	Err   error
}

// Pool runs a fixed number of worker goroutines, each with its own
// Evaluator clone, draining a shared task channel until it is closed.
type Pool struct {
	workers []Evaluator
	tasks   chan Task
	results chan Result
}

// NewPool spawns nThreads Evaluator clones (one per worker) and starts the
// worker goroutines; the pool must be closed with Close once no more
// EvaluateAll calls will be made.
func NewPool(ctx context.Context, base Evaluator, nThreads int) *Pool {
	if nThreads < 1 {
		nThreads = 1
	}
	p := &Pool{
		workers: make([]Evaluator, nThreads),
		tasks:   make(chan Task, nThreads*4),
		results: make(chan Result, nThreads*4),
	}
	for i := 0; i < nThreads; i++ {
		p.workers[i] = base.CloneForParallel()
	}
	for i := 0; i < nThreads; i++ {
		go p.runWorker(ctx, p.workers[i])
	}
	return p
}

func (p *Pool) runWorker(ctx context.Context, e Evaluator) {
	for task := range p.tasks {
		score, err := e.Evaluate(ctx, task.Genes)
		p.results <- Result{Slot: task.Slot, Score: score, Err: err}
	}
}

// EvaluateAll scores every gene vector in population, blocking until all
// results are collected, and returns scores indexed to match population.
func (p *Pool) EvaluateAll(population [][]float64) ([]float64, error) {
	n := len(population)
	go func() {
		for i, genes := range population {
			p.tasks <- Task{Genes: genes, Slot: i}
		}
	}()

	scores := make([]float64, n)
	var firstErr error
	for i := 0; i < n; i++ {
		r := <-p.results
		if r.Err != nil && firstErr == nil {
			firstErr = r.Err
		}
		scores[r.Slot] = r.Score
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return scores, nil
}

// Close shuts down the worker goroutines. The pool must not be used
// afterwards.
func (p *Pool) Close() {
	close(p.tasks)
}
