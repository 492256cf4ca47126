// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"context"

	"github.com/cpmech/kalix/cache"
	"github.com/cpmech/kalix/kerrors"
)

// RunOptions configures a single simulation Run.
type RunOptions struct {
	// Period overrides the auto-detected simulation period; if nil,
	// DetectSimulationPeriod is used (spec §4.2).
	Period *cache.Period

	// OnStep, if non-nil, is invoked once per completed step with its
	// index (0-based) and total step count, for progress reporting.
	OnStep func(step, total int)
}

// Run executes the full simulation: it determines the execution order,
// initialises every node, resolves the simulation period, then steps the
// Data Cache forward one timestep at a time, running every node in order at
// each step. Run returns an Interrupted error if ctx is cancelled between
// steps, leaving the cache populated up to the last completed step.
func (m *Model) Run(ctx context.Context, opts RunOptions) error {
	if err := m.Cache.Constants.AssertAllAssigned(); err != nil {
		return err
	}

	order, err := m.DetermineExecutionOrder()
	if err != nil {
		return err
	}

	if err := m.InitializeNodes(); err != nil {
		return err
	}

	period := opts.Period
	if period == nil {
		p, err := m.Cache.DetectSimulationPeriod()
		if err != nil {
			return err
		}
		period = &p
	}
	m.Cache.SetStartAndStepSize(period.StartTimestamp, period.StepSize)

	for step := 0; step < period.NSteps; step++ {
		select {
		case <-ctx.Done():
			return kerrors.New(kerrors.Interrupted, "simulation interrupted after %d of %d steps", step, period.NSteps)
		default:
		}

		m.Cache.SetCurrentStep(step)
		for _, name := range order {
			if err := m.nodeByName[name].RunOrderPhase(m.Cache); err != nil {
				return kerrors.WithIdent(kerrors.SimulationError, name, "order phase at step %d failed: %v", step, err)
			}
		}
		for _, name := range order {
			if err := m.nodeByName[name].RunFlowPhase(m.Cache); err != nil {
				return kerrors.WithIdent(kerrors.SimulationError, name, "step %d failed: %v", step, err)
			}
			m.propagate(name)
		}

		if opts.OnStep != nil {
			opts.OnStep(step, period.NSteps)
		}
	}
	return nil
}
