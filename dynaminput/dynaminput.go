// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package dynaminput implements the Dynamic Input sum type (spec §3, §4): a
// scalar-valued expression bound to a series, a constant, a direct
// reference, or a linear combination of rainfall gauges. The package parses
// and reduces no expressions itself: callers build the zero-overhead
// DirectReference / LinearCombination forms directly, or supply a generic
// precompiled Function closure, mirroring gosl/fun.Func's role as an opaque
// scalar function of a variable context in gofem's boundary conditions.
package dynaminput

import (
	"math"

	"github.com/cpmech/kalix/cache"
)

// Kind identifies which Dynamic Input variant is active.
type Kind int

const (
	KindNone Kind = iota
	KindConstant
	KindDirectReference
	KindDirectConstantReference
	KindLinearCombination
	KindFunction
)

// VarContext resolves named variables for a Function Dynamic Input; the
// expression parser/evaluator itself is out of scope (spec §1 Non-goals),
// so Function wraps an already-compiled closure.
type VarContext = *cache.Cache

// Input is the Dynamic Input sum type. Only the fields relevant to Kind are
// meaningful at any one time; this mirrors the tagged-variant representation
// recommended in spec §9 ("Polymorphism over node kinds").
type Input struct {
	Kind Kind

	// KindConstant
	Value float64

	// KindDirectReference
	SeriesIdx int

	// KindDirectConstantReference
	ConstantName string

	// KindLinearCombination
	SeriesIndices []int
	Coefficients  []float64
	UParams       []float64
	Bias          float64

	// KindFunction
	Fn func(ctx VarContext) float64
}

// None returns the None variant (always 0).
func None() Input { return Input{Kind: KindNone} }

// Const returns the Constant variant.
func Const(v float64) Input { return Input{Kind: KindConstant, Value: v} }

// DirectRef returns a zero-overhead series-index lookup.
func DirectRef(idx int) Input { return Input{Kind: KindDirectReference, SeriesIdx: idx} }

// DirectConstRef returns a lookup against the Constants subcache.
func DirectConstRef(name string) Input {
	return Input{Kind: KindDirectConstantReference, ConstantName: name}
}

// Func wraps a precompiled generic expression.
func Func(fn func(ctx VarContext) float64) Input {
	return Input{Kind: KindFunction, Fn: fn}
}

// GetValue returns the scalar value of the expression at the cache's current
// step (the uniform Dynamic Input contract, spec §3).
func (in Input) GetValue(c *cache.Cache) float64 {
	switch in.Kind {
	case KindNone:
		return 0
	case KindConstant:
		return in.Value
	case KindDirectReference:
		return c.GetCurrentValue(in.SeriesIdx)
	case KindDirectConstantReference:
		v, err := c.Constants.Get(in.ConstantName)
		if err != nil {
			return math.NaN()
		}
		return v
	case KindLinearCombination:
		return in.linearCombinationValue(c)
	case KindFunction:
		if in.Fn == nil {
			return 0
		}
		return in.Fn(c)
	default:
		return math.NaN()
	}
}

// linearCombinationValue sums coefficient[i]*series[i] for the currently
// cached coefficients (recomputed from bias/u_params whenever a rainfall
// weight parameter is set, see rainfallweights.go).
func (in Input) linearCombinationValue(c *cache.Cache) float64 {
	var sum float64
	for i, idx := range in.SeriesIndices {
		sum += in.Coefficients[i] * c.GetCurrentValue(idx)
	}
	return sum
}
