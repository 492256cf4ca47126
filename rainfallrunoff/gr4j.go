// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package rainfallrunoff implements the rainfall-runoff production models
// exercised by the GR4J and Sacramento node kinds. The node wrapper types in
// package nodes treat run_step(p,e) -> q as an opaque contract; the
// algorithms living here are the concrete models behind that contract,
// grounded directly on each model's published formulation the way gofem's
// mreten package implements a named retention-model family (van Genuchten,
// Brooks-Corey) behind a common interface.
package rainfallrunoff

import "math"

// GR4JParams holds the four calibratable GR4J parameters.
type GR4JParams struct {
	X1 float64 // production store capacity (mm)
	X2 float64 // groundwater exchange coefficient (mm)
	X3 float64 // routing store capacity (mm)
	X4 float64 // unit hydrograph time base (days, in model steps)
}

// GR4J is a single catchment's GR4J production/routing model state. UH1 and
// UH2 are the unit hydrograph ordinates derived from X4, rebuilt only when
// SetParams changes X4; uh1Store/uh2Store are the convolution accumulators, sized to
// match and carried across steps.
type GR4J struct {
	Params GR4JParams

	ProductionStore float64
	RoutingStore    float64

	uh1        []float64
	uh2        []float64
	uh1Store   []float64
	uh2Store   []float64
	builtForX4 float64
}

// NewGR4J returns a GR4J model with both stores initialised to a fraction of
// their capacities (30% production, 50% routing), the conventional GR4J
// cold-start state.
func NewGR4J(p GR4JParams) *GR4J {
	g := &GR4J{Params: p}
	g.ProductionStore = 0.3 * p.X1
	g.RoutingStore = 0.5 * p.X3
	g.buildUnitHydrographs()
	return g
}

// sh1 is the S-curve for UH1: cumulative fraction of a unit rainfall impulse
// routed by time t, time base X4.
func sh1(t, x4 float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t < x4:
		return math.Pow(t/x4, 2.5)
	default:
		return 1
	}
}

// sh2 is the S-curve for UH2, time base 2*X4.
func sh2(t, x4 float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t <= x4:
		return 0.5 * math.Pow(t/x4, 2.5)
	case t < 2*x4:
		return 1 - 0.5*math.Pow(2-t/x4, 2.5)
	default:
		return 1
	}
}

// buildUnitHydrographs derives ordinates from the S-curves and (re)sizes the
// convolution accumulators whenever X4 changes (e.g. after a calibration
// gene update).
func (g *GR4J) buildUnitHydrographs() {
	x4 := g.Params.X4
	if x4 <= 0 {
		x4 = 0.5
	}
	n1 := int(math.Ceil(x4)) + 1
	n2 := int(math.Ceil(2*x4)) + 1
	g.uh1 = make([]float64, n1)
	for i := 0; i < n1; i++ {
		g.uh1[i] = sh1(float64(i+1), x4) - sh1(float64(i), x4)
	}
	g.uh2 = make([]float64, n2)
	for i := 0; i < n2; i++ {
		g.uh2[i] = sh2(float64(i+1), x4) - sh2(float64(i), x4)
	}
	g.uh1Store = make([]float64, n1)
	g.uh2Store = make([]float64, n2)
	g.builtForX4 = x4
}

// SetParams updates the calibratable parameters, rebuilding the unit
// hydrographs if X4 changed.
func (g *GR4J) SetParams(p GR4JParams) {
	g.Params = p
	if p.X4 != g.builtForX4 {
		g.buildUnitHydrographs()
	}
}

// Clone returns an independent deep copy, including the unit hydrograph
// convolution accumulators.
func (g *GR4J) Clone() *GR4J {
	clone := *g
	clone.uh1 = append([]float64(nil), g.uh1...)
	clone.uh2 = append([]float64(nil), g.uh2...)
	clone.uh1Store = append([]float64(nil), g.uh1Store...)
	clone.uh2Store = append([]float64(nil), g.uh2Store...)
	return &clone
}

// RunStep advances the model by one timestep given rainfall p and potential
// evapotranspiration e (both mm), returning total runoff q (mm).
func (g *GR4J) RunStep(p, e float64) float64 {
	x1 := g.Params.X1
	x2 := g.Params.X2
	x3 := g.Params.X3

	var pn, ps, perc float64
	if p >= e {
		pn = p - e
		th := math.Tanh(pn / x1)
		ratio := g.ProductionStore / x1
		ps = x1 * (1 - ratio*ratio) * th / (1 + ratio*th)
		g.ProductionStore += ps
	} else {
		en := e - p
		th := math.Tanh(en / x1)
		ratio := g.ProductionStore / x1
		es := g.ProductionStore * (2 - ratio) * th / (1 + (1-ratio)*th)
		if es > g.ProductionStore {
			es = g.ProductionStore
		}
		g.ProductionStore -= es
	}

	sRatio := g.ProductionStore / x1
	perc = g.ProductionStore * (1 - math.Pow(1+math.Pow(4.0/9.0*sRatio, 4), -0.25))
	g.ProductionStore -= perc

	pr := perc + (pn - ps)

	q9 := g.convolve(g.uh1, g.uh1Store, 0.9*pr)
	q1 := g.convolve(g.uh2, g.uh2Store, 0.1*pr)

	exch := x2 * math.Pow(g.RoutingStore/x3, 3.5)

	g.RoutingStore += q9 + exch
	if g.RoutingStore < 0 {
		g.RoutingStore = 0
	}
	rRatio := g.RoutingStore / x3
	qr := g.RoutingStore * (1 - math.Pow(1+math.Pow(rRatio, 4), -0.25))
	g.RoutingStore -= qr

	qd := q1 + exch
	if qd < 0 {
		qd = 0
	}

	return qr + qd
}

// convolve pushes volume through a unit hydrograph's circular accumulator
// (store), returning the discharge leaving this step and shifting store for
// the next one.
func (g *GR4J) convolve(uh, store []float64, volume float64) float64 {
	n := len(uh)
	for i := 0; i < n; i++ {
		store[i] += uh[i] * volume
	}
	if n == 0 {
		return 0
	}
	out := store[0]
	copy(store, store[1:])
	store[n-1] = 0
	return out
}
