// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package paramap implements Parameter Mapping (spec §4.6): the layer that
// turns a flat optimiser gene vector, each gene normalised to [0,1], into
// concrete model parameter values at named target addresses, including
// shared ("tied") genes mapped to more than one target.
package paramap

import (
	"math"

	"github.com/cpmech/kalix/kerrors"
)

// TransformKind identifies how a normalised gene in [0,1] is stretched into
// a parameter's physical range.
type TransformKind int

const (
	// LinRange maps u linearly onto [min,max].
	LinRange TransformKind = iota
	// LogRange maps u logarithmically onto [min,max] (min and max must be
	// strictly positive).
	LogRange
)

// Transform converts a normalised gene value into a physical parameter
// value and back.
type Transform struct {
	Kind     TransformKind
	Min, Max float64
}

// Apply maps u in [0,1] to a physical value.
func (t Transform) Apply(u float64) float64 {
	switch t.Kind {
	case LogRange:
		logMin, logMax := math.Log(t.Min), math.Log(t.Max)
		return math.Exp(logMin + u*(logMax-logMin))
	default:
		return t.Min + u*(t.Max-t.Min)
	}
}

// Invert maps a physical value back to its normalised gene in [0,1], the
// inverse of Apply; used to seed an optimiser from a known-good parameter
// set.
func (t Transform) Invert(value float64) float64 {
	switch t.Kind {
	case LogRange:
		logMin, logMax := math.Log(t.Min), math.Log(t.Max)
		if logMax == logMin {
			return 0
		}
		return (math.Log(value) - logMin) / (logMax - logMin)
	default:
		if t.Max == t.Min {
			return 0
		}
		return (value - t.Min) / (t.Max - t.Min)
	}
}

// Mapping binds one gene index to one target address via a Transform.
// Multiple Mappings sharing the same GeneIndex are "tied" — they receive
// the same gene value but may transform it differently per target.
type Mapping struct {
	GeneName  string
	GeneIndex int
	Target    string
	Transform Transform
}

// Config is a full Parameter Mapping: the ordered set of distinct gene
// names (the optimiser's search dimensions) and the Mappings that route
// each gene to one or more target addresses.
type Config struct {
	GeneNames []string
	Mappings  []Mapping
}

// NewConfig builds a Config from a list of (geneName, target, transform)
// triples, assigning gene indices in first-seen order so that repeated gene
// names tie automatically.
func NewConfig(entries []struct {
	GeneName  string
	Target    string
	Transform Transform
}) *Config {
	c := &Config{}
	index := make(map[string]int)
	for _, e := range entries {
		idx, ok := index[e.GeneName]
		if !ok {
			idx = len(c.GeneNames)
			index[e.GeneName] = idx
			c.GeneNames = append(c.GeneNames, e.GeneName)
		}
		c.Mappings = append(c.Mappings, Mapping{
			GeneName:  e.GeneName,
			GeneIndex: idx,
			Target:    e.Target,
			Transform: e.Transform,
		})
	}
	return c
}

// NGenes returns the number of distinct genes (search dimensions).
func (c *Config) NGenes() int { return len(c.GeneNames) }

// Setter assigns a physical value to a target address; model.Model.SetParam
// satisfies this.
type Setter interface {
	SetParam(address string, value float64) error
}

// Apply maps genes (one normalised value per GeneNames entry, in [0,1]) onto
// their target addresses via s. len(genes) must equal NGenes().
func (c *Config) Apply(genes []float64, s Setter) error {
	if len(genes) != len(c.GeneNames) {
		return kerrors.New(kerrors.InvalidParams, "expected %d genes, got %d", len(c.GeneNames), len(genes))
	}
	for _, m := range c.Mappings {
		u := genes[m.GeneIndex]
		if u < 0 || u > 1 {
			return kerrors.WithIdent(kerrors.InvalidParams, m.GeneName, "gene value %v out of range [0,1]", u)
		}
		value := m.Transform.Apply(u)
		if err := s.SetParam(m.Target, value); err != nil {
			return err
		}
	}
	return nil
}
