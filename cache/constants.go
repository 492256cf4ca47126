// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import "github.com/cpmech/kalix/kerrors"

// Constants is the Constants subcache: a mapping from name (conventionally
// prefixed "c.") to an optional value. An unassigned constant is a
// configuration error, detected before run (spec §3).
type Constants struct {
	names  []string
	values []*float64
	index  map[string]int
}

// NewConstants returns an empty Constants subcache.
func NewConstants() *Constants {
	return &Constants{index: make(map[string]int)}
}

// Declare registers name if not already present, leaving it unassigned.
func (c *Constants) Declare(name string) {
	if _, ok := c.index[name]; ok {
		return
	}
	c.index[name] = len(c.names)
	c.names = append(c.names, name)
	c.values = append(c.values, nil)
}

// Set assigns a value to name, declaring it first if necessary.
func (c *Constants) Set(name string, value float64) {
	c.Declare(name)
	v := value
	c.values[c.index[name]] = &v
}

// Get returns the assigned value of name, or an error if name is unknown or
// unassigned.
func (c *Constants) Get(name string) (float64, error) {
	idx, ok := c.index[name]
	if !ok {
		return 0, kerrors.WithIdent(kerrors.ConfigError, name, "unknown constant")
	}
	if c.values[idx] == nil {
		return 0, kerrors.WithIdent(kerrors.ConfigError, name, "constant has no assigned value")
	}
	return *c.values[idx], nil
}

// AssertAllAssigned returns a configuration error naming the first
// unassigned constant found, or nil if every declared constant has a value.
func (c *Constants) AssertAllAssigned() error {
	for i, v := range c.values {
		if v == nil {
			return kerrors.WithIdent(kerrors.ConfigError, c.names[i], "constant has no assigned value")
		}
	}
	return nil
}

// Clone returns an independent deep copy.
func (c *Constants) Clone() *Constants {
	out := &Constants{index: make(map[string]int, len(c.index))}
	for k, v := range c.index {
		out.index[k] = v
	}
	out.names = append(out.names, c.names...)
	for _, v := range c.values {
		if v == nil {
			out.values = append(out.values, nil)
		} else {
			vv := *v
			out.values = append(out.values, &vv)
		}
	}
	return out
}
