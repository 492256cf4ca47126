// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nodes

import "github.com/cpmech/kalix/kerrors"

// Constructor builds a new, uninitialised Node of one kind from its name.
// Registered constructors return zero-valued nodes; callers configure
// Dynamic Inputs and parameters afterwards via SetParam and kind-specific
// setters before Init runs.
type Constructor func(name string) Node

var registry = make(map[string]Constructor)

// Register adds a node kind constructor under kind (e.g. "gr4j", "storage").
// Mirrors the registration pattern gofem's ele/factory.go uses for element
// kinds: a package-level map populated by each kind's init(), looked up by a
// string tag from configuration.
func Register(kind string, ctor Constructor) {
	registry[kind] = ctor
}

// New constructs a node of the given kind and name, or a ConfigError if kind
// is unregistered.
func New(kind, name string) (Node, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, kerrors.WithIdent(kerrors.ConfigError, kind, "unknown node kind")
	}
	return ctor(name), nil
}

// RegisteredKinds returns the currently registered node kind names.
func RegisteredKinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	return kinds
}
