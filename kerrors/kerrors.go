// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package kerrors implements the typed error kinds shared across the simulator
// and optimisation harness, in the tradition of gosl/chk's centralised error
// formatting.
package kerrors

import "fmt"

// Kind classifies an error so callers can branch on failure category without
// string matching.
type Kind int

const (
	// InvalidParams marks an input-validation failure at any boundary.
	InvalidParams Kind = iota
	// NotLoaded marks an operation attempted before a model or data was loaded.
	NotLoaded
	// ConfigError marks a configuration failure: missing input data, cyclic
	// graph, unassigned constant, malformed table, out-of-range parameter.
	ConfigError
	// SimulationError marks a non-recoverable numeric error inside a node.
	SimulationError
	// Interrupted marks an interrupt flag observed mid-run.
	Interrupted
	// IOError marks an underlying file read/write failure.
	IOError
	// ResultNotFound marks a requested series absent from the data cache.
	ResultNotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidParams:
		return "invalid parameters"
	case NotLoaded:
		return "not loaded"
	case ConfigError:
		return "configuration error"
	case SimulationError:
		return "simulation error"
	case Interrupted:
		return "interrupted"
	case IOError:
		return "io error"
	case ResultNotFound:
		return "result not found"
	default:
		return "unknown error"
	}
}

// Error is a typed, identifier-carrying error. Ident is the offending node
// name or series path, when one exists, so the message can be traced back to
// the data that caused it.
type Error struct {
	Kind  Kind
	Ident string
	msg   string
}

func (e *Error) Error() string {
	if e.Ident != "" {
		return fmt.Sprintf("%s: %s [%s]", e.Kind, e.msg, e.Ident)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// WithIdent builds an Error of the given kind, tagging it with the offending
// identifier (node name or series path) per the §7 propagation policy.
func WithIdent(kind Kind, ident, format string, args ...interface{}) error {
	return &Error{Kind: kind, Ident: ident, msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
