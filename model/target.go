// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"strings"

	"github.com/cpmech/kalix/kerrors"
)

type targetKind int

const (
	targetUnknown targetKind = iota
	targetNode
	targetConstant
)

// parseTargetAddress parses a Parameter Mapping target address: either
// "node.<name>.<param>" or "c.<name>" (spec §4.6).
func parseTargetAddress(address string) (kind targetKind, node, param string, err error) {
	if strings.HasPrefix(address, "c.") {
		return targetConstant, "", address, nil
	}
	if strings.HasPrefix(address, "node.") {
		rest := strings.TrimPrefix(address, "node.")
		i := strings.LastIndex(rest, ".")
		if i < 0 {
			return targetUnknown, "", "", kerrors.WithIdent(kerrors.ConfigError, address, "malformed node target address")
		}
		return targetNode, rest[:i], rest[i+1:], nil
	}
	return targetUnknown, "", "", kerrors.WithIdent(kerrors.ConfigError, address, "unrecognised target address prefix")
}
