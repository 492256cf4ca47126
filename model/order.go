// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package model assembles Node instances and the Links between them into a
// directed graph and drives the timestep loop over it (spec §4.2), the
// counterpart to gofem's fem.Domain orchestrating Element objects over a
// mesh.
package model

import "github.com/cpmech/kalix/kerrors"

// topoSort returns names in a valid dependency order via Kahn's algorithm:
// a name with no unresolved predecessors is emitted, then its edges are
// removed and the process repeats. edges[a] lists the nodes that depend on
// a (a must run before each of them).
func topoSort(names []string, edges map[string][]string) ([]string, error) {
	inDegree := make(map[string]int, len(names))
	for _, n := range names {
		inDegree[n] = 0
	}
	for _, targets := range edges {
		for _, to := range targets {
			inDegree[to]++
		}
	}

	var queue []string
	for _, n := range names {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]string, 0, len(names))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, to := range edges[n] {
			inDegree[to]--
			if inDegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if len(order) != len(names) {
		return nil, kerrors.New(kerrors.ConfigError, "Closed cycle detected in the model network!")
	}
	return order, nil
}
