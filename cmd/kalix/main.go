// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/kalix/nodes"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	listKinds := flag.Bool("list-kinds", false, "print the registered node kinds and exit")
	flag.Parse()

	io.PfWhite("\nKalix -- node-graph hydrological simulator\n\n")
	io.Pf("Copyright 2024 The Kalix Authors. All rights reserved.\n")
	io.Pf("Use of this source code is governed by a BSD-style\n")
	io.Pf("license that can be found in the LICENSE file.\n\n")

	if *listKinds {
		for _, kind := range nodes.RegisteredKinds() {
			io.Pf("  %s\n", kind)
		}
		return
	}

	io.Pf("Kalix is a library first: assemble a model.Model from the node,\n")
	io.Pf("dynaminput, paramap, optim, sce and de packages programmatically.\n")
	io.Pf("Run with -list-kinds to see the registered node kinds.\n\n")
}
