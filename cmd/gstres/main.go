// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command gstres is a small, fixture-driven harness for exercising the
// resourcelimits engine from the command line: initialize accounts, apply
// transaction usage, commit a block, and inspect the resulting state.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gstres: %v\n", err)
		os.Exit(1)
	}
}
