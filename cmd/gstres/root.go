// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import "github.com/spf13/cobra"

var statePath string

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gstres",
		Short: "Exercises the resource-limits engine against a JSON fixture",
	}
	cmd.PersistentFlags().StringVarP(&statePath, "state", "s", "gstres-state.json", "path to the fixture state file")

	cmd.AddCommand(
		newInitAccountCommand(),
		newApplyTxCommand(),
		newCommitBlockCommand(),
		newShowCommand(),
	)
	return cmd
}
