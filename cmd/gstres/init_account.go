// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gstchain/gstio/chain/resourcelimits"
)

func newInitAccountCommand() *cobra.Command {
	var ramBytes, netWeight, cpuWeight int64
	var setLimits bool

	cmd := &cobra.Command{
		Use:   "init-account <name>",
		Short: "Initializes a new account, optionally staging its resource limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseAccount(args[0])
			if err != nil {
				return err
			}

			store, err := loadStore(statePath)
			if err != nil {
				return err
			}
			mgr := resourcelimits.NewManager(store, nil)

			if err := mgr.InitializeAccount(owner); err != nil {
				return err
			}
			if setLimits {
				if _, err := mgr.SetAccountLimits(owner, ramBytes, netWeight, cpuWeight); err != nil {
					return err
				}
				if err := mgr.ProcessAccountLimitUpdates(); err != nil {
					return err
				}
			}

			if err := saveStore(statePath, store); err != nil {
				return err
			}
			fmt.Printf("initialized %s\n", owner)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&ramBytes, "ram-bytes", -1, "ram byte limit (-1 = unlimited)")
	flags.Int64Var(&netWeight, "net-weight", -1, "net stake weight (-1 = unlimited)")
	flags.Int64Var(&cpuWeight, "cpu-weight", -1, "cpu stake weight (-1 = unlimited)")
	flags.BoolVar(&setLimits, "set-limits", false, "also stage and commit the given limits")
	return cmd
}
