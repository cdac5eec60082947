// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gstchain/gstio/chain/name"
	"github.com/gstchain/gstio/chain/resourcelimits"
)

func newApplyTxCommand() *cobra.Command {
	var cpu, net, ordinal uint64

	cmd := &cobra.Command{
		Use:   "apply-tx <account> [<account>...]",
		Short: "Charges cpu/net usage to the listed authorizing accounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts := make([]name.Account, len(args))
			for i, a := range args {
				owner, err := parseAccount(a)
				if err != nil {
					return err
				}
				accounts[i] = owner
			}

			store, err := loadStore(statePath)
			if err != nil {
				return err
			}
			mgr := resourcelimits.NewManager(store, nil)

			if err := mgr.AddTransactionUsage(accounts, cpu, net, ordinal); err != nil {
				// Usage accounting up to the failing check has already
				// been applied to the in-memory store; the caller's
				// storage transaction is the unit of rollback, so a
				// real node would discard this store entirely. The CLI
				// mirrors that by not saving on failure.
				return err
			}

			if err := saveStore(statePath, store); err != nil {
				return err
			}
			fmt.Printf("applied cpu=%d net=%d at ordinal=%d to %v\n", cpu, net, ordinal, accounts)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Uint64Var(&cpu, "cpu", 0, "cpu units consumed")
	flags.Uint64Var(&net, "net", 0, "net units consumed")
	flags.Uint64Var(&ordinal, "ordinal", 0, "ordinal (block number or time slot) of this usage")
	return cmd
}
