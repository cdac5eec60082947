// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gstchain/gstio/chain/resourcelimits"
)

func newShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [<account>]",
		Short: "Prints chain-wide state, or one account's resource view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(statePath)
			if err != nil {
				return err
			}
			mgr := resourcelimits.NewManager(store, nil)

			if len(args) == 0 {
				fmt.Printf("virtual_cpu_limit=%d virtual_net_limit=%d total_cpu_weight=%d total_net_weight=%d total_ram_bytes=%d\n",
					mgr.GetVirtualBlockCPULimit(), mgr.GetVirtualBlockNetLimit(),
					store.State.TotalCPUWeight, store.State.TotalNetWeight, store.State.TotalRAMBytes)
				return nil
			}

			owner, err := parseAccount(args[0])
			if err != nil {
				return err
			}
			cpu, err := mgr.GetAccountCPULimitEx(owner)
			if err != nil {
				return err
			}
			net, err := mgr.GetAccountNetLimitEx(owner)
			if err != nil {
				return err
			}
			ramUsage, err := mgr.GetAccountRAMUsage(owner)
			if err != nil {
				return err
			}
			printAccountLimits(owner.String(), cpu, net, ramUsage)
			return nil
		},
	}
	return cmd
}

func printAccountLimits(owner string, cpu, net resourcelimits.AccountResourceLimit, ramUsage uint64) {
	fmt.Printf("%s: cpu{used=%d avail=%d max=%d} net{used=%d avail=%d max=%d} ram_usage=%d\n",
		owner, cpu.Used, cpu.Available, cpu.Max, net.Used, net.Available, net.Max, ramUsage)
}
