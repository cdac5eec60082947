// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gstchain/gstio/chain/resourcelimits"
)

func newCommitBlockCommand() *cobra.Command {
	var blockNum uint64

	cmd := &cobra.Command{
		Use:   "commit-block",
		Short: "Folds pending block usage into the moving averages and commits staged account limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(statePath)
			if err != nil {
				return err
			}
			mgr := resourcelimits.NewManager(store, nil)

			if err := mgr.ProcessAccountLimitUpdates(); err != nil {
				return err
			}
			mgr.ProcessBlockUsage(blockNum)

			if err := saveStore(statePath, store); err != nil {
				return err
			}
			fmt.Printf("committed block %d: virtual_cpu_limit=%d virtual_net_limit=%d\n",
				blockNum, mgr.GetVirtualBlockCPULimit(), mgr.GetVirtualBlockNetLimit())
			return nil
		},
	}

	cmd.Flags().Uint64Var(&blockNum, "block", 0, "block number (ordinal) to commit")
	return cmd
}
