// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gstchain/gstio/chain/name"
)

// Committed rows sort before pending rows, and within a group rows sort
// by owner, so a lower-bound probe for pending=true lands exactly on the
// first pending row and nothing after it is committed.
func TestTableOrdersCommittedBeforePending(t *testing.T) {
	require := require.New(t)

	tbl := NewTable[AccountLimits]()
	bob := mustAccount(t, "bob")
	alice := mustAccount(t, "alice")

	tbl.Create(func(r *AccountLimits) { r.Pending = false; r.Owner = bob })
	tbl.Create(func(r *AccountLimits) { r.Pending = false; r.Owner = alice })
	tbl.Create(func(r *AccountLimits) { r.Pending = true; r.Owner = alice })
	tbl.Create(func(r *AccountLimits) { r.Pending = true; r.Owner = bob })

	var seenPending bool
	var owners []name.Account
	tbl.AscendFrom(&AccountLimits{}, func(row *AccountLimits) bool {
		if row.Pending {
			seenPending = true
		} else {
			require.False(seenPending, "a committed row must not appear after a pending row")
		}
		owners = append(owners, row.Owner)
		return true
	})
	require.Len(owners, 4)
	require.Equal([]name.Account{alice, bob, alice, bob}, owners)
}

func TestTableFindAndRemove(t *testing.T) {
	require := require.New(t)

	tbl := NewTable[AccountLimits]()
	owner := mustAccount(t, "carol")
	row := tbl.Create(func(r *AccountLimits) { r.Owner = owner; r.CPUWeight = 5 })

	found, ok := tbl.Find(&AccountLimits{Owner: owner})
	require.True(ok)
	require.Equal(int64(5), found.CPUWeight)

	tbl.Remove(row)
	_, ok = tbl.Find(&AccountLimits{Owner: owner})
	require.False(ok)
}
