// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gstchain/gstio/chain/name"
)

func testConfig() ResourceConfig {
	return ResourceConfig{
		CPUParams: ElasticLimitParameters{
			Target: 500, Max: 1000, Periods: 10, MaxMultiplier: 1000,
			ContractRate: Ratio{Numerator: 99, Denominator: 100},
			ExpandRate:   Ratio{Numerator: 1000, Denominator: 999},
		},
		NetParams: ElasticLimitParameters{
			Target: 500, Max: 1000, Periods: 10, MaxMultiplier: 1000,
			ContractRate: Ratio{Numerator: 99, Denominator: 100},
			ExpandRate:   Ratio{Numerator: 1000, Denominator: 999},
		},
		AccountCPUWindow: 60,
		AccountNetWindow: 60,
		GasPerTxToll:     100,
	}
}

func newTestManager(t *testing.T) (*Manager, *Store) {
	t.Helper()
	store, err := NewStore(testConfig())
	require.NoError(t, err)
	return NewManager(store, nil), store
}

func mustAccount(t *testing.T, s string) name.Account {
	t.Helper()
	a, err := name.Parse(s)
	require.NoError(t, err)
	return a
}

// Stake-weighted fair share at window 60. Share =
// virtual_limit * window * weight / total_weight = 1000*60*100/200 =
// 30000; a single tx's in-window usage equals its raw unit count (no
// ordinal has elapsed yet to decay the average), so a tx above the share
// must fail and one within it must succeed.
func TestAddTransactionUsageFairShare(t *testing.T) {
	require := require.New(t)

	setupTwoEqualWeightAccounts := func(t *testing.T) (*Manager, name.Account) {
		t.Helper()
		m, _ := newTestManager(t)
		alice := mustAccount(t, "alice")
		bob := mustAccount(t, "bob")
		require.NoError(m.InitializeAccount(alice))
		require.NoError(m.InitializeAccount(bob))
		_, err := m.SetAccountLimits(alice, -1, -1, 100)
		require.NoError(err)
		_, err = m.SetAccountLimits(bob, -1, -1, 100)
		require.NoError(err)
		require.NoError(m.ProcessAccountLimitUpdates())
		require.Equal(uint64(200), m.store.State.TotalCPUWeight)
		// Raise the nominal block max so the block-level check admits the
		// 25000-unit transactions; the virtual limit, and with it the
		// 30000 share, stays at 1000 until the next ProcessBlockUsage.
		cfg := testConfig()
		cfg.CPUParams.Max = 100_000
		require.NoError(m.SetBlockParameters(cfg.CPUParams, cfg.NetParams))
		require.Equal(uint64(1000), m.store.State.VirtualCPULimit)
		return m, alice
	}

	m, alice := setupTwoEqualWeightAccounts(t)
	err := m.AddTransactionUsage([]name.Account{alice}, 31_000, 0, 0)
	require.ErrorIs(err, ErrCPUUsageExceeded)

	// A fresh manager/account pair avoids the rejected attempt's EMA
	// mutation, since the manager doesn't roll back a failed check.
	m2, alice2 := setupTwoEqualWeightAccounts(t)
	require.NoError(m2.AddTransactionUsage([]name.Account{alice2}, 25_000, 0, 0))

	// A second 25000-unit tx at the same ordinal pushes
	// cumulative in-window usage over the 30000 share and must fail.
	err = m2.AddTransactionUsage([]name.Account{alice2}, 25_000, 0, 0)
	require.ErrorIs(err, ErrCPUUsageExceeded)
}

// RAM usage bookkeeping vs. limit verification.
func TestRAMUsageVerification(t *testing.T) {
	require := require.New(t)
	m, _ := newTestManager(t)

	a := mustAccount(t, "ramuser")
	require.NoError(m.InitializeAccount(a))
	_, err := m.SetAccountLimits(a, 1000, -1, -1)
	require.NoError(err)
	require.NoError(m.ProcessAccountLimitUpdates())

	require.NoError(m.AddPendingRAMUsage(a, 1500))
	err = m.VerifyAccountRAMUsage(a)
	require.ErrorIs(err, ErrRAMUsageExceeded)
}

// Per-block elastic limit update.
func TestProcessBlockUsage(t *testing.T) {
	require := require.New(t)
	m, store := newTestManager(t)

	store.State.PendingCPUUsage = 400
	prevLimit := store.State.VirtualCPULimit
	m.ProcessBlockUsage(1)

	require.Zero(store.State.PendingCPUUsage)
	require.NotZero(store.State.AverageBlockCPUUsage.LastOrdinal)
	require.GreaterOrEqual(store.State.VirtualCPULimit, store.Config.CPUParams.Max)
	require.LessOrEqual(store.State.VirtualCPULimit, store.Config.CPUParams.Max*uint64(store.Config.CPUParams.MaxMultiplier))
	_ = prevLimit
}

// Pending limit updates commit into the chain-wide totals and
// the pending rows are removed.
func TestProcessAccountLimitUpdates(t *testing.T) {
	require := require.New(t)
	m, store := newTestManager(t)

	a := mustAccount(t, "alice")
	b := mustAccount(t, "bob")
	require.NoError(m.InitializeAccount(a))
	require.NoError(m.InitializeAccount(b))

	_, err := m.SetAccountLimits(a, -1, -1, 0)
	require.NoError(err)
	_, err = m.SetAccountLimits(b, -1, -1, 100)
	require.NoError(err)
	require.NoError(m.ProcessAccountLimitUpdates())
	require.Equal(uint64(100), store.State.TotalCPUWeight)

	_, err = m.SetAccountLimits(a, -1, -1, 50)
	require.NoError(err)
	_, err = m.SetAccountLimits(b, -1, -1, 0)
	require.NoError(err)
	require.NoError(m.ProcessAccountLimitUpdates())

	require.Equal(uint64(50), store.State.TotalCPUWeight)
	_, found := store.Limits.Find(&AccountLimits{Pending: true, Owner: a})
	require.False(found)
	_, found = store.Limits.Find(&AccountLimits{Pending: true, Owner: b})
	require.False(found)
}

// Gas usage tracks a prefix sum of RAM deltas, saturating at
// zero, and fails once the byte budget is exhausted.
func TestGasUsageSaturatesAndEnforcesBudget(t *testing.T) {
	require := require.New(t)
	m, store := newTestManager(t)

	alice := mustAccount(t, "alice")
	require.NoError(m.InitializeAccount(alice))
	m.SetGasLimits(true)
	_, err := m.SetGSTLimits(alice, 1000)
	require.NoError(err)

	require.NoError(m.AddPendingRAMUsage(alice, 500))
	require.NoError(m.AddPendingRAMUsage(alice, 400))

	gas, found := store.Gas.Find(&GasBalance{Pending: true, Owner: alice})
	require.True(found)
	require.Equal(uint64(900), gas.GSTUsage)
	require.NoError(m.VerifyAccountRAMUsage(alice))

	require.NoError(m.AddPendingRAMUsage(alice, 200))
	require.Equal(uint64(1100), gas.GSTUsage)
	err = m.VerifyAccountRAMUsage(alice)
	require.ErrorIs(err, ErrInsufficientGas)

	// RAM added while gas is off is not billed, so a later negative delta
	// larger than the gas usage saturates it at zero.
	m.SetGasLimits(false)
	require.NoError(m.AddPendingRAMUsage(alice, 500))
	m.SetGasLimits(true)
	require.NoError(m.AddPendingRAMUsage(alice, -1500))
	require.Zero(gas.GSTUsage)
}

// An unweighted (-1) account never fails the fair-share check
// and its extended accessor reports the unlimited sentinel.
func TestUnlimitedSentinel(t *testing.T) {
	require := require.New(t)
	m, _ := newTestManager(t)

	a := mustAccount(t, "whale")
	require.NoError(m.InitializeAccount(a))
	_, err := m.SetAccountLimits(a, -1, -1, -1)
	require.NoError(err)
	require.NoError(m.ProcessAccountLimitUpdates())

	require.NoError(m.AddTransactionUsage([]name.Account{a}, 1_000_000, 0, 0))

	limit, err := m.GetAccountCPULimitEx(a)
	require.NoError(err)
	require.Equal(AccountResourceLimit{Used: -1, Available: -1, Max: -1}, limit)
}

// RAM usage deltas that would overflow or underflow fail and
// leave the prior usage untouched.
func TestRAMUsageOverflowUnderflowPreservesState(t *testing.T) {
	require := require.New(t)
	m, store := newTestManager(t)

	a := mustAccount(t, "acc")
	require.NoError(m.InitializeAccount(a))

	err := m.AddPendingRAMUsage(a, -1)
	require.ErrorIs(err, ErrRAMUsageUnderflow)
	usage, _ := store.Usage.Find(&AccountUsage{Owner: a})
	require.Zero(usage.RAMUsage)

	require.NoError(m.AddPendingRAMUsage(a, 100))
	require.Equal(uint64(100), usage.RAMUsage)
}
