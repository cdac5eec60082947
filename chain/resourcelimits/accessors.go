// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/gstchain/gstio/chain/name"
)

// GetVirtualBlockCPULimit returns the current elastic CPU capacity for a
// block, before any per-account fair-share division.
func (m *Manager) GetVirtualBlockCPULimit() uint64 {
	return m.store.State.VirtualCPULimit
}

// GetVirtualBlockNetLimit returns the current elastic NET capacity for a
// block, before any per-account fair-share division.
func (m *Manager) GetVirtualBlockNetLimit() uint64 {
	return m.store.State.VirtualNetLimit
}

// GetBlockCPULimit returns the nominal (non-elastic) CPU capacity still
// available in the current block, i.e. params.max minus what has already
// been charged to pending_cpu_usage this block.
func (m *Manager) GetBlockCPULimit() uint64 {
	return m.store.Config.CPUParams.Max - m.store.State.PendingCPUUsage
}

// GetBlockNetLimit is the NET analogue of GetBlockCPULimit.
func (m *Manager) GetBlockNetLimit() uint64 {
	return m.store.Config.NetParams.Max - m.store.State.PendingNetUsage
}

// GetAccountCPULimit returns an account's currently available CPU budget,
// or -1 if the account (or the chain as a whole) carries no CPU weight.
func (m *Manager) GetAccountCPULimit(owner name.Account) (int64, error) {
	l, err := m.GetAccountCPULimitEx(owner)
	if err != nil {
		return 0, err
	}
	return l.Available, nil
}

// GetAccountNetLimit is the NET analogue of GetAccountCPULimit.
func (m *Manager) GetAccountNetLimit(owner name.Account) (int64, error) {
	l, err := m.GetAccountNetLimitEx(owner)
	if err != nil {
		return 0, err
	}
	return l.Available, nil
}

// GetAccountCPULimitEx returns the full used/available/max view of an
// account's CPU budget, generalizing
// resource_limits_manager::get_account_cpu_limit_ex.
func (m *Manager) GetAccountCPULimitEx(owner name.Account) (AccountResourceLimit, error) {
	_, _, cpuWeight, err := m.getAccountLimits(owner)
	if err != nil {
		return AccountResourceLimit{}, err
	}
	usage, found := m.store.Usage.Find(&AccountUsage{Owner: owner})
	if !found {
		return AccountResourceLimit{}, ErrStateInconsistent
	}
	return accountResourceLimit(
		cpuWeight, m.store.State.TotalCPUWeight,
		m.store.State.VirtualCPULimit, m.store.Config.AccountCPUWindow,
		&usage.CPUUsage,
	), nil
}

// GetAccountNetLimitEx is the NET analogue of GetAccountCPULimitEx.
func (m *Manager) GetAccountNetLimitEx(owner name.Account) (AccountResourceLimit, error) {
	_, netWeight, _, err := m.getAccountLimits(owner)
	if err != nil {
		return AccountResourceLimit{}, err
	}
	usage, found := m.store.Usage.Find(&AccountUsage{Owner: owner})
	if !found {
		return AccountResourceLimit{}, ErrStateInconsistent
	}
	return accountResourceLimit(
		netWeight, m.store.State.TotalNetWeight,
		m.store.State.VirtualNetLimit, m.store.Config.AccountNetWindow,
		&usage.NetUsage,
	), nil
}

// accountResourceLimit computes the used/available/max triple for a single
// weighted resource, returning the unlimited sentinel when the account (or
// the chain as a whole) carries no weight for it.
func accountResourceLimit(weight int64, totalWeight, virtualLimit, window uint64, usage *EMA) AccountResourceLimit {
	if weight < 0 || totalWeight == 0 {
		return unlimitedAccountResourceLimit
	}

	var capacity, windowI, weightI, totalWeightI uint256.Int
	capacity.SetUint64(virtualLimit)
	windowI.SetUint64(window)
	capacity.Mul(&capacity, &windowI)
	weightI.SetUint64(uint64(weight))
	totalWeightI.SetUint64(totalWeight)

	var maxShare uint256.Int
	maxShare.Mul(&capacity, &weightI)
	maxShare.Div(&maxShare, &totalWeightI)

	used := usage.usedInWindowCeil(window)

	var available uint256.Int
	if used.Cmp(&maxShare) > 0 {
		available.Clear()
	} else {
		available.Sub(&maxShare, &used)
	}

	return AccountResourceLimit{
		Used:      int64Clamped(used),
		Available: int64Clamped(available),
		Max:       int64Clamped(maxShare),
	}
}

// int64Clamped converts a uint256.Int to an int64, clamping to
// math.MaxInt64 rather than wrapping if the value is too large to
// represent — a resource share this large indicates a misconfigured chain,
// not a value accessor code should panic or silently truncate on.
func int64Clamped(x uint256.Int) int64 {
	var maxI64 uint256.Int
	maxI64.SetUint64(math.MaxInt64)
	if x.Cmp(&maxI64) > 0 {
		return math.MaxInt64
	}
	return int64(x.Uint64())
}
