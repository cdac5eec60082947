// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import "github.com/gstchain/gstio/chain/name"

// ResourceConfig is the singleton governance row controlling the elastic
// limit behavior and per-account averaging windows. A negative ram_bytes,
// net_weight, or cpu_weight elsewhere in this schema encodes "unlimited"
// rather than using a tagged Limited|Unlimited type.
type ResourceConfig struct {
	CPUParams ElasticLimitParameters
	NetParams ElasticLimitParameters

	// AccountCPUWindow and AccountNetWindow are the per-account sliding
	// window lengths (in ordinal units) used by the CPU and NET EMAs.
	AccountCPUWindow uint64
	AccountNetWindow uint64

	// GasPerTxToll is the per-transaction GST gas toll charged by
	// VerifyAccountGSTUsage.
	GasPerTxToll uint64
}

// Validate checks the two elastic-limit parameter sets and the window
// lengths.
func (c ResourceConfig) Validate() error {
	if err := c.CPUParams.Validate(); err != nil {
		return err
	}
	if err := c.NetParams.Validate(); err != nil {
		return err
	}
	if c.AccountCPUWindow == 0 || c.AccountNetWindow == 0 {
		return ErrParameterInvalid
	}
	return nil
}

// ResourceState is the singleton row tracking the aggregate chain-wide
// resource totals and the current virtualized block limits.
type ResourceState struct {
	AverageBlockCPUUsage EMA
	AverageBlockNetUsage EMA

	PendingCPUUsage uint64
	PendingNetUsage uint64

	TotalCPUWeight uint64
	TotalNetWeight uint64
	TotalRAMBytes  uint64

	VirtualCPULimit uint64
	VirtualNetLimit uint64
}

// AccountLimits is a per-account row keyed by (pending, owner); the
// committed row (pending=false) is always present once an account has been
// initialized, and a pending row is created lazily by SetAccountLimits and
// removed by ProcessAccountLimitUpdates at the next block boundary.
//
// InitializeAccount creates the committed row with all three fields at -1
// (unlimited): a fresh account is unweighted and unbounded until a
// governance action calls SetAccountLimits.
type AccountLimits struct {
	Pending   bool
	Owner     name.Account
	RAMBytes  int64
	NetWeight int64
	CPUWeight int64
}

func (r *AccountLimits) rowKey() Key { return Key{Pending: r.Pending, Owner: r.Owner} }

// AccountUsage is a per-account row keyed by owner alone, tracking the
// sliding-window CPU and NET moving averages and cumulative RAM usage.
type AccountUsage struct {
	Owner    name.Account
	NetUsage EMA
	CPUUsage EMA
	RAMUsage uint64
}

func (u *AccountUsage) rowKey() Key { return Key{Pending: false, Owner: u.Owner} }

// GasBalance is the GST gas overlay's per-account byte budget. It is keyed
// by (pending, owner) for schema uniformity with AccountLimits, but —
// unlike AccountLimits — its pending row is never promoted to a committed
// row by ProcessAccountLimitUpdates; every read and write targets the
// pending row directly.
type GasBalance struct {
	Pending  bool
	Owner    name.Account
	GSTBytes int64
	GSTUsage uint64
}

func (g *GasBalance) rowKey() Key { return Key{Pending: g.Pending, Owner: g.Owner} }

// GasActivation is the singleton (modeled as a one-row table keyed like the
// others for uniformity) flag toggling whether the GST gas overlay is
// enforced at all. Its owner is always name.System.
type GasActivation struct {
	Pending      bool
	Owner        name.Account
	IsActivation bool
}

func (g *GasActivation) rowKey() Key { return Key{Pending: g.Pending, Owner: g.Owner} }

// AccountResourceLimit is the sentinel-aware view returned by the
// GetAccount{CPU,Net}LimitEx accessors: {-1,-1,-1} means the account is
// unweighted (unlimited) or no accounts carry weight yet.
type AccountResourceLimit struct {
	Used      int64
	Available int64
	Max       int64
}

var unlimitedAccountResourceLimit = AccountResourceLimit{Used: -1, Available: -1, Max: -1}
