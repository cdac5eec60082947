// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

// Store holds the six tables the resource-limits engine reads and writes:
// the singleton config and state rows plus four per-account ordered
// tables. The manager borrows a Store for the duration of each call and
// never outlives it.
type Store struct {
	Config ResourceConfig
	State  ResourceState

	Limits        *Table[AccountLimits, *AccountLimits]
	Usage         *Table[AccountUsage, *AccountUsage]
	Gas           *Table[GasBalance, *GasBalance]
	GasActivation *Table[GasActivation, *GasActivation]
}

// NewStore creates an empty store with the given genesis configuration and
// starts the chain in "slow start": the virtual limits are pinned to their
// nominal max, the minimum of the elastic range.
func NewStore(cfg ResourceConfig) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := newEmptyStore()
	s.Config = cfg
	s.State.VirtualCPULimit = cfg.CPUParams.Max
	s.State.VirtualNetLimit = cfg.NetParams.Max
	return s, nil
}

// newEmptyStore allocates the four per-account tables without validating or
// populating a ResourceConfig/ResourceState, for callers (ReadSnapshot) that
// fill those singleton rows in from a different source afterward.
func newEmptyStore() *Store {
	return &Store{
		Limits:        NewTable[AccountLimits](),
		Usage:         NewTable[AccountUsage](),
		Gas:           NewTable[GasBalance](),
		GasActivation: NewTable[GasActivation](),
	}
}
