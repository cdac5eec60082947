// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gstchain/gstio/chain/name"
	"github.com/gstchain/gstio/chain/resourcelimits"
)

// fixture is the JSON-on-disk shape of a Store, used by the CLI in place
// of the binary snapshot codec so a fixture file stays easy to hand-edit
// for a demo or a bug report.
type fixture struct {
	Config resourcelimits.ResourceConfig `json:"config"`
	State  resourcelimits.ResourceState  `json:"state"`
	Limits []resourcelimits.AccountLimits `json:"limits"`
	Usage  []resourcelimits.AccountUsage  `json:"usage"`
	Gas    []resourcelimits.GasBalance    `json:"gas"`
	GasActivation []resourcelimits.GasActivation `json:"gasActivation"`
}

func defaultConfig() resourcelimits.ResourceConfig {
	elastic := resourcelimits.ElasticLimitParameters{
		Target: 500, Max: 1000, Periods: 10, MaxMultiplier: 1000,
		ContractRate: resourcelimits.Ratio{Numerator: 99, Denominator: 100},
		ExpandRate:   resourcelimits.Ratio{Numerator: 1000, Denominator: 999},
	}
	return resourcelimits.ResourceConfig{
		CPUParams:        elastic,
		NetParams:        elastic,
		AccountCPUWindow: 60,
		AccountNetWindow: 60,
		GasPerTxToll:     100,
	}
}

// loadStore reads a fixture file at path and rebuilds a Store from it. A
// missing file yields a fresh genesis store under defaultConfig, so
// init-account can be the first command run against a new state file.
func loadStore(path string) (*resourcelimits.Store, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return resourcelimits.NewStore(defaultConfig())
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file %q: %w", path, err)
	}

	var fx fixture
	if err := json.Unmarshal(b, &fx); err != nil {
		return nil, fmt.Errorf("parsing state file %q: %w", path, err)
	}

	store, err := resourcelimits.NewStore(fx.Config)
	if err != nil {
		return nil, fmt.Errorf("rebuilding store from %q: %w", path, err)
	}
	store.State = fx.State
	for _, row := range fx.Limits {
		row := row
		store.Limits.Create(func(dst *resourcelimits.AccountLimits) { *dst = row })
	}
	for _, row := range fx.Usage {
		row := row
		store.Usage.Create(func(dst *resourcelimits.AccountUsage) { *dst = row })
	}
	for _, row := range fx.Gas {
		row := row
		store.Gas.Create(func(dst *resourcelimits.GasBalance) { *dst = row })
	}
	for _, row := range fx.GasActivation {
		row := row
		store.GasActivation.Create(func(dst *resourcelimits.GasActivation) { *dst = row })
	}
	return store, nil
}

// saveStore writes store to path as a fixture file.
func saveStore(path string, store *resourcelimits.Store) error {
	fx := fixture{Config: store.Config, State: store.State}
	store.Limits.AscendFrom(&resourcelimits.AccountLimits{}, func(row *resourcelimits.AccountLimits) bool {
		fx.Limits = append(fx.Limits, *row)
		return true
	})
	store.Usage.AscendFrom(&resourcelimits.AccountUsage{}, func(row *resourcelimits.AccountUsage) bool {
		fx.Usage = append(fx.Usage, *row)
		return true
	})
	store.Gas.AscendFrom(&resourcelimits.GasBalance{}, func(row *resourcelimits.GasBalance) bool {
		fx.Gas = append(fx.Gas, *row)
		return true
	})
	store.GasActivation.AscendFrom(&resourcelimits.GasActivation{}, func(row *resourcelimits.GasActivation) bool {
		fx.GasActivation = append(fx.GasActivation, *row)
		return true
	})

	b, err := json.MarshalIndent(fx, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state file: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

func parseAccount(s string) (name.Account, error) {
	return name.Parse(s)
}
