// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package resourcelimits implements the per-account CPU/NET/RAM resource
// accounting and elastic rate-limiting engine, plus the GST gas overlay,
// generalized from gstio/chain/resource_limits.cpp and restructured in the
// idiom of avalanchego's vms/components/fees.Manager.
package resourcelimits

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/gstchain/gstio/chain/name"
	"github.com/gstchain/gstio/chain/safemath"
)

// Manager orchestrates account initialization, per-transaction admission,
// per-block commit, and the GST gas overlay against a borrowed Store. It
// holds no state of its own beyond a logger: all mutations land in the
// Store so that the caller's storage transaction is the sole unit of
// rollback.
type Manager struct {
	store *Store
	log   *zap.Logger
}

// NewManager returns a Manager operating over store. log may be nil, in
// which case a no-op logger is used.
func NewManager(store *Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, log: log}
}

// InitializeAccount creates the committed AccountLimits and AccountUsage
// rows for a new account.
func (m *Manager) InitializeAccount(owner name.Account) error {
	if _, found := m.store.Limits.Find(&AccountLimits{Pending: false, Owner: owner}); found {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyExists, owner)
	}
	if _, found := m.store.Usage.Find(&AccountUsage{Owner: owner}); found {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyExists, owner)
	}

	m.store.Limits.Create(func(r *AccountLimits) {
		r.Pending = false
		r.Owner = owner
		r.RAMBytes = -1
		r.NetWeight = -1
		r.CPUWeight = -1
	})
	m.store.Usage.Create(func(u *AccountUsage) {
		u.Owner = owner
	})
	return nil
}

// SetBlockParameters validates and replaces the ResourceConfig's elastic
// limit parameters. It has no effect on the current virtual limits until
// the next ProcessBlockUsage.
func (m *Manager) SetBlockParameters(cpuParams, netParams ElasticLimitParameters) error {
	if err := cpuParams.Validate(); err != nil {
		return err
	}
	if err := netParams.Validate(); err != nil {
		return err
	}
	m.store.Config.CPUParams = cpuParams
	m.store.Config.NetParams = netParams
	return nil
}

// UpdateAccountUsage ages each account's CPU and NET moving averages at
// ordinal without attributing any new usage to them. It is used to let a
// dormant account's average decay before it is billed again.
func (m *Manager) UpdateAccountUsage(accounts []name.Account, ordinal uint64) error {
	cfg := m.store.Config
	for _, owner := range accounts {
		usage, found := m.store.Usage.Find(&AccountUsage{Owner: owner})
		if !found {
			return fmt.Errorf("%w: usage row missing for %s", ErrStateInconsistent, owner)
		}
		usage.NetUsage.Add(0, ordinal, cfg.AccountNetWindow)
		usage.CPUUsage.Add(0, ordinal, cfg.AccountCPUWindow)
	}
	return nil
}

// AddTransactionUsage accumulates cpu and net usage at ordinal against each
// authorizing account, checks each account's stake-weighted fair share, and
// folds the usage into the block's pending totals.
//
// Every EMA update this call makes is persisted even if a later step
// fails: the caller's storage transaction, not this method, is the unit of
// rollback.
func (m *Manager) AddTransactionUsage(accounts []name.Account, cpu, net, ordinal uint64) error {
	cfg := m.store.Config
	state := &m.store.State

	for _, owner := range accounts {
		usage, found := m.store.Usage.Find(&AccountUsage{Owner: owner})
		if !found {
			return fmt.Errorf("%w: usage row missing for %s", ErrStateInconsistent, owner)
		}
		_, netWeight, cpuWeight, err := m.getAccountLimits(owner)
		if err != nil {
			return err
		}

		usage.CPUUsage.Add(cpu, ordinal, cfg.AccountCPUWindow)
		usage.NetUsage.Add(net, ordinal, cfg.AccountNetWindow)

		if cpuWeight >= 0 && state.TotalCPUWeight > 0 {
			if err := checkFairShare(state.VirtualCPULimit, cfg.AccountCPUWindow, &usage.CPUUsage, uint64(cpuWeight), state.TotalCPUWeight); err != nil {
				return fmt.Errorf("%w: authorizing account %q has insufficient cpu resources", ErrCPUUsageExceeded, owner)
			}
		}
		if netWeight >= 0 && state.TotalNetWeight > 0 {
			if err := checkFairShare(state.VirtualNetLimit, cfg.AccountNetWindow, &usage.NetUsage, uint64(netWeight), state.TotalNetWeight); err != nil {
				return fmt.Errorf("%w: authorizing account %q has insufficient net resources", ErrNetUsageExceeded, owner)
			}
		}
	}

	newPendingCPU, err := safemath.Add64(state.PendingCPUUsage, cpu)
	if err != nil {
		return fmt.Errorf("%w: block cpu usage overflow", ErrBlockResourceExhausted)
	}
	newPendingNet, err := safemath.Add64(state.PendingNetUsage, net)
	if err != nil {
		return fmt.Errorf("%w: block net usage overflow", ErrBlockResourceExhausted)
	}
	state.PendingCPUUsage = newPendingCPU
	state.PendingNetUsage = newPendingNet

	if state.PendingCPUUsage > cfg.CPUParams.Max {
		m.log.Warn("block cpu usage exceeds nominal max",
			zap.Uint64("pendingCPU", state.PendingCPUUsage),
			zap.Uint64("max", cfg.CPUParams.Max),
		)
		return fmt.Errorf("%w: block has insufficient cpu resources", ErrBlockResourceExhausted)
	}
	if state.PendingNetUsage > cfg.NetParams.Max {
		m.log.Warn("block net usage exceeds nominal max",
			zap.Uint64("pendingNet", state.PendingNetUsage),
			zap.Uint64("max", cfg.NetParams.Max),
		)
		return fmt.Errorf("%w: block has insufficient net resources", ErrBlockResourceExhausted)
	}
	return nil
}

// checkFairShare returns a non-nil error if usage exceeds the account's
// stake-weighted share of the virtual capacity within window.
func checkFairShare(virtualLimit, window uint64, usage *EMA, weight, totalWeight uint64) error {
	var capacity, weightI, totalWeightI uint256.Int
	capacity.SetUint64(virtualLimit)
	var windowI uint256.Int
	windowI.SetUint64(window)
	capacity.Mul(&capacity, &windowI)

	weightI.SetUint64(weight)
	totalWeightI.SetUint64(totalWeight)

	var maxShare uint256.Int
	maxShare.Mul(&capacity, &weightI)
	maxShare.Div(&maxShare, &totalWeightI)

	used := usage.usedInWindow(window)
	if used.Cmp(&maxShare) > 0 {
		return ErrCPUUsageExceeded // sentinel value, caller replaces with the right wrapped error
	}
	return nil
}

// AddPendingRAMUsage adjusts an account's cumulative RAM usage by delta,
// failing if the adjustment would overflow or underflow a uint64. If gas
// metering is active, it also folds delta into the account's GST gas
// balance, saturating the balance's usage at zero for a net-negative delta.
func (m *Manager) AddPendingRAMUsage(owner name.Account, delta int64) error {
	if delta == 0 {
		return nil
	}

	usage, found := m.store.Usage.Find(&AccountUsage{Owner: owner})
	if !found {
		return fmt.Errorf("%w: usage row missing for %s", ErrStateInconsistent, owner)
	}

	if delta > 0 {
		newUsage, err := safemath.Add64(usage.RAMUsage, uint64(delta))
		if err != nil {
			return fmt.Errorf("%w: account %q ram usage delta would overflow", ErrRAMUsageOverflow, owner)
		}
		usage.RAMUsage = newUsage
	} else {
		dec := uint64(-delta)
		if dec > usage.RAMUsage {
			return fmt.Errorf("%w: account %q ram usage delta would underflow", ErrRAMUsageUnderflow, owner)
		}
		usage.RAMUsage -= dec
	}

	if !m.IsGasActive() {
		return nil
	}

	pending, found := m.store.Gas.Find(&GasBalance{Pending: true, Owner: owner})
	if found {
		newUsage := int64(pending.GSTUsage) + delta
		if newUsage < 0 {
			pending.GSTUsage = 0
		} else {
			pending.GSTUsage = uint64(newUsage)
		}
		return nil
	}

	m.store.Gas.Create(func(g *GasBalance) {
		g.Pending = true
		g.Owner = owner
		g.GSTBytes = 0
		if delta > 0 {
			g.GSTUsage = uint64(delta)
		} else {
			g.GSTUsage = 0
		}
	})
	return nil
}

// VerifyAccountRAMUsage asserts that an account's committed RAM usage does
// not exceed its limit, and — if gas metering is active — that its GST
// gas balance has not been exhausted.
func (m *Manager) VerifyAccountRAMUsage(owner name.Account) error {
	ramBytes, _, _, err := m.getAccountLimits(owner)
	if err != nil {
		return err
	}
	usage, found := m.store.Usage.Find(&AccountUsage{Owner: owner})
	if !found {
		return fmt.Errorf("%w: usage row missing for %s", ErrStateInconsistent, owner)
	}

	if ramBytes >= 0 && usage.RAMUsage > uint64(ramBytes) {
		return fmt.Errorf("%w: account %q needs %d bytes, has %d", ErrRAMUsageExceeded, owner, usage.RAMUsage, ramBytes)
	}

	if !m.IsGasActive() {
		return nil
	}

	pending, found := m.store.Gas.Find(&GasBalance{Pending: true, Owner: owner})
	if !found {
		if owner != name.GasSystem {
			return fmt.Errorf("%w: account %q must provision gas before this operation", ErrGasNotProvisioned, owner)
		}
		return nil
	}

	if pending.GSTBytes >= 0 && owner != name.GasSystem && owner != name.System {
		if pending.GSTUsage > uint64(pending.GSTBytes) {
			return fmt.Errorf("%w: account %q needs %d gas, has %d", ErrInsufficientGas, owner, pending.GSTUsage, pending.GSTBytes)
		}
	}
	return nil
}

// VerifyAccountGSTUsage charges the fixed per-transaction GST gas toll. An
// account with an unlimited (negative) GST byte budget is never charged.
func (m *Manager) VerifyAccountGSTUsage(owner name.Account) error {
	pending, found := m.store.Gas.Find(&GasBalance{Pending: true, Owner: owner})
	if !found {
		return fmt.Errorf("%w: account %q must provision gas before this operation", ErrGasNotProvisioned, owner)
	}
	if pending.GSTBytes < 0 {
		return nil
	}

	toll := m.store.Config.GasPerTxToll
	needed, err := safemath.Add64(pending.GSTUsage, toll)
	if err != nil || uint64(pending.GSTBytes) < needed {
		return fmt.Errorf("%w: account %q needs %d gas, has %d remaining", ErrInsufficientGas, owner, toll, uint64(pending.GSTBytes)-pending.GSTUsage)
	}
	pending.GSTUsage = needed
	return nil
}

// IsGasActive reports whether the GST gas overlay is currently enforced.
func (m *Manager) IsGasActive() bool {
	activation, found := m.store.GasActivation.Find(&GasActivation{Pending: true, Owner: name.System})
	if !found {
		return false
	}
	return activation.IsActivation
}

// SetAccountLimits stages new RAM/NET/CPU limits for owner in a pending
// row, creating it (from the committed values) if absent. It returns true
// iff the new ram_bytes represents a decrease, under the convention that a
// negative value means "unlimited".
func (m *Manager) SetAccountLimits(owner name.Account, ramBytes, netWeight, cpuWeight int64) (bool, error) {
	pending, found := m.store.Limits.Find(&AccountLimits{Pending: true, Owner: owner})
	if !found {
		committed, ok := m.store.Limits.Find(&AccountLimits{Pending: false, Owner: owner})
		if !ok {
			return false, fmt.Errorf("%w: account %q not initialized", ErrStateInconsistent, owner)
		}
		pending = m.store.Limits.Create(func(r *AccountLimits) {
			r.Pending = true
			r.Owner = owner
			r.RAMBytes = committed.RAMBytes
			r.NetWeight = committed.NetWeight
			r.CPUWeight = committed.CPUWeight
		})
	}

	var decreased bool
	if ramBytes >= 0 {
		decreased = pending.RAMBytes < 0 || ramBytes < pending.RAMBytes
	}

	pending.RAMBytes = ramBytes
	pending.NetWeight = netWeight
	pending.CPUWeight = cpuWeight
	return decreased, nil
}

// SetGSTLimits stages a new GST gas byte budget for owner, creating a
// pending row if absent. A decrease that would strand in-flight usage
// fails with ErrInsufficientGas; increases — including from "unlimited"
// (negative) to a finite value — are never rejected.
func (m *Manager) SetGSTLimits(owner name.Account, gstBytes int64) (bool, error) {
	pending, found := m.store.Gas.Find(&GasBalance{Pending: true, Owner: owner})
	if !found {
		pending = m.store.Gas.Create(func(g *GasBalance) {
			g.Pending = true
			g.Owner = owner
			g.GSTBytes = gstBytes
			g.GSTUsage = 0
		})
	}

	old := pending.GSTBytes
	if old > gstBytes {
		if gstBytes < int64(pending.GSTUsage) {
			return false, fmt.Errorf("%w: account %q has %d gas remaining, %d in use", ErrInsufficientGas, owner, old-int64(pending.GSTUsage), pending.GSTUsage)
		}
	}

	var decreased bool
	if gstBytes >= 0 {
		decreased = old < 0 || gstBytes < old
	}
	pending.GSTBytes = gstBytes
	return decreased, nil
}

// SetGasLimits toggles the chain-wide GST gas activation flag.
func (m *Manager) SetGasLimits(flag bool) {
	activation, found := m.store.GasActivation.Find(&GasActivation{Pending: true, Owner: name.System})
	if !found {
		m.store.GasActivation.Create(func(g *GasActivation) {
			g.Pending = true
			g.Owner = name.System
			g.IsActivation = flag
		})
		return
	}
	activation.IsActivation = flag
}

// getAccountLimits resolves an account's current intended limits, reading
// the pending row if present and falling back to the committed row
// otherwise (see spec §4.4).
func (m *Manager) getAccountLimits(owner name.Account) (ramBytes, netWeight, cpuWeight int64, err error) {
	if pending, found := m.store.Limits.Find(&AccountLimits{Pending: true, Owner: owner}); found {
		return pending.RAMBytes, pending.NetWeight, pending.CPUWeight, nil
	}
	committed, found := m.store.Limits.Find(&AccountLimits{Pending: false, Owner: owner})
	if !found {
		return 0, 0, 0, fmt.Errorf("%w: account %q not initialized", ErrStateInconsistent, owner)
	}
	return committed.RAMBytes, committed.NetWeight, committed.CPUWeight, nil
}

// GetAccountLimits is the exported form of getAccountLimits.
func (m *Manager) GetAccountLimits(owner name.Account) (ramBytes, netWeight, cpuWeight int64, err error) {
	return m.getAccountLimits(owner)
}

// GetAccountRAMUsage returns an account's cumulative committed RAM usage.
func (m *Manager) GetAccountRAMUsage(owner name.Account) (uint64, error) {
	usage, found := m.store.Usage.Find(&AccountUsage{Owner: owner})
	if !found {
		return 0, fmt.Errorf("%w: usage row missing for %s", ErrStateInconsistent, owner)
	}
	return usage.RAMUsage, nil
}

// ProcessAccountLimitUpdates commits every pending AccountLimits row onto
// its committed counterpart, updating the chain-wide totals, then removes
// the pending row. Rows are visited in (pending=true, owner) order, a
// lower-bound-then-break iteration that relies on every committed row
// sorting before every pending row (see Key).
func (m *Manager) ProcessAccountLimitUpdates() error {
	var pendingRows []*AccountLimits
	m.store.Limits.AscendFrom(&AccountLimits{Pending: true}, func(row *AccountLimits) bool {
		if !row.Pending {
			return false
		}
		pendingRows = append(pendingRows, row)
		return true
	})

	state := &m.store.State
	for _, pr := range pendingRows {
		committed, found := m.store.Limits.Find(&AccountLimits{Pending: false, Owner: pr.Owner})
		if !found {
			return fmt.Errorf("%w: no committed limits row for %q", ErrStateInconsistent, pr.Owner)
		}

		if err := updateStateAndValue(&state.TotalRAMBytes, &committed.RAMBytes, pr.RAMBytes); err != nil {
			m.log.Error("resource totals inconsistent", zap.String("field", "ram_bytes"), zap.String("owner", string(pr.Owner)), zap.Error(err))
			return fmt.Errorf("%w: ram_bytes for %q: %v", ErrStateInconsistent, pr.Owner, err)
		}
		if err := updateStateAndValue(&state.TotalCPUWeight, &committed.CPUWeight, pr.CPUWeight); err != nil {
			m.log.Error("resource totals inconsistent", zap.String("field", "cpu_weight"), zap.String("owner", string(pr.Owner)), zap.Error(err))
			return fmt.Errorf("%w: cpu_weight for %q: %v", ErrStateInconsistent, pr.Owner, err)
		}
		if err := updateStateAndValue(&state.TotalNetWeight, &committed.NetWeight, pr.NetWeight); err != nil {
			m.log.Error("resource totals inconsistent", zap.String("field", "net_weight"), zap.String("owner", string(pr.Owner)), zap.Error(err))
			return fmt.Errorf("%w: net_weight for %q: %v", ErrStateInconsistent, pr.Owner, err)
		}

		m.store.Limits.Remove(pr)
	}
	return nil
}

// updateStateAndValue reverts value's old contribution to total (if
// positive) and applies pendingValue's new contribution (if positive),
// then overwrites value.
func updateStateAndValue(total *uint64, value *int64, pendingValue int64) error {
	if *value > 0 {
		if *total < uint64(*value) {
			return fmt.Errorf("underflow when reverting old value")
		}
		*total -= uint64(*value)
	}
	if pendingValue > 0 {
		newTotal, err := safemath.Add64(*total, uint64(pendingValue))
		if err != nil {
			return fmt.Errorf("overflow when applying new value")
		}
		*total = newTotal
	}
	*value = pendingValue
	return nil
}

// ProcessBlockUsage folds the block's pending CPU and NET usage into the
// chain-wide moving averages, recomputes the virtual block limits, and
// resets the pending counters to zero. Call exactly once per block.
func (m *Manager) ProcessBlockUsage(blockNum uint64) {
	state := &m.store.State
	cfg := m.store.Config

	state.AverageBlockCPUUsage.Add(state.PendingCPUUsage, blockNum, uint64(cfg.CPUParams.Periods))
	state.VirtualCPULimit = UpdateElasticLimit(state.VirtualCPULimit, state.AverageBlockCPUUsage.Average(), cfg.CPUParams)
	state.PendingCPUUsage = 0

	state.AverageBlockNetUsage.Add(state.PendingNetUsage, blockNum, uint64(cfg.NetParams.Periods))
	state.VirtualNetLimit = UpdateElasticLimit(state.VirtualNetLimit, state.AverageBlockNetUsage.Average(), cfg.NetParams)
	state.PendingNetUsage = 0
}
