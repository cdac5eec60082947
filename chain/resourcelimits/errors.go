// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import "errors"

// The resource-limits engine surfaces a closed set of error kinds so that
// callers can branch on failure class (e.g. to pick a rollback scope)
// instead of pattern-matching strings.
var (
	ErrParameterInvalid       = errors.New("resource limit parameter invalid")
	ErrAccountAlreadyExists   = errors.New("account already initialized")
	ErrCPUUsageExceeded       = errors.New("authorizing account has insufficient cpu resources")
	ErrNetUsageExceeded       = errors.New("authorizing account has insufficient net resources")
	ErrBlockResourceExhausted = errors.New("block has insufficient resources")
	ErrRAMUsageExceeded       = errors.New("account has insufficient ram")
	ErrRAMUsageOverflow       = errors.New("ram usage delta would overflow")
	ErrRAMUsageUnderflow      = errors.New("ram usage delta would underflow")
	ErrInsufficientGas        = errors.New("account has insufficient gas")
	ErrGasNotProvisioned      = errors.New("account has not provisioned gas")

	// ErrStateInconsistent indicates a violated internal invariant (a
	// committed total under/overflowed, or a row the schema guarantees
	// should exist is missing). The caller must halt; there is nothing
	// the manager can do to recover locally.
	ErrStateInconsistent = errors.New("resource limits state inconsistent")
)
