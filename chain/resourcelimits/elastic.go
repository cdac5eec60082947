// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"github.com/gstchain/gstio/chain/safemath"
)

// Ratio is a non-negative rational multiplier, applied in 128-bit space to
// avoid pre-multiplication overflow on 64-bit values — generalized from the
// Dimensions/fee-rate scaling in avalanchego's vms/components/fees.Manager.
type Ratio struct {
	Numerator   uint64
	Denominator uint64
}

// Validate reports whether the ratio is well-defined.
func (r Ratio) Validate() error {
	if r.Denominator == 0 {
		return fmt.Errorf("%w: ratio denominator must be positive", ErrParameterInvalid)
	}
	return nil
}

// mulRatio computes floor(x * r.Numerator / r.Denominator) in 128-bit space,
// saturating at math.MaxUint64 if the result does not fit in 64 bits.
func mulRatio(x uint64, r Ratio) uint64 {
	var xI, num, den uint256.Int
	xI.SetUint64(x)
	num.SetUint64(r.Numerator)
	den.SetUint64(r.Denominator)
	xI.Mul(&xI, &num)
	xI.Div(&xI, &den)
	if !xI.IsUint64() {
		return math.MaxUint64
	}
	return xI.Uint64()
}

// ElasticLimitParameters governs how a virtualized block-level resource
// limit expands under under-utilization and contracts under congestion,
// generalizing avalanchego's DynamicFeesConfig/UpdateCoefficient.
type ElasticLimitParameters struct {
	// Target is the desired per-window usage.
	Target uint64
	// Max is the nominal block maximum; the virtual limit never drops
	// below it.
	Max uint64
	// Periods is the number of aggregation periods folded into the
	// moving average.
	Periods uint32
	// MaxMultiplier bounds how far above Max the virtual limit may grow
	// while the chain is uncongested.
	MaxMultiplier uint32
	// ContractRate scales the limit down when avg > Target.
	ContractRate Ratio
	// ExpandRate scales the limit up otherwise.
	ExpandRate Ratio
}

// Validate requires Periods > 0 and both rates to have a positive
// denominator. Implementations may tighten this but must not loosen it.
func (p ElasticLimitParameters) Validate() error {
	if p.Periods == 0 {
		return fmt.Errorf("%w: elastic limit parameter periods cannot be zero", ErrParameterInvalid)
	}
	if err := p.ContractRate.Validate(); err != nil {
		return fmt.Errorf("%w: contract_rate is not a well-defined ratio", ErrParameterInvalid)
	}
	if err := p.ExpandRate.Validate(); err != nil {
		return fmt.Errorf("%w: expand_rate is not a well-defined ratio", ErrParameterInvalid)
	}
	return nil
}

// UpdateElasticLimit maps (current, avg, params) to a new virtual limit,
// contracting when avg exceeds the target and expanding otherwise, clamped
// to [params.Max, params.Max*params.MaxMultiplier].
func UpdateElasticLimit(current, avg uint64, params ElasticLimitParameters) uint64 {
	var result uint64
	if avg > params.Target {
		result = mulRatio(current, params.ContractRate)
	} else {
		result = mulRatio(current, params.ExpandRate)
	}

	upper, err := safemath.Mul64(params.Max, uint64(params.MaxMultiplier))
	if err != nil {
		upper = math.MaxUint64
	}
	return clampU64(result, params.Max, upper)
}

func clampU64(x, lo, hi uint64) uint64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
