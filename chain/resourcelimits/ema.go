// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import "github.com/holiman/uint256"

// RatePrecision is the fixed-point scale applied to every EMA contribution.
const RatePrecision = uint64(1_000_000)

// EMA is a decaying sum of a non-negative integer stream sampled at
// arbitrary, non-decreasing integer ordinals (block numbers or sub-block
// time slots), generalized from avalanchego's utils/math.Averager (a
// continuous-time exponential moving average) to a discrete-ordinal,
// fixed-point accumulator.
//
// ValueEx holds the fixed-point numerator, scaled by RatePrecision, in
// 128-bit-safe arithmetic (backed by uint256.Int so intermediate products
// never silently wrap).
type EMA struct {
	LastOrdinal uint64
	ValueEx     uint256.Int
	Consumed    uint64
}

// Add folds units observed at ordinal into the average, using a window of
// window ordinal units. Callers must pass non-decreasing ordinals across
// calls; the window must be positive.
func (e *EMA) Add(units, ordinal, window uint64) {
	if ordinal > e.LastOrdinal {
		delta := ordinal - e.LastOrdinal
		if delta >= window {
			e.ValueEx.Clear()
		} else {
			var remaining, denom uint256.Int
			remaining.SetUint64(window - delta)
			denom.SetUint64(window)
			e.ValueEx.Mul(&e.ValueEx, &remaining)
			e.ValueEx.Div(&e.ValueEx, &denom)
		}
	}

	var contribution, precision, denom uint256.Int
	contribution.SetUint64(units)
	precision.SetUint64(RatePrecision)
	denom.SetUint64(window)
	contribution.Mul(&contribution, &precision)
	contribution.Div(&contribution, &denom)
	e.ValueEx.Add(&e.ValueEx, &contribution)

	e.LastOrdinal = ordinal
	e.Consumed = units
}

// Average returns the current average, rounded down.
func (e *EMA) Average() uint64 {
	var precision, result uint256.Int
	precision.SetUint64(RatePrecision)
	result.Div(&e.ValueEx, &precision)
	return result.Uint64()
}

// usedInWindow returns floor(e.ValueEx * window / RatePrecision), the
// amount of the resource consumed within the window under the current
// average, as used by the per-transaction fair-share check.
func (e *EMA) usedInWindow(window uint64) uint256.Int {
	var w, precision, used uint256.Int
	w.SetUint64(window)
	precision.SetUint64(RatePrecision)
	used.Mul(&e.ValueEx, &w)
	used.Div(&used, &precision)
	return used
}

// usedInWindowCeil is usedInWindow but rounds up, as required by the
// account resource-limit accessors.
func (e *EMA) usedInWindowCeil(window uint64) uint256.Int {
	var w, precision, used uint256.Int
	w.SetUint64(window)
	precision.SetUint64(RatePrecision)
	used.Mul(&e.ValueEx, &w)
	return divCeil(used, precision)
}

// divCeil returns ceil(a / b) for b != 0.
func divCeil(a, b uint256.Int) uint256.Int {
	var quotient, remainder uint256.Int
	quotient.Div(&a, &b)
	remainder.Mod(&a, &b)
	if !remainder.IsZero() {
		var one uint256.Int
		one.SetOne()
		quotient.Add(&quotient, &one)
	}
	return quotient
}
