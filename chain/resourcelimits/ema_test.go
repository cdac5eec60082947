// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEMASteadyState(t *testing.T) {
	require := require.New(t)

	var e EMA
	const window = 20
	for ordinal := uint64(1); ordinal <= 100; ordinal++ {
		e.Add(10, ordinal, window)
	}
	require.InDelta(10, e.Average(), 1)
}

func TestEMADecaysWhenIdle(t *testing.T) {
	require := require.New(t)

	var e EMA
	const window = 20
	for ordinal := uint64(1); ordinal <= 20; ordinal++ {
		e.Add(100, ordinal, window)
	}
	busy := e.Average()
	require.Positive(busy)

	// Idle for a full window: the average must decay to zero.
	e.Add(0, 20+window, window)
	require.Zero(e.Average())
}

func TestEMAMonotonicDecayUnderIdle(t *testing.T) {
	require := require.New(t)

	var e EMA
	e.Add(1000, 1, 100)
	prev := e.Average()
	for ordinal := uint64(2); ordinal <= 50; ordinal++ {
		e.Add(0, ordinal, 100)
		cur := e.Average()
		require.LessOrEqual(cur, prev)
		prev = cur
	}
}

func TestEMAUsedInWindowCeilRoundsUp(t *testing.T) {
	require := require.New(t)

	var e EMA
	e.Add(1, 1, 3) // ValueEx = RatePrecision/3 = 333333; ValueEx*3 = 999999 is not a multiple of RatePrecision

	floor := e.usedInWindow(3)
	ceil := e.usedInWindowCeil(3)
	require.True(ceil.Cmp(&floor) > 0)
}
