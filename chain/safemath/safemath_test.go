// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package safemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	require := require.New(t)

	sum, err := Add64(1, 2)
	require.NoError(err)
	require.Equal(uint64(3), sum)

	_, err = Add64(math.MaxUint64, 1)
	require.ErrorIs(err, ErrOverflow)
}

func TestSub(t *testing.T) {
	require := require.New(t)

	diff, err := Sub[uint64](5, 2)
	require.NoError(err)
	require.Equal(uint64(3), diff)

	_, err = Sub[uint64](2, 5)
	require.ErrorIs(err, ErrUnderflow)
}

func TestMul(t *testing.T) {
	require := require.New(t)

	product, err := Mul64(3, 4)
	require.NoError(err)
	require.Equal(uint64(12), product)

	_, err = Mul64(math.MaxUint64, 2)
	require.ErrorIs(err, ErrOverflow)

	product, err = Mul64(0, math.MaxUint64)
	require.NoError(err)
	require.Zero(product)
}
