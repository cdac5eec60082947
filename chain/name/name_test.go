// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package name

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	require := require.New(t)

	a, err := Parse("alice")
	require.NoError(err)
	require.Equal(Account("alice"), a)

	_, err = Parse("")
	require.ErrorIs(err, ErrInvalidAccountName)

	_, err = Parse("this.name.is.way.too.long")
	require.ErrorIs(err, ErrInvalidAccountName)

	_, err = Parse("Alice")
	require.ErrorIs(err, ErrInvalidAccountName)
}

func TestWellKnownAccounts(t *testing.T) {
	require := require.New(t)

	require.Equal("gstio", System.String())
	require.Equal("gstio.gas", GasSystem.String())
}
