// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testParams() ElasticLimitParameters {
	return ElasticLimitParameters{
		Target:        500,
		Max:           1000,
		Periods:       10,
		MaxMultiplier: 10,
		ContractRate:  Ratio{Numerator: 99, Denominator: 100},
		ExpandRate:    Ratio{Numerator: 1000, Denominator: 999},
	}
}

func TestUpdateElasticLimitExpandsBelowTarget(t *testing.T) {
	require := require.New(t)

	params := testParams()
	next := UpdateElasticLimit(params.Max, 0, params)
	require.Greater(next, params.Max)
}

func TestUpdateElasticLimitContractsAboveTarget(t *testing.T) {
	require := require.New(t)

	params := testParams()
	current := params.Max * uint64(params.MaxMultiplier)
	next := UpdateElasticLimit(current, params.Target+1, params)
	require.Less(next, current)
}

func TestUpdateElasticLimitNeverBelowMax(t *testing.T) {
	require := require.New(t)

	params := testParams()
	next := UpdateElasticLimit(params.Max, params.Target+1, params)
	require.GreaterOrEqual(next, params.Max)
}

func TestUpdateElasticLimitNeverAboveMaxMultiplier(t *testing.T) {
	require := require.New(t)

	params := testParams()
	upper := params.Max * uint64(params.MaxMultiplier)
	next := UpdateElasticLimit(upper, 0, params)
	require.LessOrEqual(next, upper)
}

func TestElasticLimitParametersValidate(t *testing.T) {
	require := require.New(t)

	params := testParams()
	require.NoError(params.Validate())

	bad := params
	bad.Periods = 0
	require.ErrorIs(bad.Validate(), ErrParameterInvalid)

	bad = params
	bad.ContractRate.Denominator = 0
	require.ErrorIs(bad.Validate(), ErrParameterInvalid)
}
