// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package name implements GST chain account-name identifiers: short,
// human-readable strings drawn from a restricted base32 charset, the same
// convention EOSIO-family chains use for account_name.
package name

import (
	"errors"
	"strings"
)

// charset is the set of characters legal in an account name, in encoding
// order. Names are at most maxLength characters.
const charset = ".12345abcdefghijklmnopqrstuvwxyz"

const maxLength = 13

var ErrInvalidAccountName = errors.New("invalid account name")

// Account identifies a chain account. The zero value is not a valid
// account; use Parse to construct one.
type Account string

// Well-known system accounts referenced by the resource-limits engine.
const (
	// System is the privileged account that owns governance actions such
	// as toggling gas metering.
	System Account = "gstio"
	// GasSystem is the account that collects and disburses GST gas; it is
	// exempt from its own gas-balance check.
	GasSystem Account = "gstio.gas"
)

// Parse validates s as an account name and returns it as an Account.
func Parse(s string) (Account, error) {
	if len(s) == 0 || len(s) > maxLength {
		return "", ErrInvalidAccountName
	}
	for _, r := range s {
		if !strings.ContainsRune(charset, r) {
			return "", ErrInvalidAccountName
		}
	}
	return Account(s), nil
}

// String returns the account name.
func (a Account) String() string {
	return string(a)
}

// Less provides a total order over accounts for ordered-table iteration.
func Less(a, b Account) bool {
	return a < b
}
