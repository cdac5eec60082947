// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wrappers provides small helper types shared across the codebase.
package wrappers

// Errs captures the first non-nil error passed to Add and ignores every
// subsequent one, so a sequence of fallible calls can be issued without a
// conditional after each one.
type Errs struct{ Err error }

// Errored reports whether Add has recorded an error.
func (errs *Errs) Errored() bool { return errs.Err != nil }

// Add records the first non-nil error among errors, if one has not
// already been recorded.
func (errs *Errs) Add(errors ...error) {
	if errs.Err == nil {
		for _, err := range errors {
			if err != nil {
				errs.Err = err
				break
			}
		}
	}
}
