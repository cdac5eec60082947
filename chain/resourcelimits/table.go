// Copyright (C) 2019-2025, GST Chain, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcelimits

import (
	"github.com/google/btree"

	"github.com/gstchain/gstio/chain/name"
)

// degree is the btree.BTreeG branching factor, matching the degree used by
// avalanchego's vms/platformvm/state package for its staker indices.
const degree = 32

// Key is the (pending, owner) index every per-account table is ordered by.
//
// Ordering places every committed (pending=false) row before every pending
// (pending=true) row, then orders within each group by owner. This is the
// exact shape the limit-commit loop relies on: a lower-bound probe for
// pending=true lands on the first pending row, and every row from there
// to the end of the table is pending.
type Key struct {
	Pending bool
	Owner   name.Account
}

func lessKey(a, b Key) bool {
	if a.Pending != b.Pending {
		return !a.Pending
	}
	return name.Less(a.Owner, b.Owner)
}

// keyed is implemented by every row type stored in a Table.
type keyed interface {
	rowKey() Key
}

// rowPtr constrains a Table's pointer-receiver type: it must be a pointer
// to V and implement keyed.
type rowPtr[V any] interface {
	*V
	keyed
}

// Table is an ordered keyed table abstracting the chain's generic
// multi-index storage engine down to exactly the operations the
// resource-limits engine needs: create, find, modify, remove, and ordered
// iteration from a lower bound. It is backed by a google/btree.BTreeG, the
// same ordered-tree structure avalanchego's platformvm state package uses
// for its staker indices (vms/platformvm/state/stakers.go).
//
// Table is not safe for concurrent use; the resource-limits engine is
// invoked from a single-threaded, cooperative transaction-application loop
// and relies on the caller to serialize access.
type Table[V any, PV rowPtr[V]] struct {
	tree *btree.BTreeG[PV]
}

// NewTable constructs an empty table.
func NewTable[V any, PV rowPtr[V]]() *Table[V, PV] {
	less := func(a, b PV) bool { return lessKey(a.rowKey(), b.rowKey()) }
	return &Table[V, PV]{tree: btree.NewG[PV](degree, less)}
}

// Create builds a new row via init, inserts it, and returns it.
func (t *Table[V, PV]) Create(init func(PV)) PV {
	row := PV(new(V))
	init(row)
	t.tree.ReplaceOrInsert(row)
	return row
}

// Find returns the row matching probe's key, if any. probe need only have
// its key fields populated.
func (t *Table[V, PV]) Find(probe PV) (PV, bool) {
	return t.tree.Get(probe)
}

// Remove deletes row from the table.
func (t *Table[V, PV]) Remove(row PV) {
	t.tree.Delete(row)
}

// AscendFrom walks rows in key order starting from probe's key, invoking
// visit for each until visit returns false or the table is exhausted.
func (t *Table[V, PV]) AscendFrom(probe PV, visit func(PV) bool) {
	t.tree.AscendGreaterOrEqual(probe, visit)
}

// Len returns the number of rows in the table.
func (t *Table[V, PV]) Len() int {
	return t.tree.Len()
}
