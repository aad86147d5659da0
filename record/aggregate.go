// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import "code.hybscloud.com/bascet/arena"

// Aggregate is a cell-level accumulation keyed by identifier: the ordered
// collections of sequence pairs, quality pairs, and tags belonging to
// every record absorbed under that identifier. Its backing is the union
// of the backings of the records it absorbed, pinning every page any
// absorbed record borrowed from.
type Aggregate struct {
	id []byte

	reads1 [][]byte
	reads2 [][]byte
	quals1 [][]byte
	quals2 [][]byte
	tags   [][]byte

	backing []arena.View
}

// NewAggregate starts a fresh aggregate keyed by id. id must outlive the
// aggregate; callers typically pass the first absorbed record's
// identifier slice.
func NewAggregate(id []byte) *Aggregate {
	return &Aggregate{id: id}
}

// ID returns the aggregate's cell identifier.
func (a *Aggregate) ID() []byte { return a.id }

// Len reports how many records this aggregate has absorbed.
func (a *Aggregate) Len() int { return len(a.reads1) }

// Absorb folds r's fields into the aggregate and transfers ownership of
// r's backing views into the aggregate's union backing set. r must not be
// released by the caller afterward; Absorb clears r's backing so a stray
// Release call is a harmless no-op.
func (a *Aggregate) Absorb(r *Record) {
	a.reads1 = append(a.reads1, r.read1)
	a.reads2 = append(a.reads2, r.read2)
	a.quals1 = append(a.quals1, r.qual1)
	a.quals2 = append(a.quals2, r.qual2)
	a.tags = append(a.tags, r.tag)
	a.backing = append(a.backing, r.backing...)
	r.backing = nil
}

// Release drops the aggregate's hold on every backing page.
func (a *Aggregate) Release() {
	for _, v := range a.backing {
		v.Release()
	}
	a.backing = nil
}
