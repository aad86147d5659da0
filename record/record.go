// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package record defines the typed record and cell-aggregate model the
// parser emits and the stream consumer consumes, plus the Get[A] attribute
// accessor pattern used to read out individual fields.
//
// Grounded on original_source/bascet-core/src/cell/cell.rs's Cell/Get
// trait family: marker newtypes (ID, ReadPair, Quality, UMI, ...) paired
// with a small Get trait implemented once per marker. Rust's variadic
// tuple-of-markers composition (bascet_variadic::variadic!, up to 16
// elements) has no idiomatic Go analogue; callers needing several
// attributes at once call Get once per marker instead.
package record

import "code.hybscloud.com/bascet/arena"

// Record is a typed, immutable tuple of borrowed slices into one or two
// pages: identifier, sequence pair, quality pair, and molecular tag. Every
// slice lies wholly within the memory of some view listed in backing.
type Record struct {
	id    []byte
	read1 []byte
	read2 []byte
	qual1 []byte
	qual2 []byte
	tag   []byte

	backing []arena.View
}

// New builds a Record from its constituent fields and the views that pin
// the pages those fields were carved from. New takes ownership of backing:
// it is released (once) when Release is called.
func New(id, read1, read2, qual1, qual2, tag []byte, backing []arena.View) *Record {
	return &Record{
		id: id, read1: read1, read2: read2, qual1: qual1, qual2: qual2, tag: tag,
		backing: backing,
	}
}

// Release drops the Record's hold on every backing page. After Release,
// the Record's field slices must not be read: the underlying pages may
// already have been reset and reused.
func (r *Record) Release() {
	for _, v := range r.backing {
		v.Release()
	}
	r.backing = nil
}

// Backing returns the views pinning this record's pages. Aggregate.Absorb
// moves these same views into the aggregate's union backing set.
func (r *Record) Backing() []arena.View { return r.backing }
