// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena

import "unsafe"

// View is a borrowed extent (pointer, length) into one specific Page plus
// the reference-count bump that keeps the page pinned. The zero value is
// not valid; obtain a View only from Pool.Alloc or by cloning an existing
// one.
type View struct {
	page *Page
	off  int
	len  int
}

// Bytes returns the slice this view covers. The returned slice aliases the
// page and must not be retained past Release.
func (v View) Bytes() []byte {
	if v.page == nil {
		return nil
	}
	return v.page.buf[v.off : v.off+v.len]
}

// Len reports the view's length in bytes.
func (v View) Len() int { return v.len }

// Valid reports whether the view carries a live page reference.
func (v View) Valid() bool { return v.page != nil }

// Clone bumps the backing page's refcount and returns an independent
// handle to the same extent. Each clone must be released exactly once.
func (v View) Clone() View {
	if v.page != nil {
		v.page.refs.Add(1)
	}
	return v
}

// Release decrements the backing page's refcount. Calling Release more
// than once per Alloc/Clone is a misuse and will double-decrement.
func (v View) Release() {
	if v.page != nil {
		v.page.refs.Add(-1)
	}
}

// Truncate returns a new view over the first n bytes of v without
// consuming any additional page capacity or adjusting the refcount; the
// caller already owns the single reference bump from the original Alloc.
func (v View) Truncate(n int) View {
	if n > v.len {
		n = v.len
	}
	return View{page: v.page, off: v.off, len: n}
}

// Sub returns a new view over v[from:to], sharing v's single reference.
// Used by the parser to carve a sub-span out of a larger aligned view
// without an additional allocation.
func (v View) Sub(from, to int) View {
	return View{page: v.page, off: v.off + from, len: to - from}
}

// startPtr and endPtr expose the raw memory bounds of the view so the
// parser can test two views for physical contiguity (same page, or
// adjacent pages whose backing slices abut).
func (v View) startPtr() unsafe.Pointer {
	return unsafe.Pointer(&v.page.buf[v.off])
}

// endPtr is one-past-the-end of v's extent, which is the ordinary case
// for a tail view that fills its page exactly (a full decode block);
// indexing buf[v.off+v.len] there would be out of range, so the offset
// is computed via pointer arithmetic from buf's base instead.
func (v View) endPtr() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(&v.page.buf[0]), v.off+v.len)
}

// Adjacent reports whether tail's end immediately precedes head's start in
// memory, i.e. a parser may treat the concatenation as a single contiguous
// slice without copying.
func Adjacent(tail, head View) bool {
	if tail.page == nil || head.page == nil || tail.len == 0 {
		return false
	}
	return tail.endPtr() == head.startPtr()
}

// JoinBytes returns a single slice spanning tail and head without
// copying, valid only when Adjacent(tail, head) holds. Each page's own
// Bytes() is bounded by that page's capacity, so a record straddling the
// boundary cannot be expressed as an ordinary sub-slice of either view;
// JoinBytes instead reinterprets the two physically contiguous regions as
// one raw slice, mirroring the parser's use of
// std::slice::from_raw_parts over two adjacent allocations in
// original_source/bascet-io/src/parse/tirp/tirp_as_record.rs. The caller
// is responsible for keeping both tail and head (or clones of them)
// alive for as long as the returned slice is read.
func JoinBytes(tail, head View) []byte {
	return unsafe.Slice((*byte)(tail.startPtr()), tail.len+head.len)
}
