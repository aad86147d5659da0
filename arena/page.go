// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena

import "sync/atomic"

// Page is a fixed-capacity byte buffer with a monotonically increasing
// write cursor and a reference count. Only the pool's single allocating
// owner ever touches cursor; refs is shared across every goroutine that
// holds a View into the page and must stay atomic.
//
// Grounded on original_source/src/common/alloc.rs's PageBuffer: a bump
// cursor plus an atomic refcount, reset only once the refcount drops to
// zero.
type Page struct {
	buf    []byte
	cursor int
	refs   atomic.Int64
}

// newPage wraps buf (a sub-slice of the pool's single contiguous backing
// allocation) as a page. Pages are never independently allocated: the
// pool carves every page out of one backing buffer so that consecutive
// pages are physically adjacent in memory, which is what lets the parser
// take the zero-copy path across a page boundary.
func newPage(buf []byte) *Page {
	return &Page{buf: buf}
}

// capacity returns the page's maximum sub-extent.
func (p *Page) capacity() int { return len(p.buf) }

// remaining returns the number of bytes left before the write cursor hits
// the end of the page.
func (p *Page) remaining() int { return len(p.buf) - p.cursor }

// available reports whether the page's refcount is currently zero, i.e. it
// may be reset and reused.
func (p *Page) available() bool { return p.refs.Load() == 0 }

// tryReset resets the cursor to zero if the page is available. It must
// only be called by the pool's single allocating owner.
func (p *Page) tryReset() bool {
	if !p.available() {
		return false
	}
	p.cursor = 0
	return true
}

// carve advances the cursor by n bytes and returns the starting offset.
// Caller must have already checked p.remaining() >= n.
func (p *Page) carve(n int) int {
	start := p.cursor
	p.cursor += n
	return start
}
