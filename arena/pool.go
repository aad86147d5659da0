// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package arena implements the page-pool allocator the rest of the engine
// borrows from: a small fixed set of large pages from which variable-length
// byte extents are carved linearly, with content-addressed lifetime
// tracking via reference-counted Views.
//
// Grounded on code.hybscloud.com/iobuf's BoundedPool family (fixed-size
// slab pools, cache-aware scanning) and original_source/src/common/alloc.rs
// (PageBuffer/PageBufferPool: bump-cursor pages, round-robin rescan,
// spin-park on exhaustion).
package arena

import (
	"code.hybscloud.com/bascet/errs"
	"code.hybscloud.com/bascet/internal/backoff"
)

// Pool is an ordered collection of fixed-capacity pages and the index of
// the current page. Allocations always target the current page first; if
// it cannot satisfy a request the pool scans every page in round-robin
// order for one with enough remaining capacity or a zero refcount, and
// blocks (spin-park) until one becomes eligible.
//
// A Pool has a single allocating owner: Alloc must not be called
// concurrently from more than one goroutine. Views handed out by Alloc may
// be read, cloned, and released from any number of goroutines.
type Pool struct {
	pages    []*Page
	current  int
	pageSize int
}

// New constructs a pool of pageCount pages, each pageCapacity bytes. Every
// page is carved out of one contiguous backing allocation, so page i and
// page i+1 are always physically adjacent in memory: this is what allows
// the parser's spanning contiguity test to ever succeed across a page
// boundary.
func New(pageCount, pageCapacity int) *Pool {
	backing := make([]byte, pageCount*pageCapacity)
	pages := make([]*Page, pageCount)
	for i := range pages {
		pages[i] = newPage(backing[i*pageCapacity : (i+1)*pageCapacity])
	}
	return &Pool{pages: pages, pageSize: pageCapacity}
}

// PageSize returns the fixed capacity of every page in the pool.
func (p *Pool) PageSize() int { return p.pageSize }

// Alloc carves nbytes off the current page, or the first eligible page
// found by a round-robin scan, blocking with a SpinPark if none is
// eligible yet. It fails with errs.CapacityExceeded if nbytes exceeds the
// pool's page capacity — no single page could ever satisfy the request.
func (p *Pool) Alloc(nbytes int) (View, error) {
	if nbytes > p.pageSize {
		return View{}, errs.New(errs.CapacityExceeded, "requested allocation exceeds page capacity")
	}

	var wait backoff.SpinPark
	for {
		if v, ok := p.tryAllocCurrent(nbytes); ok {
			return v, nil
		}
		if v, ok := p.tryAllocScan(nbytes); ok {
			return v, nil
		}
		wait.Wait()
	}
}

func (p *Pool) tryAllocCurrent(nbytes int) (View, bool) {
	pg := p.pages[p.current]
	if pg.remaining() >= nbytes {
		return p.carveFrom(pg, nbytes), true
	}
	return View{}, false
}

// tryAllocScan walks every page starting just after the current one,
// looking for either remaining capacity or a page eligible for reset.
func (p *Pool) tryAllocScan(nbytes int) (View, bool) {
	n := len(p.pages)
	for i := 1; i <= n; i++ {
		idx := (p.current + i) % n
		pg := p.pages[idx]
		if pg.remaining() >= nbytes {
			p.current = idx
			return p.carveFrom(pg, nbytes), true
		}
		if pg.tryReset() {
			p.current = idx
			return p.carveFrom(pg, nbytes), true
		}
	}
	return View{}, false
}

func (p *Pool) carveFrom(pg *Page, nbytes int) View {
	off := pg.carve(nbytes)
	pg.refs.Add(1)
	return View{page: pg, off: off, len: nbytes}
}
