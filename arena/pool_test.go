// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena_test

import (
	"testing"
	"time"

	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/errs"
)

func TestPool_AllocWithinCurrentPage(t *testing.T) {
	p := arena.New(2, 64)

	v1, err := p.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if v1.Len() != 16 {
		t.Fatalf("Len() = %d, want 16", v1.Len())
	}

	v2, err := p.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if len(v1.Bytes()) == 0 || len(v2.Bytes()) == 0 {
		t.Fatalf("expected non-empty backing slices")
	}
	v1.Release()
	v2.Release()
}

func TestPool_AllocExceedsPageCapacity(t *testing.T) {
	p := arena.New(1, 32)
	_, err := p.Alloc(64)
	if !errs.Is(err, errs.CapacityExceeded) {
		t.Fatalf("err = %v, want CapacityExceeded", err)
	}
}

func TestPool_RoundRobinRescanReusesReleasedPage(t *testing.T) {
	p := arena.New(2, 16)

	v1, err := p.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc page 1: %v", err)
	}
	v2, err := p.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc page 2: %v", err)
	}
	// Both pages are now full and pinned; a third alloc must block until
	// one is released.
	done := make(chan struct{})
	go func() {
		v3, err := p.Alloc(8)
		if err != nil {
			t.Errorf("Alloc after release: %v", err)
		}
		v3.Release()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("third alloc returned before any page was released")
	case <-time.After(20 * time.Millisecond):
	}

	v1.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("third alloc never unblocked after release")
	}
	v2.Release()
}

func TestView_CloneAndRelease(t *testing.T) {
	p := arena.New(1, 32)
	v, err := p.Alloc(8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	copy(v.Bytes(), []byte("abcdefgh"))

	clone := v.Clone()
	if string(clone.Bytes()) != "abcdefgh" {
		t.Fatalf("clone bytes = %q", clone.Bytes())
	}
	clone.Release()
	v.Release()
}

func TestView_Adjacent(t *testing.T) {
	p := arena.New(1, 32)
	whole, err := p.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	tail := whole.Sub(0, 8)
	head := whole.Sub(8, 16)
	if !arena.Adjacent(tail, head) {
		t.Fatal("expected adjacent sub-views of the same page to be contiguous")
	}
	joined := arena.JoinBytes(tail, head)
	if len(joined) != 16 {
		t.Fatalf("len(joined) = %d, want 16", len(joined))
	}
	whole.Release()
}

func TestView_NotAdjacentAcrossNonConsecutivePages(t *testing.T) {
	p := arena.New(3, 16)
	a, err := p.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc a: %v", err)
	}
	b, err := p.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc b: %v", err)
	}
	c, err := p.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc c: %v", err)
	}
	if arena.Adjacent(a, c) {
		t.Fatal("views from non-consecutive pages must never be reported contiguous")
	}
	a.Release()
	b.Release()
	c.Release()
}
