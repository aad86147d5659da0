// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package backoff provides the SpinPark bounded-wait primitive shared by
// every suspension point in the engine: arena allocation, SPSC ring
// push/pop, and OrderedChannel receive.
package backoff

import (
	"log/slog"
	"time"

	"code.hybscloud.com/spin"
)

// ParksBeforeWarn is the number of parks after which SpinPark logs a
// diagnostic. It does not fail the wait; it only surfaces a contention
// stall longer than operators would expect.
const ParksBeforeWarn = 64

// SpinAttempts is the number of spin-pause iterations attempted before a
// SpinPark caller falls back to a park/yield.
const SpinAttempts = 100

// SpinPark is a bounded wait: spin-pause up to SpinAttempts times, then
// park (sleep a small, fixed quantum) and yield to the scheduler. After
// ParksBeforeWarn consecutive parks it logs a warning once and keeps
// waiting; it never gives up on its own.
type SpinPark struct {
	sw     spin.Wait
	spins  int
	parks  int
	warned bool
	site   string
}

// New creates a SpinPark that will identify itself as site in its
// diagnostic, e.g. "arena: alloc" or "ordered: recv".
func New(site string) SpinPark {
	return SpinPark{site: site}
}

// Wait performs one spin-or-park step. Call it in a loop around the
// condition being awaited.
func (s *SpinPark) Wait() {
	if s.spins < SpinAttempts {
		s.spins++
		s.sw.Once()
		return
	}
	s.spins = 0
	time.Sleep(parkQuantum)
	s.parks++
	if s.parks == ParksBeforeWarn && !s.warned {
		s.warned = true
		slog.Warn("spin-park: contention stall exceeds warn threshold",
			"site", s.site, "parks", s.parks)
	}
}

// Reset clears accumulated spin/park counters for reuse across a new wait.
func (s *SpinPark) Reset() {
	s.spins = 0
	s.parks = 0
	s.warned = false
}

const parkQuantum = 50 * time.Microsecond
