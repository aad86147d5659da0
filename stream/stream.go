// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stream drives the decode-parser pipeline and produces either
// per-record (AsRecord) or per-cell (AsCell) output, evaluated under a
// composable query predicate tree.
//
// Grounded on
// original_source/bascet-core/src/stream/{as_record,as_cell_accumulate}.rs:
// peek the ring's head without consuming it, feed it to the parser
// according to the saved Aligned/Spanning state, and only pop once the
// parser reports Partial (the block is exhausted and its tail must carry
// over to the next one).
package stream

import (
	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/internal/backoff"
	"code.hybscloud.com/bascet/parser"
	"code.hybscloud.com/bascet/record"
	"code.hybscloud.com/bascet/ring"
)

// source holds the common peek/parse/pop control loop shared by the
// AsRecord and AsCell consumers: pull the next Full record out of the
// decode ring, tracking the Aligned/Spanning parse state across calls.
type source struct {
	ring        *ring.SPSC[arena.View]
	parser      parser.Parser
	scratchPool *arena.Pool

	spanningTail arena.View // Valid() only while ParseState is Spanning
	wait         backoff.SpinPark
}

func newSource(ring *ring.SPSC[arena.View], p parser.Parser, scratchPool *arena.Pool) *source {
	return &source{ring: ring, parser: p, scratchPool: scratchPool}
}

// outcome distinguishes the three ways a pull from the source can end.
type outcome int

const (
	outcomeRecord outcome = iota
	outcomeEOF
	outcomeError
)

// next pulls the next successfully parsed record off the pipeline. It
// never returns Partial to its caller: a Partial parse is absorbed
// internally into the Spanning state and retried.
func (s *source) next() (*record.Record, outcome, error) {
	for {
		bs, err := s.ring.Peek()
		if err != nil {
			s.wait.Wait()
			continue
		}
		s.wait.Reset()

		switch bs.Kind {
		case ring.Error:
			return nil, outcomeError, bs.Err
		case ring.Eof:
			s.dropSpanningTail()
			return nil, outcomeEOF, nil
		}

		view := bs.Value
		var rec *record.Record
		var parseOutcome parser.Outcome

		if s.spanningTail.Valid() {
			tail := s.spanningTail
			s.spanningTail = arena.View{}
			rec, parseOutcome, err = s.parser.ParseSpanning(tail, view, s.allocScratch)
			tail.Release()
		} else {
			rec, parseOutcome, err = s.parser.ParseAligned(view)
		}
		if err != nil {
			return nil, outcomeError, err
		}

		switch parseOutcome {
		case parser.Full:
			return rec, outcomeRecord, nil
		case parser.Partial:
			s.spanningTail = view.Clone()
			if _, popErr := s.ring.Pop(); popErr != nil {
				return nil, outcomeError, popErr
			}
			view.Release()
			continue
		case parser.Finished:
			return nil, outcomeEOF, nil
		}
	}
}

func (s *source) allocScratch(n int) (arena.View, error) {
	return s.scratchPool.Alloc(n)
}

func (s *source) dropSpanningTail() {
	if s.spanningTail.Valid() {
		s.spanningTail.Release()
		s.spanningTail = arena.View{}
	}
}
