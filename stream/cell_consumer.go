// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/parser"
	"code.hybscloud.com/bascet/query"
	"code.hybscloud.com/bascet/record"
	"code.hybscloud.com/bascet/ring"
)

// CellContext is what per-cell predicates are evaluated against: the
// record just parsed, and the aggregate it would join if kept (empty if
// none is currently open).
type CellContext struct {
	Record    *record.Record
	Aggregate *record.Aggregate
}

// CellConsumer drives the pipeline in per-cell accumulate mode: records
// sharing an identifier are merged into an Aggregate. At most one
// aggregate is open at a time.
//
// Grounded on
// original_source/bascet-core/src/stream/as_cell_accumulate.rs: when no
// aggregate is open, Emit evaluates and closes a fresh singleton
// aggregate in the same step rather than leaving one open for the next
// record (resolving the spec's "start a new aggregate seeded from this
// record" rule for the case where there was no current aggregate to
// close); when one is already open, Emit returns it and seeds the new
// open aggregate from the triggering record, as spec.md describes.
type CellConsumer struct {
	src        *source
	predicates []query.Predicate[CellContext]
	current    *record.Aggregate
}

// NewCellConsumer builds a per-cell consumer.
func NewCellConsumer(ring *ring.SPSC[arena.View], p parser.Parser, scratchPool *arena.Pool, predicates []query.Predicate[CellContext]) *CellConsumer {
	return &CellConsumer{src: newSource(ring, p, scratchPool), predicates: predicates}
}

// Next returns the next emitted aggregate, nil at end-of-stream (after
// flushing any open aggregate), or an error if the decoder or parser
// failed.
func (c *CellConsumer) Next() (*record.Aggregate, error) {
	for {
		rec, oc, err := c.src.next()
		if oc == outcomeError {
			return nil, err
		}
		if oc == outcomeEOF {
			if c.current != nil {
				result := c.current
				c.current = nil
				return result, nil
			}
			return nil, nil
		}

		if c.current != nil {
			ctx := CellContext{Record: rec, Aggregate: c.current}
			switch query.Apply(c.predicates, ctx) {
			case query.Discard:
				rec.Release()
			case query.Keep:
				c.current.Absorb(rec)
			case query.Emit:
				result := c.current
				next := record.NewAggregate(record.Get[record.ID](rec))
				next.Absorb(rec)
				c.current = next
				return result, nil
			}
			continue
		}

		fresh := record.NewAggregate(record.Get[record.ID](rec))
		ctx := CellContext{Record: rec, Aggregate: fresh}
		switch query.Apply(c.predicates, ctx) {
		case query.Discard:
			rec.Release()
		case query.Keep:
			fresh.Absorb(rec)
			c.current = fresh
		case query.Emit:
			fresh.Absorb(rec)
			return fresh, nil
		}
	}
}
