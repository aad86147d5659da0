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

// RecordConsumer drives the pipeline in per-record mode: every parsed
// record is evaluated against the predicate tree, and Keep or Emit both
// yield it to the caller.
type RecordConsumer struct {
	src        *source
	predicates []query.Predicate[*record.Record]
}

// NewRecordConsumer builds a per-record consumer. ring carries decoded
// page views from the decode worker; p is the record grammar; scratchPool
// is the arena the parser allocates non-contiguous spanning scratch from.
func NewRecordConsumer(ring *ring.SPSC[arena.View], p parser.Parser, scratchPool *arena.Pool, predicates []query.Predicate[*record.Record]) *RecordConsumer {
	return &RecordConsumer{src: newSource(ring, p, scratchPool), predicates: predicates}
}

// Next returns the next record the query keeps or emits, nil at
// end-of-stream, or an error if the decoder or parser failed.
func (c *RecordConsumer) Next() (*record.Record, error) {
	for {
		rec, oc, err := c.src.next()
		switch oc {
		case outcomeError:
			return nil, err
		case outcomeEOF:
			return nil, nil
		}

		switch query.Apply(c.predicates, rec) {
		case query.Discard:
			rec.Release()
			continue
		default: // Keep or Emit
			return rec, nil
		}
	}
}
