// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package parser defines the pluggable, stateful parser contract the
// stream consumer drives: parse one record at a time out of page views,
// tracking whether a record's line was fully contained in one page
// (Aligned) or carried over a page boundary (Spanning).
//
// Grounded on spec.md §4.3's parse_aligned/parse_spanning/parse_finish
// contract and original_source/bascet-io/src/parse/tirp's concrete
// grammar walker, generalised behind this interface the way
// original_source separates bascet-core's Parser trait from its
// bascet-io grammar implementations.
package parser

import (
	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/record"
)

// Outcome is the result tag of a parse attempt. Error conditions are
// reported through the ordinary error return instead of a fourth tag.
type Outcome int

const (
	// Full means exactly one record was parsed.
	Full Outcome = iota
	// Partial means the page ended mid-record; the caller must retain
	// the unconsumed tail and retry via ParseSpanning once the next
	// page view is available.
	Partial
	// Finished means no more records remain and none was parsed.
	Finished
)

// AllocScratch obtains a fresh View of at least n bytes, used by
// ParseSpanning when the two halves of a split record are not physically
// contiguous and must be copied together.
type AllocScratch func(n int) (arena.View, error)

// Parser is implemented once per concrete record grammar (e.g. tirp).
type Parser interface {
	// ParseAligned attempts to parse one record starting at the
	// parser's internal cursor within view. Returns Partial if the
	// view ends mid-record.
	ParseAligned(view arena.View) (*record.Record, Outcome, error)

	// ParseSpanning parses one record straddling tail and head. If the
	// two views are physically contiguous (arena.Adjacent), the
	// implementation must take the zero-copy path; otherwise it calls
	// allocScratch and copies both segments into the returned view.
	ParseSpanning(tail, head arena.View, allocScratch AllocScratch) (*record.Record, Outcome, error)

	// ParseFinish flushes any record the parser can still produce with
	// no further input (e.g. a final line with no trailing newline).
	// It must never return Partial.
	ParseFinish() (*record.Record, Outcome, error)
}

// ColumnMap parametrises which tab-separated column holds which field,
// per the Open Question in spec.md §9 ("implementers should parametrise
// the column map rather than hard-code it"). Columns not referenced by
// any field are simply skipped.
type ColumnMap struct {
	Columns int // total expected columns per line
	ID      int
	Read1   int
	Read2   int
	Qual1   int
	Qual2   int
	Tag     int
}

// DefaultColumnMap is the 8-column grammar spec.md §4.3 ships with:
// identifier, two unused columns, read-1, read-2, quality-1, quality-2,
// molecular tag.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		Columns: 8,
		ID:      0,
		Read1:   3,
		Read2:   4,
		Qual1:   5,
		Qual2:   6,
		Tag:     7,
	}
}
