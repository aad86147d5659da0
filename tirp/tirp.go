// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tirp implements parser.Parser for the tab-delimited,
// newline-terminated 8-column record grammar spec.md §4.3 ships as its
// illustrative concrete grammar.
//
// Grounded on
// original_source/bascet-io/src/parse/tirp/tirp_as_record.rs: scan for
// the line's terminating newline (memchr), then for its tab-separated
// column boundaries; on a missing newline or too few tabs, report
// Partial rather than an error, since a split record at a page boundary
// looks identical to a truncated one until parse_spanning has a chance
// to complete it.
package tirp

import (
	"bytes"

	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/errs"
	"code.hybscloud.com/bascet/parser"
	"code.hybscloud.com/bascet/record"
)

// Tirp is a stateful, single-cursor parser for one decoded stream. It is
// not safe for concurrent use; the stream consumer drives it from a
// single goroutine, per spec.md §5.
type Tirp struct {
	cursor int
	cm     parser.ColumnMap
}

// New creates a parser using the given column map. Use
// parser.DefaultColumnMap() for the 8-column grammar spec.md ships with.
func New(cm parser.ColumnMap) *Tirp {
	return &Tirp{cm: cm}
}

func (t *Tirp) ParseAligned(view arena.View) (*record.Record, parser.Outcome, error) {
	buf := view.Bytes()
	rest := buf[t.cursor:]

	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return nil, parser.Partial, nil
	}
	line := rest[:nl]

	tabs, ok := findTabs(line, t.cm.Columns-1)
	if !ok {
		return nil, parser.Partial, nil
	}

	rec, err := t.buildRecord(line, tabs, []arena.View{view.Clone()})
	if err != nil {
		return nil, 0, err
	}
	t.cursor += nl + 1
	return rec, parser.Full, nil
}

func (t *Tirp) ParseSpanning(tail, head arena.View, allocScratch parser.AllocScratch) (*record.Record, parser.Outcome, error) {
	headBuf := head.Bytes()
	headNL := bytes.IndexByte(headBuf, '\n')
	if headNL < 0 {
		return nil, 0, errs.New(errs.MalformedRecord, "spanning record has no terminating newline in the next page")
	}
	headLen := headNL

	tailRemaining := tail.Bytes()[t.cursor:]
	tailLen := len(tailRemaining)

	var line []byte
	var backing []arena.View
	if arena.Adjacent(tail, head) {
		combined := arena.JoinBytes(tail, head)
		start := tail.Len() - tailLen
		line = combined[start : tail.Len()+headLen]
		backing = []arena.View{tail.Clone(), head.Clone()}
	} else {
		scratch, err := allocScratch(tailLen + headLen)
		if err != nil {
			return nil, 0, err
		}
		sb := scratch.Bytes()
		copy(sb[:tailLen], tailRemaining)
		copy(sb[tailLen:tailLen+headLen], headBuf[:headLen])
		line = sb[:tailLen+headLen]
		backing = []arena.View{scratch}
	}

	tabs, ok := findTabs(line, t.cm.Columns-1)
	if !ok {
		return nil, 0, errs.New(errs.MalformedRecord, "spanning record is missing expected tab-separated columns")
	}

	rec, err := t.buildRecord(line, tabs, backing)
	if err != nil {
		return nil, 0, err
	}
	t.cursor = headLen + 1
	return rec, parser.Full, nil
}

func (t *Tirp) ParseFinish() (*record.Record, parser.Outcome, error) {
	return nil, parser.Finished, nil
}

// buildRecord slices line into t.cm.Columns fields at the given tab
// boundaries and validates read/quality length parity.
func (t *Tirp) buildRecord(line []byte, tabs []int, backing []arena.View) (*record.Record, error) {
	cols := splitColumns(line, tabs)
	cm := t.cm

	id := cols[cm.ID]
	read1 := cols[cm.Read1]
	read2 := cols[cm.Read2]
	qual1 := cols[cm.Qual1]
	qual2 := cols[cm.Qual2]
	tag := cols[cm.Tag]

	if len(read1) != len(qual1) {
		return nil, errs.New(errs.MalformedRecord, "read-1/quality-1 length mismatch")
	}
	if len(read2) != len(qual2) {
		return nil, errs.New(errs.MalformedRecord, "read-2/quality-2 length mismatch")
	}

	return record.New(id, read1, read2, qual1, qual2, tag, backing), nil
}

// findTabs returns the positions of the first n tab bytes in buf, in
// ascending order, or ok=false if fewer than n are present.
func findTabs(buf []byte, n int) (tabs []int, ok bool) {
	if n <= 0 {
		return nil, true
	}
	tabs = make([]int, 0, n)
	off := 0
	for i := 0; i < n; i++ {
		idx := bytes.IndexByte(buf[off:], '\t')
		if idx < 0 {
			return nil, false
		}
		pos := off + idx
		tabs = append(tabs, pos)
		off = pos + 1
	}
	return tabs, true
}

// splitColumns slices line into len(tabs)+1 fields at the given tab
// boundaries.
func splitColumns(line []byte, tabs []int) [][]byte {
	cols := make([][]byte, len(tabs)+1)
	start := 0
	for i, pos := range tabs {
		cols[i] = line[start:pos]
		start = pos + 1
	}
	cols[len(tabs)] = line[start:]
	return cols
}
