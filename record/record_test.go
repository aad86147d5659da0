// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/record"
)

func makeRecord(t *testing.T, pool *arena.Pool, id, r1, r2, q1, q2, tag string) *record.Record {
	t.Helper()
	v, err := pool.Alloc(len(id) + len(r1) + len(r2) + len(q1) + len(q2) + len(tag))
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	buf := v.Bytes()
	off := 0
	cut := func(s string) []byte {
		b := buf[off : off+len(s)]
		copy(b, s)
		off += len(s)
		return b
	}
	idB, r1B, r2B, q1B, q2B, tagB := cut(id), cut(r1), cut(r2), cut(q1), cut(q2), cut(tag)
	return record.New(idB, r1B, r2B, q1B, q2B, tagB, []arena.View{v})
}

func TestRecord_GetAttributes(t *testing.T) {
	pool := arena.New(1, 256)
	r := makeRecord(t, pool, "cell-1", "ACGT", "TGCA", "IIII", "IIII", "UMI1")
	defer r.Release()

	if !bytes.Equal(record.Get[record.ID](r), []byte("cell-1")) {
		t.Fatalf("ID = %q", record.Get[record.ID](r))
	}
	if !bytes.Equal(record.Get[record.Read1](r), []byte("ACGT")) {
		t.Fatalf("Read1 = %q", record.Get[record.Read1](r))
	}
	if !bytes.Equal(record.Get[record.Tag](r), []byte("UMI1")) {
		t.Fatalf("Tag = %q", record.Get[record.Tag](r))
	}
}

func TestAggregate_AbsorbTransfersBackingOwnership(t *testing.T) {
	pool := arena.New(1, 256)
	r1 := makeRecord(t, pool, "cell-1", "AAAA", "TTTT", "IIII", "IIII", "U1")
	r2 := makeRecord(t, pool, "cell-1", "CCCC", "GGGG", "IIII", "IIII", "U2")

	agg := record.NewAggregate(record.Get[record.ID](r1))
	agg.Absorb(r1)
	agg.Absorb(r2)
	defer agg.Release()

	// Absorbed records must not be separately released: their backing
	// has moved to the aggregate, and Release on them must be a no-op.
	r1.Release()
	r2.Release()

	if agg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", agg.Len())
	}
	reads1 := record.GetAll[record.Read1](agg)
	if string(reads1[0]) != "AAAA" || string(reads1[1]) != "CCCC" {
		t.Fatalf("GetAll[Read1] = %q", reads1)
	}
}
