// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package writer_test

import (
	"bytes"
	"fmt"
	"testing"

	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/bgzf"
	"code.hybscloud.com/bascet/writer"
)

func TestWriter_S6OrderedUnderShuffledCompletion(t *testing.T) {
	const blockCount = 64
	const workers = 4

	raws := make([][]byte, blockCount)
	for i := range raws {
		raws[i] = []byte(fmt.Sprintf("block-%03d:%s\n", i, bytes.Repeat([]byte("x"), 50+i%7)))
	}

	sourcePool := arena.New(blockCount, 4096)
	codec := bgzf.NewCodec(6, nil)

	var sink bytes.Buffer
	w := writer.New(&sink, codec, 4, codec.CompressBound(4096), workers, 16)

	for i, raw := range raws {
		v, err := sourcePool.Alloc(len(raw))
		if err != nil {
			t.Fatalf("Alloc block %d: %v", i, err)
		}
		copy(v.Bytes(), raw)
		if err := w.Submit(v); err != nil {
			t.Fatalf("Submit block %d: %v", i, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	dec := bgzf.NewDecoder(bytes.NewReader(sink.Bytes()))
	buf := make([]byte, dec.SizeofTargetAlloc())
	for i := 0; i < blockCount; i++ {
		n, status, err := dec.DecodeInto(buf)
		if err != nil {
			t.Fatalf("DecodeInto block %d: %v", i, err)
		}
		if status != bgzf.Decoded {
			t.Fatalf("block %d: status = %v, want Decoded", i, status)
		}
		if !bytes.Equal(buf[:n], raws[i]) {
			t.Fatalf("block %d out of order or corrupted: got %q, want %q", i, buf[:n], raws[i])
		}
	}

	_, status, err := dec.DecodeInto(buf)
	if err != nil {
		t.Fatalf("DecodeInto at eof: %v", err)
	}
	if status != bgzf.Eof {
		t.Fatalf("status = %v, want Eof after %d blocks", status, blockCount)
	}
}

func TestWriter_SinkErrorAbortsProcessing(t *testing.T) {
	sourcePool := arena.New(4, 256)
	codec := bgzf.NewCodec(6, nil)

	w := writer.New(failingSink{}, codec, 4, codec.CompressBound(256), 2, 8)

	v, err := sourcePool.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	copy(v.Bytes(), []byte("this write must fail downstream"))
	if err := w.Submit(v); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := w.Close(); err == nil {
		t.Fatal("Close: expected sink error, got nil")
	}
}

type failingSink struct{}

func (failingSink) Write([]byte) (int, error) {
	return 0, fmt.Errorf("simulated sink failure")
}
