// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bgzf_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/bascet/bgzf"
	"code.hybscloud.com/bascet/errs"
)

func TestCodec_CompressDecompressRoundTrip(t *testing.T) {
	codec := bgzf.NewCodec(6, []byte("tirp"))
	src := bytes.Repeat([]byte("cell1\tx\tx\tACGT\tTGCA\tIIII\tIIII\tU1\n"), 200)

	dst := make([]byte, codec.CompressBound(len(src)))
	n, err := codec.Compress(dst, src)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	dst = dst[:n]

	var stream bytes.Buffer
	stream.Write(dst)
	stream.Write(bgzf.EOFMarker)

	dec := bgzf.NewDecoder(&stream)
	buf := make([]byte, dec.SizeofTargetAlloc())
	got, status, err := dec.DecodeInto(buf)
	if err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if status != bgzf.Decoded {
		t.Fatalf("status = %v, want Decoded", status)
	}
	if !bytes.Equal(buf[:got], src) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", got, len(src))
	}

	_, status, err = dec.DecodeInto(buf)
	if err != nil {
		t.Fatalf("DecodeInto at eof: %v", err)
	}
	if status != bgzf.Eof {
		t.Fatalf("status = %v, want Eof", status)
	}
}

func TestCodec_SmallBufferSpansMultipleDecodeIntoCalls(t *testing.T) {
	codec := bgzf.NewCodec(6, nil)
	src := bytes.Repeat([]byte("abcdefgh"), 100)

	dst := make([]byte, codec.CompressBound(len(src)))
	n, err := codec.Compress(dst, src)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	dst = dst[:n]

	var stream bytes.Buffer
	stream.Write(dst)
	stream.Write(bgzf.EOFMarker)

	dec := bgzf.NewDecoder(&stream)
	small := make([]byte, 64)
	var got []byte
	for {
		n, status, err := dec.DecodeInto(small)
		if err != nil {
			t.Fatalf("DecodeInto: %v", err)
		}
		if status == bgzf.Eof {
			break
		}
		got = append(got, small[:n]...)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("spanning decode mismatch: got %d bytes, want %d", len(got), len(src))
	}
}

func TestDecoder_TruncatedStreamIsProtocolViolation(t *testing.T) {
	dec := bgzf.NewDecoder(bytes.NewReader(nil))
	buf := make([]byte, 64)
	_, status, err := dec.DecodeInto(buf)
	if status != bgzf.Error || !errs.Is(err, errs.ProtocolViolation) {
		t.Fatalf("status = %v, err = %v, want Error/ProtocolViolation", status, err)
	}
}
