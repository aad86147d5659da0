// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bgzf is the concrete block codec the writer and decode worker
// use by default: a gzip-compatible, independently-decompressible block
// format (BC/ID extra subfields, CRC-32 + length trailer, fixed
// end-of-stream marker).
//
// Grounded on
// _examples/original_source/bascet-io/src/codec/bbgz/{header,writer,decode}.rs
// and bascet-io/src/decode/bgzf.rs for the on-wire layout and the
// Decode contract's shape (sizeof_target_alloc/decode_into); the
// compression backend itself is substituted: the original shells out to
// htslib's C bgzf reader and libdeflater, neither of which has a Go
// binding in this module's dependency set, so compression and
// decompression both go through github.com/klauspost/compress/flate,
// following the wrapping style of SnellerInc-sneller/compr's
// Compressor/Decompressor interfaces.
package bgzf

import (
	"bytes"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"

	"code.hybscloud.com/bascet/errs"
	"code.hybscloud.com/bascet/stream"
)

func errProtocolViolation(msg string) error {
	return errs.New(errs.ProtocolViolation, msg)
}

// MaxISIZE is the largest uncompressed payload this codec will ever
// place in a single block, matching BGZF's own convention (blocks never
// exceed 64KiB uncompressed) so BSIZE always fits a uint16. Callers
// that assemble their own blocks before handing them to Compress (e.g.
// cmd/bascet) must cap accumulated block size at MaxISIZE.
const MaxISIZE = 65280

// Codec is the writer.Compressor this package exports: one block in,
// one compressed block (header + payload + trailer) out.
type Codec struct {
	level int
	id    []byte
}

// NewCodec builds a Codec at the given flate compression level. id, if
// non-nil, is written as the optional "ID" extra subfield on every
// block (e.g. a format identifier downstream tools key off of).
func NewCodec(level int, id []byte) *Codec {
	return &Codec{level: level, id: id}
}

func (c *Codec) Name() string { return "bgzf" }

// EOFMarker returns the fixed 28-byte empty BGZF block appended once
// after the last real block.
func (c *Codec) EOFMarker() []byte { return EOFMarker }

// CompressBound returns a safe upper bound on the wire size of a
// compressed block for n uncompressed bytes: the fixed header, the ID
// and BC extra subfields, flate's own worst-case expansion, and the
// trailer.
func (c *Codec) CompressBound(n int) int {
	idSize := 0
	if c.id != nil {
		idSize = 4 + len(c.id)
	}
	flateBound := n + n>>10 + 64 // flate's store-mode worst case is ~n+5 per 64KiB block; generous margin
	return headerSize + idSize + bcSubfieldSize + flateBound + trailerSize
}

// Compress writes one complete bgzf block (header, deflate-compressed
// payload, trailer) for src into dst[:0:cap(dst)], returning the number
// of bytes written. dst must have capacity >= CompressBound(len(src)).
func (c *Codec) Compress(dst, src []byte) (int, error) {
	if len(src) > MaxISIZE {
		return 0, errs.New(errs.EncodeError, "bgzf: payload exceeds maximum block size")
	}

	var payload bytes.Buffer
	fw, err := flate.NewWriter(&payload, c.level)
	if err != nil {
		return 0, errs.Wrap(errs.EncodeError, "bgzf: flate.NewWriter", err)
	}
	if _, err := fw.Write(src); err != nil {
		return 0, errs.Wrap(errs.EncodeError, "bgzf: flate write", err)
	}
	if err := fw.Close(); err != nil {
		return 0, errs.Wrap(errs.EncodeError, "bgzf: flate close", err)
	}

	buf := bytes.NewBuffer(dst[:0])
	if err := writeHeader(buf, c.id, payload.Len()); err != nil {
		return 0, errs.Wrap(errs.EncodeError, "bgzf: write header", err)
	}
	if _, err := buf.Write(payload.Bytes()); err != nil {
		return 0, errs.Wrap(errs.EncodeError, "bgzf: write payload", err)
	}
	crc := crc32.ChecksumIEEE(src)
	if err := writeTrailer(buf, crc, uint32(len(src))); err != nil {
		return 0, errs.Wrap(errs.EncodeError, "bgzf: write trailer", err)
	}
	return buf.Len(), nil
}

// Status distinguishes the outcomes of a Decoder.DecodeInto call. It is
// an alias of stream.DecoderStatus so that *Decoder satisfies
// stream.Decoder without an adapter: the decode worker's contract is
// defined once, in stream, and this codec implements it directly.
type Status = stream.DecoderStatus

const (
	Decoded = stream.Decoded
	Eof     = stream.EOF
	Error   = stream.Failed
)

// Decoder reads a sequence of bgzf blocks from an underlying reader and
// exposes them through the core's Decoder contract:
// SizeofTargetAlloc/DecodeInto. A block larger than the caller's buffer
// is handed back across successive DecodeInto calls.
type Decoder struct {
	r       io.Reader
	pending []byte
}

// NewDecoder wraps r, which must produce a well-formed bgzf stream
// terminated by EOFMarker.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// SizeofTargetAlloc reports the buffer size the decode worker should
// allocate to guarantee a single DecodeInto call can hand back an
// entire decompressed block.
func (d *Decoder) SizeofTargetAlloc() int { return MaxISIZE }

// DecodeInto decompresses the next block (or the remainder of a
// previous block too large for an earlier buffer) into buf, returning
// the number of bytes written.
func (d *Decoder) DecodeInto(buf []byte) (int, Status, error) {
	if len(d.pending) > 0 {
		n := copy(buf, d.pending)
		d.pending = d.pending[n:]
		return n, Decoded, nil
	}

	block, eof, err := d.readBlock()
	if err != nil {
		return 0, Error, err
	}
	if eof {
		return 0, Eof, nil
	}
	n := copy(buf, block)
	if n < len(block) {
		d.pending = block[n:]
	}
	return n, Decoded, nil
}

// readBlock reads one complete bgzf block and decompresses its payload.
// eof is true once the fixed end-of-stream marker (an empty block) is
// observed.
func (d *Decoder) readBlock() (block []byte, eof bool, err error) {
	hdr, err := readHeader(d.r)
	if err == io.EOF {
		return nil, false, errProtocolViolation("bgzf stream truncated before end-of-stream marker")
	}
	if err != nil {
		return nil, false, err
	}
	if hdr.bsize == len(EOFMarker) {
		payloadLen := hdr.bsize - headerSize - hdr.xlen - trailerSize
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(d.r, payload); err != nil {
			return nil, false, errs.Wrap(errs.IoRead, "bgzf: read eof marker payload", err)
		}
		var trailer [trailerSize]byte
		if _, err := io.ReadFull(d.r, trailer[:]); err != nil {
			return nil, false, errs.Wrap(errs.IoRead, "bgzf: read eof marker trailer", err)
		}
		return nil, true, nil
	}

	payloadLen := hdr.bsize - headerSize - hdr.xlen - trailerSize
	if payloadLen < 0 {
		return nil, false, errProtocolViolation("bsize smaller than header+trailer overhead")
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return nil, false, errs.Wrap(errs.IoRead, "bgzf: read payload", err)
	}

	var trailer [trailerSize]byte
	if _, err := io.ReadFull(d.r, trailer[:]); err != nil {
		return nil, false, errs.Wrap(errs.IoRead, "bgzf: read trailer", err)
	}
	wantCRC := uint32(trailer[0]) | uint32(trailer[1])<<8 | uint32(trailer[2])<<16 | uint32(trailer[3])<<24
	isize := uint32(trailer[4]) | uint32(trailer[5])<<8 | uint32(trailer[6])<<16 | uint32(trailer[7])<<24

	fr := flate.NewReader(bytes.NewReader(payload))
	defer fr.Close()
	raw := make([]byte, isize)
	if _, err := io.ReadFull(fr, raw); err != nil {
		return nil, false, errs.Wrap(errs.DecodeError, "bgzf: inflate payload", err)
	}
	if crc32.ChecksumIEEE(raw) != wantCRC {
		return nil, false, errProtocolViolation("bgzf: trailer CRC-32 mismatch")
	}
	return raw, false, nil
}
