// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"encoding/binary"
	"io"
)

// Wire format constants, grounded on
// _examples/original_source/bascet-io/src/codec/bbgz/header.rs.
const (
	id1 = 0x1F
	id2 = 0x8B
	cm  = 8 // deflate
	flg = 0b0000_0101
	xfl = 2 // best compression, matches header.rs's BBGZHeader default
	os  = 255

	headerSize  = 12
	trailerSize = 8

	// bcSubfieldSize is the mandatory BC extra subfield's wire size
	// (SI1, SI2, LEN, BSIZE): 4 bytes of subfield header plus 2 bytes
	// of data.
	bcSubfieldSize = 6
)

// EOFMarker is the standard empty BGZF end-of-stream block: a 28-byte
// block compressing zero bytes, appended after the last real block.
var EOFMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// writeHeader writes the 12-byte fixed header, an optional "ID" extra
// subfield carrying id (nil to omit it), and the mandatory "BC" extra
// subfield, which original_source's header.rs writes last "for
// compatibility with parallel bgzip tooling" — a constraint this codec
// preserves even though nothing in this module parallelises bgzip reads.
func writeHeader(w io.Writer, id []byte, compressedLen int) error {
	idSubfieldSize := 0
	if id != nil {
		idSubfieldSize = 4 + len(id)
	}
	xlen := idSubfieldSize + bcSubfieldSize
	bsize := headerSize + xlen + compressedLen + trailerSize - 1

	var buf [headerSize]byte
	buf[0] = id1
	buf[1] = id2
	buf[2] = cm
	buf[3] = flg
	binary.LittleEndian.PutUint32(buf[4:8], 0) // MTIME: unavailable
	buf[8] = xfl
	buf[9] = os
	binary.LittleEndian.PutUint16(buf[10:12], uint16(xlen))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	if id != nil {
		if err := writeExtraSubfield(w, 'I', 'D', id); err != nil {
			return err
		}
	}

	var bc [2]byte
	binary.LittleEndian.PutUint16(bc[:], uint16(bsize))
	return writeExtraSubfield(w, 'B', 'C', bc[:])
}

func writeExtraSubfield(w io.Writer, si1, si2 byte, data []byte) error {
	var hdr [4]byte
	hdr[0] = si1
	hdr[1] = si2
	binary.LittleEndian.PutUint16(hdr[2:4], uint16(len(data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func writeTrailer(w io.Writer, crc32, isize uint32) error {
	var buf [trailerSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], crc32)
	binary.LittleEndian.PutUint32(buf[4:8], isize)
	_, err := w.Write(buf[:])
	return err
}

// blockHeader is a parsed fixed header plus the BC subfield's BSIZE,
// which is the only subfield the decoder needs (total on-wire block
// size, used to know how many bytes to read for the compressed
// payload and trailer).
type blockHeader struct {
	bsize int // total block size in bytes (header + extras + payload + trailer)
	xlen  int
}

// readHeader parses the fixed 12-byte header and every extra subfield,
// returning the BC subfield's block size. It returns io.EOF only if the
// reader is exhausted before any byte of the fixed header, or before any
// byte of the extra field, is read.
func readHeader(r io.Reader) (blockHeader, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return blockHeader{}, err
	}
	if buf[0] != id1 || buf[1] != id2 || buf[2] != cm {
		return blockHeader{}, errProtocolViolation("bad magic or compression method")
	}
	xlen := int(binary.LittleEndian.Uint16(buf[10:12]))

	extra := make([]byte, xlen)
	if _, err := io.ReadFull(r, extra); err != nil {
		return blockHeader{}, err
	}

	bsize := -1
	for off := 0; off+4 <= len(extra); {
		si1, si2 := extra[off], extra[off+1]
		length := int(binary.LittleEndian.Uint16(extra[off+2 : off+4]))
		data := extra[off+4 : off+4+length]
		if si1 == 'B' && si2 == 'C' && length == 2 {
			bsize = int(binary.LittleEndian.Uint16(data)) + 1
		}
		off += 4 + length
	}
	if bsize < 0 {
		return blockHeader{}, errProtocolViolation("missing mandatory BC extra subfield")
	}
	return blockHeader{bsize: bsize, xlen: xlen}, nil
}
