// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/internal/backoff"
	"code.hybscloud.com/bascet/ring"
)

// Decoder is the external collaborator the decode worker drives,
// mirroring original_source's Decode trait (DecodeStatus::{Decoded,
// Eof, Error}) with a Go-idiomatic (n, Status, error) return instead of
// an enum carrying a payload. SizeofTargetAlloc reports how large a
// buffer DecodeInto needs to guarantee it can return one whole block in
// a single call; bgzf.Decoder is this module's concrete implementation.
type Decoder interface {
	SizeofTargetAlloc() int
	DecodeInto(buf []byte) (n int, status DecoderStatus, err error)
}

// DecoderStatus mirrors bgzf.Status without importing the bgzf package
// from stream: any Decoder implementation reports through these three
// values.
type DecoderStatus int

const (
	Decoded DecoderStatus = iota
	EOF
	Failed
)

// DecodeWorker owns the source-of-truth loop original_source's
// BGZFDecoder::decode drives by hand: alloc a page from pool, decode
// one block into it, push the result onto ring, repeat until Eof or
// Error. It runs on its own goroutine, started by Run; it is the ring's
// single producer.
type DecodeWorker struct {
	decoder Decoder
	pool    *arena.Pool
	ring    *ring.SPSC[arena.View]
}

// NewDecodeWorker builds a worker that decodes through decoder,
// allocating each block's backing storage from pool (which must have a
// page capacity of at least decoder.SizeofTargetAlloc()) and pushing
// arena.View values onto ring.
func NewDecodeWorker(decoder Decoder, pool *arena.Pool, ring *ring.SPSC[arena.View]) *DecodeWorker {
	return &DecodeWorker{decoder: decoder, pool: pool, ring: ring}
}

// Run decodes blocks until the underlying decoder reports Eof or
// Failed, pushing a matching terminal ring.BufferState before
// returning. It blocks the calling goroutine; callers run it via `go`.
func (w *DecodeWorker) Run() {
	var wait backoff.SpinPark
	for {
		view, err := w.pool.Alloc(w.decoder.SizeofTargetAlloc())
		if err != nil {
			w.pushTerminal(ring.ErrorState[arena.View](err), &wait)
			return
		}

		n, status, err := w.decoder.DecodeInto(view.Bytes())
		switch status {
		case Decoded:
			w.pushAvailable(view.Truncate(n), &wait)
		case EOF:
			view.Release()
			w.pushTerminal(ring.EofState[arena.View](), &wait)
			return
		case Failed:
			view.Release()
			w.pushTerminal(ring.ErrorState[arena.View](err), &wait)
			return
		}
	}
}

func (w *DecodeWorker) pushAvailable(view arena.View, wait *backoff.SpinPark) {
	for {
		if err := w.ring.Push(ring.AvailableState(view)); err == nil {
			wait.Reset()
			return
		}
		wait.Wait()
	}
}

func (w *DecodeWorker) pushTerminal(state ring.BufferState[arena.View], wait *backoff.SpinPark) {
	for {
		if err := w.ring.Push(state); err == nil {
			return
		}
		wait.Wait()
	}
}
