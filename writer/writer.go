// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package writer drives the write side of the pipeline: a compression
// worker pool that compresses submitted raw blocks in parallel, and a
// single write worker that reassembles the results into submission
// order and emits them to a sink.
//
// Grounded on
// _examples/original_source/bascet-core/src/writer/writer.rs (the
// encode-worker/write-worker thread split, stop-flag-driven shutdown)
// and bascet-io/src/codec/bbgz/writer.rs (submit raw chunks to a
// compression channel, spin-park for each to complete, write
// header+payload+trailer per block in order). The channel itself is
// this package's own jobQueue (an adaptation of
// _examples/hayabusa-cloud-lfq/mpmc.go) feeding N compression workers,
// whose results flow through code.hybscloud.com/bascet/ordered to the
// write worker, replacing the original's unsafe MaybeUninit slot array
// plus crossbeam::unbounded with that package's dense OrderedChannel.
package writer

import (
	"io"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/bascet/errs"
	"code.hybscloud.com/bascet/internal/backoff"
	"code.hybscloud.com/bascet/ordered"
)

// Compressor is the external collaborator the compression pool drives.
// Grounded on SnellerInc-sneller/compr.Compressor's Name/Compress
// shape, adapted to compress into a caller-supplied destination slice
// sized via CompressBound rather than returning a freshly appended one
// — the pool allocates that destination from an arena.Pool PageView, so
// the interface must let the caller pick the allocation size up front.
type Compressor interface {
	Name() string
	// CompressBound returns a safe upper bound on the compressed size
	// of n raw bytes.
	CompressBound(n int) int
	// Compress compresses src into dst (which has capacity
	// CompressBound(len(src))) and returns the number of bytes
	// written. The returned bytes are a complete self-framed block
	// (header, payload, trailer) ready to write to the sink verbatim;
	// consolidating framing into Compress lets the codec size its own
	// header fields (e.g. bgzf's BSIZE) from the final compressed
	// length without the write worker reaching back into codec
	// internals.
	Compress(dst, src []byte) (int, error)
	// EOFMarker returns the fixed byte sequence the write worker
	// appends once after the last block.
	EOFMarker() []byte
}

type compressResult struct {
	view arena.View // compressed bytes, truncated to actual length
	err  error
}

// Writer owns the compression worker pool and the write worker. Submit
// takes each block's dense index from an atomic per-writer counter, in
// call order; Close waits for every in-flight job to flush before
// returning.
type Writer struct {
	jobs       *jobQueue
	sender     *ordered.Sender[compressResult]
	nextIndex  atomic.Int64
	compressor Compressor

	workersDone sync.WaitGroup
	writeDone   chan error
	sinkFailed  atomic.Bool
}

// New starts workerCount compression workers and one write worker
// writing to sink. Each worker gets its own private arena.Pool of
// outputPagesPerWorker pages, each outputPageCapacity bytes (which must
// be at least compressor.CompressBound of the largest raw block
// submitted) — arena.Pool documents a single allocating owner per pool,
// so the pool cannot be shared across the worker goroutines the way
// original_source's bbgz writer instead sidesteps by giving every
// compression thread its own plain heap buffer.
func New(sink io.Writer, compressor Compressor, outputPagesPerWorker, outputPageCapacity, workerCount, queueCapacity int) *Writer {
	sender, receiver := ordered.New[compressResult](queueCapacity)
	w := &Writer{
		jobs:       newJobQueue(queueCapacity),
		sender:     sender,
		compressor: compressor,
		writeDone:  make(chan error, 1),
	}

	w.workersDone.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		pool := arena.New(outputPagesPerWorker, outputPageCapacity)
		go w.compressionWorker(pool)
	}
	go w.writeWorker(sink, receiver)

	go func() {
		w.workersDone.Wait()
		w.sender.Close()
	}()

	return w
}

// Submit assigns the next dense index and enqueues raw for compression.
// raw's reference is transferred to the pool; the caller must not
// release it.
func (w *Writer) Submit(raw arena.View) error {
	index := w.nextIndex.Add(1) - 1
	var wait backoff.SpinPark
	for {
		if err := w.jobs.enqueue(compressJob{index: index, raw: raw}); err == nil {
			return nil
		}
		if w.sinkFailed.Load() {
			return errs.New(errs.IoWrite, "writer: sink failed, aborting submission")
		}
		wait.Wait()
	}
}

// Close signals no further Submit calls will occur and waits for the
// write worker to flush the end-of-stream marker (or report the sink
// error that aborted it).
func (w *Writer) Close() error {
	w.jobs.drain()
	return <-w.writeDone
}

func (w *Writer) compressionWorker(pool *arena.Pool) {
	defer w.workersDone.Done()
	var wait backoff.SpinPark
	for {
		job, err := w.jobs.dequeue()
		if err != nil {
			if w.jobs.draining.LoadAcquire() {
				return
			}
			wait.Wait()
			continue
		}
		wait.Reset()
		w.compress(pool, job)
	}
}

// compress runs on exactly one compression-worker goroutine at a time
// for the given pool, satisfying arena.Pool's single-allocating-owner
// contract: pool is this worker's own private pool, never shared.
func (w *Writer) compress(pool *arena.Pool, job compressJob) {
	raw := job.raw.Bytes()

	bound := w.compressor.CompressBound(len(raw))
	dst, err := pool.Alloc(bound)
	if err != nil {
		w.sender.Send(uint64(job.index), compressResult{err: err})
		job.raw.Release()
		return
	}

	n, err := w.compressor.Compress(dst.Bytes(), raw)
	result := compressResult{err: err}
	if err == nil {
		result.view = dst.Truncate(n)
	} else {
		dst.Release()
	}
	job.raw.Release()
	w.sender.Send(uint64(job.index), result)
}

func (w *Writer) writeWorker(sink io.Writer, receiver *ordered.Receiver[compressResult]) {
	for {
		result, err := receiver.Recv()
		if err == ordered.ErrDisconnected {
			w.writeDone <- w.finish(sink)
			return
		}
		if result.err != nil {
			w.abort(result.err)
			w.writeDone <- result.err
			return
		}
		if err := w.writeBlock(sink, result); err != nil {
			w.abort(err)
			w.writeDone <- err
			return
		}
	}
}

func (w *Writer) writeBlock(sink io.Writer, result compressResult) error {
	defer result.view.Release()
	if _, err := sink.Write(result.view.Bytes()); err != nil {
		return errs.Wrap(errs.IoWrite, "writer: write compressed block", err)
	}
	return nil
}

func (w *Writer) finish(sink io.Writer) error {
	if _, err := sink.Write(w.compressor.EOFMarker()); err != nil {
		return errs.Wrap(errs.IoWrite, "writer: write end-of-stream marker", err)
	}
	if f, ok := sink.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return errs.Wrap(errs.IoWrite, "writer: flush sink", err)
		}
	}
	return nil
}

// abort sets the shared stop flag the compression workers and Submit
// observe at their next block boundary, matching spec.md §7's "sink
// write errors set a stop flag... pending work may be dropped."
func (w *Writer) abort(err error) {
	w.sinkFailed.Store(true)
	w.jobs.drain()
}
