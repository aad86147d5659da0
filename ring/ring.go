// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring implements the single-producer/single-consumer bounded
// ring buffer that carries BufferState values between the decode worker,
// the parser, and the stream consumer.
//
// Grounded on code.hybscloud.com/lfq's SPSC: Lamport's ring buffer with
// cached-index optimisation, using code.hybscloud.com/atomix for the
// acquire/release/relaxed orderings.
package ring

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Kind distinguishes the three tags of BufferState.
type Kind int

const (
	// Available carries a value produced by the upstream worker.
	Available Kind = iota
	// Eof signals the upstream source is exhausted. Terminal.
	Eof
	// Error signals the upstream worker failed. Terminal.
	Error
)

// BufferState is the tagged union {Available(value), Eof, Error(err)}
// transported on the ring. Eof and Error are terminal: once either has
// been observed, the lane is closed and no further Push will occur.
type BufferState[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

func AvailableState[T any](v T) BufferState[T] { return BufferState[T]{Kind: Available, Value: v} }
func EofState[T any]() BufferState[T]          { return BufferState[T]{Kind: Eof} }
func ErrorState[T any](err error) BufferState[T] {
	return BufferState[T]{Kind: Error, Err: err}
}

type pad [64]byte

// SPSC is a lock-free bounded queue of BufferState[T] values with one
// producer and one consumer. Beyond Push/Pop it exposes Peek, which
// inspects the head slot without popping it — the stream consumer needs
// this to re-examine a partially consumed Available state across calls.
type SPSC[T any] struct {
	_          pad
	head       atomix.Uint64
	_          pad
	cachedTail uint64
	_          pad
	tail       atomix.Uint64
	_          pad
	cachedHead uint64
	_          pad
	buffer     []BufferState[T]
	mask       uint64
}

// New creates an SPSC ring of the given capacity, rounded up to the next
// power of two.
func New[T any](capacity int) *SPSC[T] {
	if capacity < 2 {
		panic("ring: capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	return &SPSC[T]{
		buffer: make([]BufferState[T], n),
		mask:   n - 1,
	}
}

// Cap returns the ring's capacity.
func (q *SPSC[T]) Cap() int { return int(q.mask + 1) }

// ErrWouldBlock indicates Push found the ring full, or Peek/Pop found it
// empty with no terminal state pending. The caller should back off and
// retry, typically via internal/backoff.SpinPark.
//
// This is an alias for iox.ErrWouldBlock for ecosystem consistency,
// mirroring hayabusa-cloud-lfq/errors.go's own ErrWouldBlock alias.
var ErrWouldBlock = iox.ErrWouldBlock

// Push enqueues a state (producer only).
func (q *SPSC[T]) Push(s BufferState[T]) error {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			return ErrWouldBlock
		}
	}
	q.buffer[tail&q.mask] = s
	q.tail.StoreRelease(tail + 1)
	return nil
}

// Peek returns the head state without removing it (consumer only).
func (q *SPSC[T]) Peek() (BufferState[T], error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			var zero BufferState[T]
			return zero, ErrWouldBlock
		}
	}
	return q.buffer[head&q.mask], nil
}

// Pop removes and returns the head state (consumer only).
func (q *SPSC[T]) Pop() (BufferState[T], error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			var zero BufferState[T]
			return zero, ErrWouldBlock
		}
	}
	var zero BufferState[T]
	elem := q.buffer[head&q.mask]
	q.buffer[head&q.mask] = zero
	q.head.StoreRelease(head + 1)
	return elem, nil
}

func roundToPow2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
