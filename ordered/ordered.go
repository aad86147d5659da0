// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ordered implements the dense-index reassembly channel: many
// concurrent producers submit (index, value) pairs out of order, and a
// single consumer receives them back in strictly ascending index order.
//
// A fast path holds the next N admissible indices in a flat array; values
// submitted further ahead overflow to a slow, unbounded queue that the
// receiver later drains into an offset-indexed deque.
//
// Grounded on original_source/bascet-core/src/utils/channel/ordered.rs's
// ordered_dense: an Arc'd fast-path array of (AtomicBool, T) slots guarded
// by a base admission window, backed by a crossbeam unbounded channel for
// the slow path. Go has no unbounded channel primitive, so the slow path
// here is a mutex-guarded growable queue in the style of
// code.hybscloud.com/lfq's MPMC (FAA-driven submission, single draining
// consumer).
package ordered

import (
	"errors"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/bascet/internal/backoff"
)

// ErrDisconnected is returned by Receiver.Recv once every Sender has
// closed and both the fast and slow paths are exhausted.
var ErrDisconnected = errors.New("ordered: disconnected")

type fastpath[T any] struct {
	base   atomic.Uint64
	isInit []atomic.Bool
	slots  []T
	n      uint64
}

type slowItem[T any] struct {
	index uint64
	value T
}

// slowQueue is the unbounded multi-producer single-consumer overflow path.
// Submitters append under a mutex; the single receiver drains it
// non-blockingly via tryRecv, mirroring crossbeam's try_recv semantics.
type slowQueue[T any] struct {
	mu      sync.Mutex
	items   []slowItem[T]
	senders atomic.Int64
	closed  atomic.Bool
}

func newSlowQueue[T any]() *slowQueue[T] {
	q := &slowQueue[T]{}
	q.senders.Store(1)
	return q
}

func (q *slowQueue[T]) send(index uint64, value T) {
	q.mu.Lock()
	q.items = append(q.items, slowItem[T]{index: index, value: value})
	q.mu.Unlock()
}

func (q *slowQueue[T]) addSender() { q.senders.Add(1) }

func (q *slowQueue[T]) closeSender() {
	if q.senders.Add(-1) == 0 {
		q.closed.Store(true)
	}
}

// tryRecv pops the oldest pending item, if any. ok is false and
// disconnected is true only once the queue is both empty and closed.
func (q *slowQueue[T]) tryRecv() (item slowItem[T], ok bool, disconnected bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 {
		item = q.items[0]
		q.items = q.items[1:]
		return item, true, false
	}
	return slowItem[T]{}, false, q.closed.Load()
}

// Sender submits values labelled with a dense, producer-assigned index.
type Sender[T any] struct {
	fast *fastpath[T]
	slow *slowQueue[T]
}

// Clone returns an independent handle sharing the same channel; each
// clone must be closed exactly once via Close.
func (s *Sender[T]) Clone() *Sender[T] {
	s.slow.addSender()
	return &Sender[T]{fast: s.fast, slow: s.slow}
}

// Close signals this handle is done submitting. Once every clone has
// closed, the receiver observes disconnection after both paths drain.
func (s *Sender[T]) Close() { s.slow.closeSender() }

// Send submits value at index. If index falls within the receiver's
// current admission window it is written directly into the fast-path
// array; otherwise it overflows to the slow queue.
func (s *Sender[T]) Send(index uint64, value T) {
	base := s.fast.base.Load()
	if index >= base && index < base+s.fast.n {
		slot := index % s.fast.n
		s.fast.slots[slot] = value
		s.fast.isInit[slot].Store(true)
		return
	}
	s.slow.send(index, value)
}

// Receiver yields values in strictly ascending index order starting at
// zero. It has exactly one owner.
type Receiver[T any] struct {
	next              uint64
	fast              *fastpath[T]
	slow              *slowQueue[T]
	slowBase          uint64
	slowDeque         []*T
	slowDisconnected  bool
	wait              backoff.SpinPark
}

// New creates a dense ordered channel whose fast path admits N in-flight
// indices ahead of the receiver's current position.
func New[T any](n int) (*Sender[T], *Receiver[T]) {
	if n < 1 {
		panic("ordered: n must be >= 1")
	}
	fp := &fastpath[T]{
		isInit: make([]atomic.Bool, n),
		slots:  make([]T, n),
		n:      uint64(n),
	}
	slow := newSlowQueue[T]()
	return &Sender[T]{fast: fp, slow: slow}, &Receiver[T]{fast: fp, slow: slow}
}

// Recv blocks (spin-park) until the next value in sequence is available,
// or returns ErrDisconnected once every sender has closed and both paths
// are exhausted.
func (r *Receiver[T]) Recv() (T, error) {
	var zero T
	for {
		slot := r.next % r.fast.n
		if r.fast.isInit[slot].Load() {
			val := r.fast.slots[slot]
			var z T
			r.fast.slots[slot] = z
			r.fast.isInit[slot].Store(false)
			if len(r.slowDeque) > 0 {
				r.slowDeque = r.slowDeque[1:]
			}
			r.advance()
			return val, nil
		}

		if r.slowDisconnected {
			r.alignSlowDeque()
			if val, ok := r.popSlowDequeFront(); ok {
				r.advance()
				return val, nil
			}
			return zero, ErrDisconnected
		}

		r.wait.Wait()

		if val, ok := r.popSlowDequeFront(); ok {
			r.advance()
			return val, nil
		}

		for {
			item, ok, disconnected := r.slow.tryRecv()
			if disconnected {
				r.slowDisconnected = true
				break
			}
			if !ok {
				break
			}
			offset := item.index - r.slowBase
			if offset == 0 {
				if len(r.slowDeque) > 0 {
					r.slowDeque = r.slowDeque[1:]
				}
				r.advance()
				return item.value, nil
			}
			r.growSlowDeque(offset)
			v := item.value
			r.slowDeque[offset] = &v
		}
	}
}

func (r *Receiver[T]) advance() {
	r.next++
	r.slowBase++
	r.fast.base.Store(r.next)
	r.wait.Reset()
}

func (r *Receiver[T]) growSlowDeque(offset uint64) {
	if int(offset) >= len(r.slowDeque) {
		grown := make([]*T, offset+1)
		copy(grown, r.slowDeque)
		r.slowDeque = grown
	}
}

func (r *Receiver[T]) popSlowDequeFront() (T, bool) {
	var zero T
	if len(r.slowDeque) == 0 || r.slowDeque[0] == nil {
		return zero, false
	}
	v := *r.slowDeque[0]
	r.slowDeque = r.slowDeque[1:]
	return v, true
}

// alignSlowDeque drops any leading slots the receiver has already passed,
// matching the Rust implementation's realignment once disconnection is
// observed mid-deque.
func (r *Receiver[T]) alignSlowDeque() {
	for r.slowBase < r.next && len(r.slowDeque) > 0 {
		r.slowDeque = r.slowDeque[1:]
		r.slowBase++
	}
}
