// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package writer

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/bascet/arena"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// compressJob is one unit of work submitted to the compression worker
// pool: a dense, monotonically assigned index and the raw page view to
// compress. The index lets workers complete out of order while the
// OrderedChannel reassembles the writer's output in submission order.
type compressJob struct {
	index int64
	raw   arena.View
}

type pad [64]byte

// jobQueue is an FAA-based SCQ (Scalable Circular Queue) MPMC bounded
// queue specialised to compressJob, ported algorithm-for-algorithm from
// _examples/hayabusa-cloud-lfq/mpmc.go's MPMC[T] (Nikolaev's SCQ,
// DISC 2019): blind Fetch-And-Add position counters over 2n physical
// slots for capacity n, with a cycle tag per slot for ABA-safe
// validation. Only the payload type changes; the compression pool is
// this module's one genuinely multi-producer multi-consumer queue, so
// it is the natural place to keep exercising the teacher's MPMC rather
// than reimplementing a simpler mutex-guarded one.
type jobQueue struct {
	_         pad
	tail      atomix.Uint64
	_         pad
	head      atomix.Uint64
	_         pad
	threshold atomix.Int64
	_         pad
	draining  atomix.Bool
	_         pad
	buffer    []jobSlot
	capacity  uint64
	size      uint64
	mask      uint64
}

type jobSlot struct {
	cycle atomix.Uint64
	data  compressJob
}

// errWouldBlock aliases iox.ErrWouldBlock, mirroring
// hayabusa-cloud-lfq/errors.go's own ErrWouldBlock: Enqueue returns it
// when the queue is full, Dequeue when empty.
var errWouldBlock = iox.ErrWouldBlock

func newJobQueue(capacity int) *jobQueue {
	n := uint64(roundToPow2(capacity))
	size := n * 2

	q := &jobQueue{
		buffer:   make([]jobSlot, size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	q.threshold.StoreRelaxed(3*int64(n) - 1)
	for i := uint64(0); i < size; i++ {
		q.buffer[i].cycle.StoreRelaxed(i / n)
	}
	return q
}

func (q *jobQueue) enqueue(job compressJob) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadAcquire()
		if tail >= head+q.capacity {
			return errWouldBlock
		}

		myTail := q.tail.AddAcqRel(1) - 1
		slot := &q.buffer[myTail&q.mask]
		expectedCycle := myTail / q.capacity
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			slot.data = job
			slot.cycle.StoreRelease(expectedCycle + 1)
			q.threshold.StoreRelaxed(3*int64(q.capacity) - 1)
			return nil
		}
		if int64(slotCycle) < int64(expectedCycle) {
			return errWouldBlock
		}
		sw.Once()
	}
}

// drain signals no more jobs will be enqueued, letting dequeue skip the
// livelock-prevention threshold check so workers can drain the tail.
func (q *jobQueue) drain() { q.draining.StoreRelease(true) }

func (q *jobQueue) dequeue() (compressJob, error) {
	if !q.draining.LoadAcquire() && q.threshold.LoadRelaxed() < 0 {
		return compressJob{}, errWouldBlock
	}

	sw := spin.Wait{}
	for {
		myHead := q.head.AddAcqRel(1) - 1
		slot := &q.buffer[myHead&q.mask]
		expectedCycle := myHead/q.capacity + 1
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			job := slot.data
			slot.data = compressJob{}
			nextEnqCycle := (myHead + q.size) / q.capacity
			slot.cycle.StoreRelease(nextEnqCycle)
			return job, nil
		}

		if int64(slotCycle) < int64(expectedCycle) {
			nextEnqCycle := (myHead + q.size) / q.capacity
			slot.cycle.CompareAndSwapAcqRel(slotCycle, nextEnqCycle)

			tail := q.tail.LoadAcquire()
			if tail <= myHead+1 {
				q.catchup(tail, myHead+1)
				q.threshold.AddAcqRel(-1)
				return compressJob{}, errWouldBlock
			}
			if q.threshold.AddAcqRel(-1) <= 0 && !q.draining.LoadAcquire() {
				return compressJob{}, errWouldBlock
			}
		}
		sw.Once()
	}
}

func (q *jobQueue) catchup(tail, head uint64) {
	for tail < head {
		if q.tail.CompareAndSwapRelaxed(tail, head) {
			break
		}
		tail = q.tail.LoadRelaxed()
		head = q.head.LoadRelaxed()
	}
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
