// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/bascet/ring"
)

func TestSPSC_PushPopFIFO(t *testing.T) {
	q := ring.New[int](4)
	for i := 0; i < 4; i++ {
		if err := q.Push(ring.AvailableState(i)); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	for i := 0; i < 4; i++ {
		s, err := q.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if s.Kind != ring.Available || s.Value != i {
			t.Fatalf("Pop() = %+v, want Available(%d)", s, i)
		}
	}
}

func TestSPSC_PeekDoesNotConsume(t *testing.T) {
	q := ring.New[int](4)
	if err := q.Push(ring.AvailableState(42)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	first, err := q.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	second, err := q.Peek()
	if err != nil {
		t.Fatalf("Peek again: %v", err)
	}
	if first != second {
		t.Fatalf("Peek not idempotent: %+v != %+v", first, second)
	}
	popped, err := q.Pop()
	if err != nil || popped.Value != 42 {
		t.Fatalf("Pop after Peek: %+v, %v", popped, err)
	}
}

func TestSPSC_EmptyPopWouldBlock(t *testing.T) {
	q := ring.New[int](4)
	_, err := q.Pop()
	if !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("err = %v, want ErrWouldBlock", err)
	}
}

func TestSPSC_FullPushWouldBlock(t *testing.T) {
	q := ring.New[int](2)
	if err := q.Push(ring.AvailableState(1)); err != nil {
		t.Fatalf("Push 1: %v", err)
	}
	if err := q.Push(ring.AvailableState(2)); err != nil {
		t.Fatalf("Push 2: %v", err)
	}
	if err := q.Push(ring.AvailableState(3)); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Push on full ring: %v, want ErrWouldBlock", err)
	}
}

func TestSPSC_EofIsTerminal(t *testing.T) {
	q := ring.New[int](4)
	if err := q.Push(ring.AvailableState(1)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := q.Push(ring.EofState[int]()); err != nil {
		t.Fatalf("Push Eof: %v", err)
	}
	s, _ := q.Pop()
	if s.Kind != ring.Available {
		t.Fatalf("expected Available first, got %+v", s)
	}
	s, err := q.Pop()
	if err != nil || s.Kind != ring.Eof {
		t.Fatalf("expected Eof, got %+v, %v", s, err)
	}
}

func TestSPSC_ConcurrentProducerConsumer(t *testing.T) {
	const n = 10_000
	q := ring.New[int](64)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for q.Push(ring.AvailableState(i)) != nil {
			}
		}
		for q.Push(ring.EofState[int]()) != nil {
		}
	}()

	got := make([]int, 0, n)
	go func() {
		defer wg.Done()
		for {
			s, err := q.Pop()
			if err != nil {
				continue
			}
			if s.Kind == ring.Eof {
				return
			}
			got = append(got, s.Value)
		}
	}()

	wg.Wait()
	if len(got) != n {
		t.Fatalf("got %d items, want %d", len(got), n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order at %d: got %d", i, v)
		}
	}
}
