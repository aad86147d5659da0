// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordered_test

import (
	"math/rand"
	"sync"
	"testing"

	"code.hybscloud.com/bascet/ordered"
)

func TestOrdered_FastPathInOrder(t *testing.T) {
	tx, rx := ordered.New[int](8)
	for i := 0; i < 8; i++ {
		tx.Send(uint64(i), i*10)
	}
	tx.Close()
	for i := 0; i < 8; i++ {
		v, err := rx.Recv()
		if err != nil {
			t.Fatalf("Recv(%d): %v", i, err)
		}
		if v != i*10 {
			t.Fatalf("Recv(%d) = %d, want %d", i, v, i*10)
		}
	}
}

func TestOrdered_OutOfOrderOverflowsToSlowPath(t *testing.T) {
	tx, rx := ordered.New[int](4)
	// N=4 admits indices [0,4); sending 5 immediately overflows.
	tx.Send(5, 500)
	tx.Send(0, 0)
	tx.Send(2, 200)
	tx.Send(1, 100)
	tx.Send(3, 300)
	tx.Send(4, 400)
	tx.Close()

	for i := 0; i < 6; i++ {
		v, err := rx.Recv()
		if err != nil {
			t.Fatalf("Recv(%d): %v", i, err)
		}
		if v != i*100 {
			t.Fatalf("Recv(%d) = %d, want %d", i, v, i*100)
		}
	}
}

func TestOrdered_DisconnectAfterDrain(t *testing.T) {
	tx, rx := ordered.New[int](2)
	tx.Send(0, 1)
	tx.Close()
	if _, err := rx.Recv(); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if _, err := rx.Recv(); err != ordered.ErrDisconnected {
		t.Fatalf("Recv after drain = %v, want ErrDisconnected", err)
	}
}

func TestOrdered_ConcurrentProducersStrictOrder(t *testing.T) {
	const total = 2000
	tx, rx := ordered.New[int](16)

	var wg sync.WaitGroup
	producers := 8
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		sender := tx.Clone()
		go func(p int) {
			defer wg.Done()
			defer sender.Close()
			r := rand.New(rand.NewSource(int64(p)))
			for i := p; i < total; i += producers {
				sender.Send(uint64(i), i)
				_ = r
			}
		}(p)
	}
	tx.Close()

	go func() {
		wg.Wait()
	}()

	for i := 0; i < total; i++ {
		v, err := rx.Recv()
		if err != nil {
			t.Fatalf("Recv(%d): %v", i, err)
		}
		if v != i {
			t.Fatalf("Recv(%d) = %d, want %d (order violated)", i, v, i)
		}
	}
	if _, err := rx.Recv(); err != ordered.ErrDisconnected {
		t.Fatalf("final Recv = %v, want ErrDisconnected", err)
	}
}
