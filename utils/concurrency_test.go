package utils

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeySetFoldsKeys(t *testing.T) {
	s := NewKeySet()

	if !s.Add("https://radlager.at") {
		t.Error("first Add should return true")
	}
	if s.Add(" HTTPS://Radlager.at ") {
		t.Error("Add of the same key in other case should return false")
	}
	if !s.Add("https://velo.at") {
		t.Error("Add of a different key should return true")
	}
	if s.Size() != 2 {
		t.Errorf("size: got %d, want 2", s.Size())
	}
}

func TestKeySetConcurrency(t *testing.T) {
	s := NewKeySet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(context.Background(), func(context.Context) {
			if s.Add("https://example.com/same") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	interval := 50 * time.Millisecond
	pool := NewWorkerPool(3, int(interval/time.Millisecond))

	var ran int64
	begin := time.Now()
	for i := 0; i < 3; i++ {
		pool.Submit(context.Background(), func(context.Context) {
			atomic.AddInt64(&ran, 1)
		})
	}
	pool.Wait()

	// Three starts need two full intervals between the first and the last.
	if elapsed := time.Since(begin); elapsed < 2*interval {
		t.Errorf("3 jobs finished in %v; want at least %v", elapsed, 2*interval)
	}
	if ran != 3 {
		t.Errorf("ran %d jobs, want 3", ran)
	}
}

func TestWorkerPoolStopsOnCancel(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	if !pool.Submit(ctx, func(context.Context) { <-release }) {
		t.Fatal("first Submit should be accepted")
	}

	cancel()
	if pool.Submit(ctx, func(context.Context) { t.Error("job ran after cancel") }) {
		t.Error("Submit should refuse jobs once ctx is done")
	}

	close(release)
	pool.Wait()
}

func TestWorkerPoolSkipsJobWaitingForTurn(t *testing.T) {
	pool := NewWorkerPool(2, int(time.Hour/time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	var ran int64
	job := func(context.Context) { atomic.AddInt64(&ran, 1) }
	pool.Submit(ctx, job)
	pool.Submit(ctx, job) // reserved an hour out

	time.Sleep(20 * time.Millisecond)
	cancel()
	pool.Wait()

	if ran != 1 {
		t.Errorf("ran %d jobs, want only the first", ran)
	}
}
