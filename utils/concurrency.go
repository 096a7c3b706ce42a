package utils

import (
	"context"
	"strings"
	"sync"
	"time"
)

// WorkerPool runs outbound lookups (Overpass, Wayback, shop websites) with
// bounded concurrency and a minimum spacing between job starts.
type WorkerPool struct {
	slots    chan struct{}
	interval time.Duration
	wg       sync.WaitGroup

	mu   sync.Mutex
	next time.Time // earliest start of the next job
}

// NewWorkerPool allows maxWorkers jobs at once, started at least rateLimitMs apart.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		slots:    make(chan struct{}, maxWorkers),
		interval: time.Duration(rateLimitMs) * time.Millisecond,
	}
}

// Submit blocks until a worker slot is free, then starts job. It returns
// false, without queueing job, once ctx is done. A queued job that is still
// waiting for its start slot when ctx ends is skipped.
func (wp *WorkerPool) Submit(ctx context.Context, job func(ctx context.Context)) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case wp.slots <- struct{}{}:
	case <-ctx.Done():
		return false
	}

	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.slots }()

		if wp.waitTurn(ctx) {
			job(ctx)
		}
	}()
	return true
}

// Wait blocks until every started job has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// waitTurn reserves the next start time and sleeps until it, or until ctx ends.
func (wp *WorkerPool) waitTurn(ctx context.Context) bool {
	wp.mu.Lock()
	start := time.Now()
	if wp.next.After(start) {
		start = wp.next
	}
	wp.next = start.Add(wp.interval)
	wp.mu.Unlock()

	wait := time.Until(start)
	if wait <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// KeySet is a concurrent set of dedupe keys (shop websites, name|address
// pairs). Keys are compared case-insensitively and ignore surrounding blanks.
type KeySet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewKeySet() *KeySet {
	return &KeySet{seen: make(map[string]struct{})}
}

// Add reports whether key was new.
func (s *KeySet) Add(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	return true
}

// Size is the number of distinct keys added.
func (s *KeySet) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
