package web

// limiter.go bounds the number of conversions running at once.
//
// A conversion holds its whole CSV in memory while rows are converted, so the
// server admits at most maxConcurrent of them. A request waits up to maxWait
// for a slot and then fails with errBusy. Shutdown waits for running
// conversions through drain.

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errBusy = errors.New("too many conversions in progress")

type convertLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	wg      sync.WaitGroup
}

func newConvertLimiter(maxConcurrent int, maxWait time.Duration) *convertLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &convertLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// acquire takes a slot. The caller must call release when done.
func (l *convertLimiter) acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.wg.Add(1)
		return nil
	case <-timer.C:
		return errBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *convertLimiter) release() {
	<-l.slots
	l.wg.Done()
}

// active returns the number of conversions holding a slot.
func (l *convertLimiter) active() int {
	return len(l.slots)
}

// drain blocks until running conversions finish or ctx is done.
func (l *convertLimiter) drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
