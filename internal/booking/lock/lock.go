// Package lock serializes writers per seat so that reading the current
// bookings of a seat, checking conflicts and writing the result happen
// as one unit.
package lock

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrSeatBusy is returned when a seat stays locked by another writer for
// every retry.
var ErrSeatBusy = errors.New("seat is being modified by another request")

// Locker holds short-lived per-seat locks owned by an opaque token.
type Locker interface {
	LockSeat(ctx context.Context, seat int, owner string) (bool, error)
	UnlockSeat(ctx context.Context, seat int, owner string) error
}

// Options control how long Acquire keeps retrying a busy seat.
type Options struct {
	Retries    int
	RetryDelay time.Duration
}

// Acquire locks every seat in seats for owner, retrying busy seats, and
// returns a release func. Seats are taken in ascending order so two
// writers moving bookings between the same seats cannot deadlock.
// On failure nothing stays locked.
func Acquire(ctx context.Context, l Locker, seats []int, owner string, opts Options) (func(), error) {
	ordered := uniqueSorted(seats)
	held := make([]int, 0, len(ordered))

	release := func() {
		// Release must work even after the request context is cancelled.
		bg := context.Background()
		for i := len(held) - 1; i >= 0; i-- {
			_ = l.UnlockSeat(bg, held[i], owner)
		}
	}

	for _, seat := range ordered {
		ok, err := lockWithRetry(ctx, l, seat, owner, opts)
		if err != nil {
			release()
			return nil, err
		}
		if !ok {
			release()
			return nil, ErrSeatBusy
		}
		held = append(held, seat)
	}
	return release, nil
}

func lockWithRetry(ctx context.Context, l Locker, seat int, owner string, opts Options) (bool, error) {
	for attempt := 0; ; attempt++ {
		ok, err := l.LockSeat(ctx, seat, owner)
		if err != nil || ok {
			return ok, err
		}
		if attempt >= opts.Retries {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}
}

func uniqueSorted(seats []int) []int {
	out := append([]int(nil), seats...)
	sort.Ints(out)
	j := 0
	for i, s := range out {
		if i > 0 && s == out[j-1] {
			continue
		}
		out[j] = s
		j++
	}
	return out[:j]
}
