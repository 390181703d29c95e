package lock

import (
	"context"
	"sync"
)

// Local implements Locker in process memory. It is used when no Redis
// address is configured and only one service instance writes.
type Local struct {
	mu   sync.Mutex
	held map[int]string
}

func NewLocal() *Local {
	return &Local{held: make(map[int]string)}
}

func (l *Local) LockSeat(_ context.Context, seat int, owner string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[seat]; taken {
		return false, nil
	}
	l.held[seat] = owner
	return true, nil
}

func (l *Local) UnlockSeat(_ context.Context, seat int, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[seat] == owner {
		delete(l.held, seat)
	}
	return nil
}

func (l *Local) IsLocked(_ context.Context, seat int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, taken := l.held[seat]
	return taken, nil
}
