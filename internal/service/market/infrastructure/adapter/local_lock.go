package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"storefront/internal/service/market/domain/port"
)

// LocalLocker 是单进程内的 port.Locker，每个 key 一个容量为 1 的信号量。
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

var _ port.Locker = (*LocalLocker)(nil)

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, s)
		return nil, errors.Wrapf(ctx.Err(), "wait for lock %s", key)
	}

	var once sync.Once
	release := func(context.Context) error {
		once.Do(func() {
			<-s.ch
			l.unref(key, s)
		})
		return nil
	}
	return release, nil
}

func (l *LocalLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
