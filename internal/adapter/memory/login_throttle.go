package memory

import (
	"context"
	"sync"
	"time"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/jonboulle/clockwork"
)

type failureRecord struct {
	count int
	last  time.Time
}

// LoginThrottle is the in-process bouncer used when no Redis is configured.
type LoginThrottle struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	policy  domain.LoginBackoff
	clients map[string]*failureRecord
}

var _ domain.LoginThrottle = (*LoginThrottle)(nil)

func NewLoginThrottle(clock clockwork.Clock, policy domain.LoginBackoff) *LoginThrottle {
	return &LoginThrottle{
		clock:   clock,
		policy:  policy,
		clients: make(map[string]*failureRecord),
	}
}

func (l *LoginThrottle) Check(_ context.Context, clientKey string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.clients[clientKey]
	if !ok {
		return 0, nil
	}

	elapsed := l.clock.Since(rec.last)
	if l.policy.Forget > 0 && elapsed >= l.policy.Forget {
		delete(l.clients, clientKey)
		return 0, nil
	}

	wait := l.policy.Wait(rec.count)
	if elapsed >= wait {
		return 0, nil
	}
	return wait - elapsed, nil
}

func (l *LoginThrottle) RecordFailure(_ context.Context, clientKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.clients[clientKey]
	if !ok {
		rec = &failureRecord{}
		l.clients[clientKey] = rec
	}
	rec.count++
	rec.last = l.clock.Now()
	return nil
}

func (l *LoginThrottle) Reset(_ context.Context, clientKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.clients, clientKey)
	return nil
}
