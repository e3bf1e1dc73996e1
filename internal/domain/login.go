package domain

import (
	"context"
	"time"
)

// LoginThrottle slows down repeated failed logins from one client.
type LoginThrottle interface {
	// Check returns how long the client must still wait; zero means allowed.
	Check(ctx context.Context, clientKey string) (time.Duration, error)
	RecordFailure(ctx context.Context, clientKey string) error
	Reset(ctx context.Context, clientKey string) error
}

// LoginBackoff is the brute-force bouncer policy: FreeAttempts failures pass
// untouched, then each further attempt must wait
// min(MaxWait, MinWait * 2^(n-FreeAttempts-1)) since the last failure.
type LoginBackoff struct {
	FreeAttempts int
	MinWait      time.Duration
	MaxWait      time.Duration
	// Forget drops a client's history this long after its last failure.
	Forget time.Duration
}

// Wait returns the required pause after `failures` consecutive failures.
func (p LoginBackoff) Wait(failures int) time.Duration {
	over := failures - p.FreeAttempts
	if over <= 0 {
		return 0
	}
	wait := p.MinWait
	for i := 1; i < over; i++ {
		wait *= 2
		if wait >= p.MaxWait {
			return p.MaxWait
		}
	}
	return min(wait, p.MaxWait)
}
