package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

const loginKeyPrefix = "login:failures:"

// recordFailureScript bumps the failure count, stamps the time of the
// failure and refreshes the key's expiry in one round trip.
// ARGV: [1]=now_ms, [2]=forget_ms
var recordFailureScript = goredis.NewScript(`
local count = redis.call('HINCRBY', KEYS[1], 'count', 1)
redis.call('HSET', KEYS[1], 'last', ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return count
`)

// LoginThrottle keeps failed-login history in Redis so every instance
// behind a load balancer sees the same counts.
type LoginThrottle struct {
	rdb    *goredis.Client
	clock  clockwork.Clock
	policy domain.LoginBackoff
}

var _ domain.LoginThrottle = (*LoginThrottle)(nil)

func NewLoginThrottle(rdb *goredis.Client, clock clockwork.Clock, policy domain.LoginBackoff) *LoginThrottle {
	return &LoginThrottle{rdb: rdb, clock: clock, policy: policy}
}

func loginKey(clientKey string) string {
	return loginKeyPrefix + clientKey
}

func (l *LoginThrottle) Check(ctx context.Context, clientKey string) (time.Duration, error) {
	vals, err := l.rdb.HMGet(ctx, loginKey(clientKey), "count", "last").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read login failures: %w", err)
	}

	count, ok1 := parseInt(vals[0])
	lastMs, ok2 := parseInt(vals[1])
	if !ok1 || !ok2 {
		return 0, nil
	}

	elapsed := l.clock.Since(time.UnixMilli(lastMs))
	if l.policy.Forget > 0 && elapsed >= l.policy.Forget {
		return 0, nil
	}

	wait := l.policy.Wait(int(count))
	if elapsed >= wait {
		return 0, nil
	}
	return wait - elapsed, nil
}

func (l *LoginThrottle) RecordFailure(ctx context.Context, clientKey string) error {
	forget := l.policy.Forget
	if forget <= 0 {
		forget = l.policy.MaxWait
	}
	err := recordFailureScript.Run(ctx, l.rdb, []string{loginKey(clientKey)},
		l.clock.Now().UnixMilli(),
		forget.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	return nil
}

func (l *LoginThrottle) Reset(ctx context.Context, clientKey string) error {
	if err := l.rdb.Del(ctx, loginKey(clientKey)).Err(); err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	return nil
}

func parseInt(v any) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

