package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/csentein/P6-Sentein-Clement/internal/adapter/metrics"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestHook() (*CircuitBreakerHook, *metrics.BreakerMetrics) {
	m := metrics.NewBreakerMetrics(prometheus.NewRegistry())
	return NewCircuitBreakerHook(m), m
}

func run(hook *CircuitBreakerHook, err error) error {
	ctx := context.Background()
	process := hook.ProcessHook(func(context.Context, goredis.Cmder) error { return err })
	return process(ctx, goredis.NewStringCmd(ctx, "hmget", "key"))
}

func TestCircuitBreakerHook_NormalOperation(t *testing.T) {
	hook, _ := newTestHook()

	for loopIdx := 0; loopIdx < 10; loopIdx++ {
		assert.NoError(t, run(hook, nil))
	}
	assert.Equal(t, circuitbreaker.ClosedState, hook.State())
}

func TestCircuitBreakerHook_NilIsNotAFailure(t *testing.T) {
	hook, _ := newTestHook()

	for loopIdx := 0; loopIdx < 10; loopIdx++ {
		assert.ErrorIs(t, run(hook, goredis.Nil), goredis.Nil)
	}
	assert.Equal(t, circuitbreaker.ClosedState, hook.State())
}

func TestCircuitBreakerHook_TransientFailures(t *testing.T) {
	hook, _ := newTestHook()

	for loopIdx := 0; loopIdx < 2; loopIdx++ {
		err := run(hook, errors.New("connection refused"))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrOpen)
	}
	assert.Equal(t, circuitbreaker.ClosedState, hook.State())
}

func TestCircuitBreakerHook_OpensAndFailsFast(t *testing.T) {
	hook, m := newTestHook()

	for loopIdx := 0; loopIdx < 5; loopIdx++ {
		assert.Error(t, run(hook, errors.New("connection timeout")))
	}
	assert.Equal(t, circuitbreaker.OpenState, hook.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.State.WithLabelValues("redis")))

	called := false
	ctx := context.Background()
	process := hook.ProcessHook(func(context.Context, goredis.Cmder) error {
		called = true
		return nil
	})
	err := process(ctx, goredis.NewStringCmd(ctx, "hmget", "key"))

	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.False(t, called, "open breaker must not reach redis")
}

func TestCircuitBreakerHook_Pipeline(t *testing.T) {
	hook, _ := newTestHook()
	ctx := context.Background()

	pipeline := hook.ProcessPipelineHook(func(context.Context, []goredis.Cmder) error { return nil })
	assert.NoError(t, pipeline(ctx, nil))
}
