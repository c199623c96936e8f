package errors

import (
	"context"
	"math"
	"time"
)

const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 100 * time.Millisecond
	DefaultMaxBackoff     = 2 * time.Second
	backoffMultiplier     = 2.0
)

// RetryPolicy 重试策略，MaxAttempts 为总尝试次数（含首次）
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// OnRetry 每次决定重试前回调，attempt 从 1 开始
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy 默认策略：3 次尝试，100ms 起指数退避，上限 2s
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
	}
}

// WithRetry 在瞬时故障时重复执行 fn，耗尽后原样返回最后一次错误
func WithRetry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == attempts {
			return err
		}

		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err)
		}

		timer := time.NewTimer(policy.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}

	return err
}

// backoff 第 attempt 次失败后的等待时长
func (p RetryPolicy) backoff(attempt int) time.Duration {
	initial := p.InitialBackoff
	if initial <= 0 {
		return 0
	}
	delay := time.Duration(float64(initial) * math.Pow(backoffMultiplier, float64(attempt-1)))
	if p.MaxBackoff > 0 && delay > p.MaxBackoff {
		return p.MaxBackoff
	}
	return delay
}
