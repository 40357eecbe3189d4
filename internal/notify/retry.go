package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// RetryPolicy controls how often a failed publish is attempted again.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	IsRetryable func(error) bool
}

// DefaultRetryPolicy makes 3 attempts with exponential backoff from 250ms.
// Only connection-level NATS failures and timeouts are retried.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     250 * time.Millisecond,
		IsRetryable: isTransient,
	}
}

func isTransient(err error) bool {
	switch {
	case errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrConnectionReconnecting),
		errors.Is(err, nats.ErrTimeout),
		errors.Is(err, nats.ErrNoServers),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	var tempErr interface{ Temporary() bool }
	return errors.As(err, &tempErr) && tempErr.Temporary()
}

// Undelivered is one event that could not be published.
type Undelivered struct {
	Event     BuildEvent
	Error     error
	Timestamp time.Time
}

// DeadLetterQueue keeps events whose publish failed after all attempts.
type DeadLetterQueue struct {
	mu     sync.RWMutex
	failed []Undelivered
}

func NewDeadLetterQueue() *DeadLetterQueue {
	return &DeadLetterQueue{}
}

func (q *DeadLetterQueue) Enqueue(u Undelivered) {
	q.mu.Lock()
	q.failed = append(q.failed, u)
	q.mu.Unlock()
}

// Drain returns the queued events and empties the queue.
func (q *DeadLetterQueue) Drain() []Undelivered {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.failed
	q.failed = nil
	return out
}

func (q *DeadLetterQueue) Count() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.failed)
}

// WithRetry wraps p so Publish is attempted according to policy. Events that
// still fail go to dlq when it is non-nil.
func WithRetry(p Publisher, policy RetryPolicy, dlq *DeadLetterQueue) Publisher {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.IsRetryable == nil {
		policy.IsRetryable = isTransient
	}
	return &retryingPublisher{next: p, policy: policy, dlq: dlq}
}

type retryingPublisher struct {
	next   Publisher
	policy RetryPolicy
	dlq    *DeadLetterQueue
}

func (r *retryingPublisher) Publish(ctx context.Context, ev BuildEvent) error {
	var lastErr error
	attempts := 0
retry:
	for attempts < r.policy.MaxAttempts {
		attempts++
		lastErr = r.next.Publish(ctx, ev)
		if lastErr == nil {
			return nil
		}
		if !r.policy.IsRetryable(lastErr) || attempts == r.policy.MaxAttempts {
			break
		}
		backoff := r.policy.Backoff * time.Duration(1<<uint(attempts-1))
		slog.Debug("Retrying build event publish", logfields.BuildID(ev.BuildID),
			"attempt", attempts, "backoff", backoff, logfields.Error(lastErr))
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			break retry
		case <-time.After(backoff):
		}
	}
	if r.dlq != nil {
		r.dlq.Enqueue(Undelivered{Event: ev, Error: lastErr, Timestamp: time.Now()})
	}
	return fmt.Errorf("publish failed after %d attempts: %w", attempts, lastErr)
}

func (r *retryingPublisher) Close() error { return r.next.Close() }
