package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyPublisher fails the first n publishes with err.
type flakyPublisher struct {
	fakePublisher
	failures int
	failErr  error
}

func (f *flakyPublisher) Publish(ctx context.Context, ev BuildEvent) error {
	f.events = append(f.events, ev)
	if f.failures > 0 {
		f.failures--
		return f.failErr
	}
	return nil
}

func fastPolicy() RetryPolicy {
	p := DefaultRetryPolicy()
	p.Backoff = time.Millisecond
	return p
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	next := &flakyPublisher{failures: 1, failErr: nats.ErrTimeout}
	dlq := NewDeadLetterQueue()

	err := WithRetry(next, fastPolicy(), dlq).Publish(context.Background(), BuildEvent{BuildID: "b-1"})
	require.NoError(t, err)
	assert.Len(t, next.events, 2)
	assert.Zero(t, dlq.Count())
}

func TestRetryExhaustionGoesToDeadLetterQueue(t *testing.T) {
	next := &flakyPublisher{failures: 10, failErr: nats.ErrConnectionClosed}
	dlq := NewDeadLetterQueue()

	err := WithRetry(next, fastPolicy(), dlq).Publish(context.Background(), BuildEvent{BuildID: "b-2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, nats.ErrConnectionClosed)
	assert.Len(t, next.events, 3)

	undelivered := dlq.Drain()
	require.Len(t, undelivered, 1)
	assert.Equal(t, "b-2", undelivered[0].Event.BuildID)
	assert.Zero(t, dlq.Count())
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	next := &flakyPublisher{failures: 10, failErr: errors.New("maximum payload exceeded")}
	dlq := NewDeadLetterQueue()

	err := WithRetry(next, fastPolicy(), dlq).Publish(context.Background(), BuildEvent{})
	require.Error(t, err)
	assert.Len(t, next.events, 1)
	assert.Equal(t, 1, dlq.Count())
}

func TestRetryStopsWhenContextEnds(t *testing.T) {
	next := &flakyPublisher{failures: 10, failErr: nats.ErrTimeout}
	policy := fastPolicy()
	policy.Backoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(next, policy, nil).Publish(ctx, BuildEvent{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, next.events, 1)
}
