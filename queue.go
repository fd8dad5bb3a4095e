package delivery

import (
	"context"
	"fmt"
)

// Queue is the client-facing delivery queue: durable enqueue that never
// fails loudly into the host application, asynchronous capacity enforcement,
// and coalesced drain triggers.
type Queue struct {
	store     Store
	drainer   *Drainer
	truncator *Truncator
	cfg       Config
}

// New constructs a Queue with defaults and optional settings.
func New(store Store, transport Transport, opts ...Option) *Queue {
	if store == nil {
		panic("delivery: nil Store")
	}
	if transport == nil {
		panic("delivery: nil Transport")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Queue{
		store:     store,
		drainer:   newDrainer(store, transport, cfg),
		truncator: newTruncator(store, cfg),
		cfg:       cfg,
	}
}

// Enqueue durably stores a payload and returns its id. Storage failures are
// reported to the ErrorSink and yield a zero id; the caller is never blocked
// or crashed by them. Each successful enqueue fires an asynchronous
// truncation pass and a drain trigger without waiting on either.
func (q *Queue) Enqueue(ctx context.Context, resource ResourceType, body []byte) ID {
	if len(body) == 0 {
		q.cfg.Sink.Report(ctx, fmt.Errorf("delivery enqueue %s: %w", resource, ErrBodyRequired))

		return ""
	}

	id, err := q.store.Enqueue(ctx, resource, body)
	if err != nil {
		q.cfg.Sink.Report(ctx, fmt.Errorf("delivery enqueue %s failed: %w", resource, err))

		return ""
	}
	q.cfg.Logger.Debug("payload enqueued", "resource", resource, "id", id)

	truncateCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				q.cfg.Sink.Report(truncateCtx, fmt.Errorf("%w: %v", ErrDrainPanic, rec))
			}
		}()
		q.truncator.Truncate(truncateCtx, resource)
	}()
	q.drainer.Kick(resource)

	return id
}

// Flush synchronously drains one resource type until it is empty or a
// retryable failure leaves the head in place. It reports whether any
// delivery attempt was made.
func (q *Queue) Flush(ctx context.Context, resource ResourceType) bool {
	return q.drainer.DrainOnce(ctx, resource)
}

// Compact synchronously runs one truncation pass for the resource type and
// reports whether the pass ran.
func (q *Queue) Compact(ctx context.Context, resource ResourceType) bool {
	return q.truncator.Truncate(ctx, resource)
}

// Kick schedules an asynchronous drain pass for the resource type, e.g. on
// connectivity restoration or app resume.
func (q *Queue) Kick(resource ResourceType) {
	q.drainer.Kick(resource)
}

// Run drains the configured resource types until the context is canceled.
func (q *Queue) Run(ctx context.Context) error {
	return q.drainer.Run(ctx)
}
