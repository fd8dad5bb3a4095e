// Package memory implements an in-memory delivery store for hosts and tests
// that do not need durability. It honors the same FIFO, idempotent-remove and
// monotonic-retry semantics as the durable backends.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/crashkit/delivery"
)

// Store is a mutex-guarded in-memory delivery store.
type Store struct {
	mu        sync.Mutex
	clock     delivery.Clock
	generator delivery.Generator
	queues    map[delivery.ResourceType][]entry
}

var _ delivery.Store = (*Store)(nil)

type entry struct {
	id        delivery.ID
	body      []byte
	retries   int
	createdAt time.Time
}

// Option configures the memory store.
type Option func(*Store)

// WithClock sets the time source.
func WithClock(clock delivery.Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithGenerator sets the id generator.
func WithGenerator(gen delivery.Generator) Option {
	return func(s *Store) {
		s.generator = gen
	}
}

// New constructs an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{queues: make(map[delivery.ResourceType][]entry)}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = delivery.SystemClock{}
	}
	if s.generator == nil {
		s.generator = delivery.NewMonotonicGenerator(s.clock)
	}

	return s
}

// Enqueue appends a new payload with a zero retry count.
func (s *Store) Enqueue(ctx context.Context, resource delivery.ResourceType, body []byte) (delivery.ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := resource.Validate(); err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", delivery.ErrBodyRequired
	}

	id, err := s.generator.New(resource)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.queues[resource] = append(s.queues[resource], entry{
		id:        id,
		body:      append([]byte(nil), body...),
		createdAt: s.clock.Now(),
	})

	return id, nil
}

// Peek returns the oldest payload without removing it.
func (s *Store) Peek(ctx context.Context, resource delivery.ResourceType) (delivery.Payload, error) {
	if err := ctx.Err(); err != nil {
		return delivery.Payload{}, err
	}
	if err := resource.Validate(); err != nil {
		return delivery.Payload{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[resource]
	if len(queue) == 0 {
		return delivery.Payload{}, delivery.ErrNoPayloads
	}

	return payloadFrom(resource, queue[0]), nil
}

// Remove deletes a payload; removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id delivery.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resource, err := id.Resource()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[resource]
	for i := range queue {
		if queue[i].id == id {
			s.queues[resource] = append(queue[:i], queue[i+1:]...)

			break
		}
	}

	return nil
}

// Update applies a shallow merge over the stored entry.
func (s *Store) Update(ctx context.Context, id delivery.ID, update delivery.PayloadUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resource, err := id.Resource()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[resource]
	for i := range queue {
		if queue[i].id != id {
			continue
		}
		if update.Retries != nil && *update.Retries > queue[i].retries {
			queue[i].retries = *update.Retries
		}

		return nil
	}

	return delivery.ErrNotFound
}

// List returns pending ids in creation order.
func (s *Store) List(ctx context.Context, resource delivery.ResourceType) ([]delivery.ID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := resource.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[resource]
	ids := make([]delivery.ID, 0, len(queue))
	for _, item := range queue {
		ids = append(ids, item.id)
	}

	return ids, nil
}

func payloadFrom(resource delivery.ResourceType, item entry) delivery.Payload {
	return delivery.Payload{
		ID:        item.id,
		Resource:  resource,
		Body:      append([]byte(nil), item.body...),
		Retries:   item.retries,
		CreatedAt: item.createdAt,
	}
}
