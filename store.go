package delivery

import "context"

// Store is durable FIFO storage for payloads, keyed by resource type.
//
// Implementations must guarantee that Peek and List observe payloads in
// creation order, that Remove is idempotent, and that a payload only
// disappears through Remove or corrupt-entry self-healing. They are not
// required to coordinate across processes; a store belongs to a single
// process at a time.
//
// Backends return ordinary errors. The never-propagate policy of the queue
// lives one layer up: Queue, Drainer and Truncator terminate every storage
// failure in the ErrorSink.
type Store interface {
	// Enqueue durably writes a new payload with a zero retry count and
	// returns its assigned id.
	Enqueue(ctx context.Context, resource ResourceType, body []byte) (ID, error)
	// Peek returns the oldest payload without removing it, or ErrNoPayloads.
	// Implementations delete undecodable records and move on to the next
	// oldest entry instead of surfacing them.
	Peek(ctx context.Context, resource ResourceType) (Payload, error)
	// Remove deletes a payload. Removing an id that no longer exists is a
	// no-op, not an error.
	Remove(ctx context.Context, id ID) error
	// Update applies a shallow merge over the stored record and rewrites it
	// durably. It returns ErrNotFound when the record no longer exists.
	Update(ctx context.Context, id ID, update PayloadUpdate) error
	// List returns the ids pending for a resource type in creation order.
	List(ctx context.Context, resource ResourceType) ([]ID, error)
}
