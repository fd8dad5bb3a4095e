package delivery

import (
	"fmt"
	"time"
)

const maxResourceLen = 64

// ResourceType identifies a logical queue. Each resource type has independent
// ordering, capacity, and drain scheduling.
type ResourceType string

const (
	// ResourceErrors is the queue for captured error reports.
	ResourceErrors ResourceType = "errors"
	// ResourceSessions is the queue for session reports.
	ResourceSessions ResourceType = "sessions"
)

// Validate checks that the resource type is usable as a storage key: lowercase
// letters, digits and dashes, starting with a letter or digit. The character
// set excludes the underscore so that ids remain unambiguous.
func (r ResourceType) Validate() error {
	if len(r) == 0 || len(r) > maxResourceLen {
		return fmt.Errorf("%w: %q", ErrInvalidResource, string(r))
	}
	for i := 0; i < len(r); i++ {
		c := r[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' && i > 0:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidResource, string(r))
		}
	}

	return nil
}

// Payload is a stored report pending delivery.
type Payload struct {
	// ID is the store-assigned identifier; lexicographic order of ids within
	// one resource type equals creation order.
	ID ID
	// Resource is the logical queue the payload belongs to.
	Resource ResourceType
	// Body is the serialized report. The queue never interprets it.
	Body []byte
	// Retries counts failed delivery attempts. It never decreases.
	Retries int
	// CreatedAt is the enqueue time.
	CreatedAt time.Time
}

// PayloadUpdate describes a shallow merge over a stored payload record.
// Nil fields are left unchanged.
type PayloadUpdate struct {
	// Retries replaces the stored retry count when it is larger than the
	// stored value; smaller values are ignored to keep the count monotonic.
	Retries *int
}
