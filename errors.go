package delivery

import "errors"

var (
	// ErrNoPayloads signals that a resource type has no pending payloads.
	ErrNoPayloads = errors.New("delivery queue has no pending payloads")
	// ErrNotFound is returned when a payload id does not exist in the store.
	ErrNotFound = errors.New("delivery payload not found")
	// ErrCorruptEntry indicates a stored record that cannot be decoded.
	ErrCorruptEntry = errors.New("delivery payload entry is corrupt")
	// ErrInvalidID is returned when parsing a payload id fails.
	ErrInvalidID = errors.New("delivery payload id is invalid")
	// ErrInvalidResource is returned when a resource type fails validation.
	ErrInvalidResource = errors.New("delivery resource type is invalid")
	// ErrBodyRequired is returned when an enqueued payload body is empty.
	ErrBodyRequired = errors.New("delivery payload body is required")
	// ErrPermanentDelivery marks a delivery failure as non-retryable.
	ErrPermanentDelivery = errors.New("delivery failed permanently")
	// ErrDrainPanic indicates a recovered panic in a drain or truncation pass.
	ErrDrainPanic = errors.New("delivery drain worker panic")
)
