// Package delivery provides a crash-tolerant delivery queue for opaque report
// payloads with pluggable storage backends.
//
// Typical flow:
//  1. The capturing side enqueues serialized payloads through a Queue; writes are
//     durable before Enqueue returns and storage failures are reported to an
//     ErrorSink instead of the caller.
//  2. A Drainer attempts delivery of the oldest payload per resource type through
//     a Transport, one payload at a time, in strict enqueue order.
//  3. On success the payload is removed; on a retryable failure its retry count is
//     incremented and it stays at the head of its queue; on a permanent failure it
//     is dropped and the failure is reported to the ErrorSink.
//
// Payloads survive process termination at any point: delivery is at-least-once,
// and a payload is only removed after a successful send or a permanent rejection.
// For the filesystem-backed store, see the file package.
package delivery
