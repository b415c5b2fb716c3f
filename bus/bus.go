// Package bus defines the downstream message-bus contract the publisher
// writes to, and ships a Kafka-backed implementation plus an in-memory
// double for tests.
package bus

import "time"

// Bus is the opaque downstream collaborator the core publisher depends on.
// Implementations must make Publish safe for concurrent use and must not
// block the caller on broker round-trips beyond their own internal
// batching; failures are logged by the implementation and never returned
// to the publisher.
type Bus interface {
	// Publish sends payload to topic/partition. Errors are handled
	// internally by the implementation (logged, counted); Publish itself
	// does not return one, matching the core's "never propagate to the
	// receiver" error policy.
	Publish(topic string, partition int, payload []byte)

	// CreateOrGetTopic idempotently ensures topic is ready to receive
	// writes, returning an error only if creation itself failed.
	CreateOrGetTopic(topic string) error

	// Flush blocks until all buffered writes have been sent or timeout
	// elapses.
	Flush(timeout time.Duration) error
}
