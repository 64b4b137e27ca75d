package core

import "github.com/dkeye/jamhub/internal/protocol"

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend enqueues without blocking; a full queue is backpressure.
	TrySend(protocol.Message) error
	Close()
}
