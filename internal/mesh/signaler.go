package mesh

import (
	"context"

	"github.com/dkeye/jamhub/internal/protocol"
)

// Signaler is the relay session of one join: opened by Join, closed by Leave.
type Signaler interface {
	// Send must not block; a full queue is reported as an error.
	Send(protocol.Message) error
	Close() error
}

// SignalHandler receives relay traffic. HandleSignal is called from a single
// goroutine in arrival order.
type SignalHandler interface {
	HandleSignal(protocol.Message)
	SignalClosed(error)
}

type Dialer func(ctx context.Context, h SignalHandler) (Signaler, error)

// relayEvents tags relay callbacks with the join they belong to, so traffic
// of a finished join is recognised as stale.
type relayEvents struct {
	o   *Orchestrator
	gen uint64
}

func (e relayEvents) HandleSignal(m protocol.Message) { e.o.handleRelay(e.gen, m) }
func (e relayEvents) SignalClosed(err error)          { e.o.relayClosed(e.gen, err) }
