package app_test

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/jamhub/internal/app"
	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
)

var errFull = errors.New("queue full")

type fakeConn struct {
	mu     sync.Mutex
	msgs   []protocol.Message
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(m protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errFull
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) received() []protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Message(nil), c.msgs...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// connect binds a new session the way the signal adapter does.
func connect(reg *app.Registry, id domain.ParticipantID) (*fakeConn, *bool) {
	conn := &fakeConn{}
	canceled := false
	_, cancel := context.WithCancel(context.Background())
	reg.BindSignal(core.NewMemberSession(domain.Participant{ID: id}, conn), func() {
		canceled = true
		cancel()
	})
	return conn, &canceled
}
