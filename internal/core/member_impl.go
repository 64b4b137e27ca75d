package core

import "github.com/dkeye/jamhub/internal/domain"

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	meta domain.Participant
	conn SignalConnection
}

func NewMemberSession(meta domain.Participant, conn SignalConnection) MemberSession {
	return &memberSession{meta: meta, conn: conn}
}

func (m *memberSession) Participant() domain.Participant { return m.meta }
func (m *memberSession) Signal() SignalConnection        { return m.conn }

// WithRoom returns a copy bound to another room; sessions stay immutable once shared.
func (m *memberSession) WithRoom(room domain.RoomID) MemberSession {
	meta := m.meta
	meta.RoomID = room
	return &memberSession{meta: meta, conn: m.conn}
}
