package core

import "github.com/dkeye/jamhub/internal/domain"

// MemberSession binds a participant and its relay connection.
// This is what a room stores and fans out to.
type MemberSession interface {
	Participant() domain.Participant
	Signal() SignalConnection
	WithRoom(domain.RoomID) MemberSession
}
