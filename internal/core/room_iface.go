package core

import (
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	ID() domain.RoomID
	MemberCount() int
	MembersSnapshot() []domain.Participant

	// Add returns the members present before the session joined.
	// ok is false when the room was already released and must not be used.
	Add(ms MemberSession) (existing []domain.Participant, ok bool)
	// Remove reports whether the member was present and whether the room is
	// now empty. An emptied room is closed and rejects further Add calls.
	Remove(id domain.ParticipantID) (removed, empty bool)
	Member(id domain.ParticipantID) (MemberSession, bool)

	// Broadcast sends msg to every member except exclude (empty excludes nobody).
	Broadcast(exclude domain.ParticipantID, msg protocol.Message) PublishResult
	// Publish builds the message under the room's send lock, so messages
	// composed through it are observed by all members in one order.
	Publish(exclude domain.ParticipantID, compose func() protocol.Message) (protocol.Message, PublishResult)
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
	// Release drops the room entry if it still points at room.
	Release(id domain.RoomID, room RoomService)
}
