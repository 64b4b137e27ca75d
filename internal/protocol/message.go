// Package protocol defines the relay wire envelope shared by the relay and its
// clients.
package protocol

import (
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/pion/webrtc/v4"
)

type Type string

const (
	TypeJoinRoom        Type = "join-room"
	TypeExistingMembers Type = "existing-members"
	TypeJoinedNotice    Type = "joined-notice"
	TypeLeaveRoom       Type = "leave-room"
	TypeLeftNotice      Type = "left-notice"
	TypeOffer           Type = "offer"
	TypeAnswer          Type = "answer"
	TypeCandidate       Type = "candidate"
	TypeMediaState      Type = "media-state"
	TypeChatMessage     Type = "chat-message"
	TypePing            Type = "ping"
	TypePong            Type = "pong"
	TypeError           Type = "error"
)

// Directed reports whether messages of this type are addressed to one participant.
func (t Type) Directed() bool {
	return t == TypeOffer || t == TypeAnswer || t == TypeCandidate
}

// SignalData carries the handshake payload of a directed message.
// Exactly one of the fields is set.
type SignalData struct {
	Description *webrtc.SessionDescription `json:"description,omitempty"`
	Candidate   *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
}

// Message is the single flat envelope of the relay protocol. Which fields are
// meaningful depends on Type.
type Message struct {
	Type Type `json:"type"`

	From domain.ParticipantID `json:"from,omitempty"`
	To   domain.ParticipantID `json:"to,omitempty"`
	Data *SignalData          `json:"data,omitempty"`

	RoomID        domain.RoomID        `json:"roomId,omitempty"`
	ParticipantID domain.ParticipantID `json:"participantId,omitempty"`
	DisplayName   string               `json:"displayName,omitempty"`
	Participants  []domain.Participant `json:"participants,omitempty"`

	IsMuted     bool `json:"isMuted,omitempty"`
	IsCameraOff bool `json:"isCameraOff,omitempty"`

	SenderID  domain.ParticipantID `json:"senderId,omitempty"`
	Body      string               `json:"body,omitempty"`
	Timestamp int64                `json:"timestamp,omitempty"`

	Error string `json:"error,omitempty"`
}

func (m Message) MediaState() domain.MediaState {
	return domain.MediaState{Muted: m.IsMuted, CameraOff: m.IsCameraOff}
}

func (m Message) Chat() domain.ChatMessage {
	return domain.ChatMessage{
		SenderID:    m.SenderID,
		DisplayName: m.DisplayName,
		Body:        m.Body,
		Timestamp:   m.Timestamp,
	}
}

func NewChat(cm domain.ChatMessage) Message {
	return Message{
		Type:        TypeChatMessage,
		SenderID:    cm.SenderID,
		DisplayName: cm.DisplayName,
		Body:        cm.Body,
		Timestamp:   cm.Timestamp,
	}
}

func NewMediaState(room domain.RoomID, st domain.MediaState) Message {
	return Message{
		Type:        TypeMediaState,
		RoomID:      room,
		IsMuted:     st.Muted,
		IsCameraOff: st.CameraOff,
	}
}

func NewError(reason string) Message {
	return Message{Type: TypeError, Error: reason}
}
