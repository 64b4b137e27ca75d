package orch

import (
	"context"
	"errors"

	"github.com/dkeye/jamhub/internal/app"
	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrRoomMismatch = errors.New("message addressed to another room")

// Orchestrator drives relay sessions: membership changes and the notices
// they cause, directed forwarding, media-state and chat fan-out.
type Orchestrator struct {
	Registry *app.Registry
	Relay    *app.Relay
}

func New(reg *app.Registry, relay *app.Relay) *Orchestrator {
	return &Orchestrator{Registry: reg, Relay: relay}
}

func (o *Orchestrator) Connect(sess core.MemberSession, cancel context.CancelFunc) {
	o.Registry.BindSignal(sess, cancel)
}

// OnDisconnect is the terminal path of a relay session, whatever closed it.
func (o *Orchestrator) OnDisconnect(id domain.ParticipantID) {
	if o.Leave(id) {
		log.Info().Str("module", "orch").Str("participant", string(id)).Msg("left on disconnect")
	}
	o.Registry.Unbind(id)
}

// Chat stamps and fans out a chat message to the sender's room, sender included.
func (o *Orchestrator) Chat(from domain.ParticipantID, roomID domain.RoomID, body string) (domain.ChatMessage, error) {
	current, _, ok := o.Registry.RoomOf(from)
	if !ok {
		return domain.ChatMessage{}, app.ErrNotInRoom
	}
	if current != roomID {
		return domain.ChatMessage{}, ErrRoomMismatch
	}
	return o.Relay.PublishChat(from, body)
}
