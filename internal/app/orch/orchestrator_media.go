package orch

import (
	"errors"

	"github.com/dkeye/jamhub/internal/app"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Forward relays an offer, answer or candidate to its single target.
// A departed target is not an error for the sender.
func (o *Orchestrator) Forward(from domain.ParticipantID, msg protocol.Message) {
	err := o.Relay.ForwardDirected(from, msg)
	switch {
	case err == nil:
	case errors.Is(err, app.ErrTargetGone):
	default:
		log.Warn().Err(err).Str("module", "orch").Str("from", string(from)).Str("to", string(msg.To)).Str("type", string(msg.Type)).Msg("directed message not delivered")
	}
}

// MediaState broadcasts the sender's mute/camera pair to the rest of its room.
func (o *Orchestrator) MediaState(from domain.ParticipantID, msg protocol.Message) error {
	roomID, _, ok := o.Registry.RoomOf(from)
	if !ok {
		return app.ErrNotInRoom
	}
	if msg.RoomID != roomID {
		return ErrRoomMismatch
	}
	out := protocol.NewMediaState(roomID, msg.MediaState())
	out.From = from
	o.Relay.BroadcastToRoom(roomID, out, from)
	return nil
}
