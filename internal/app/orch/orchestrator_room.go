package orch

import (
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join registers the participant, answers with the existing member list and
// notifies the others. Joining another room leaves the current one first.
func (o *Orchestrator) Join(id domain.ParticipantID, roomID domain.RoomID, displayName string) error {
	existing, left, err := o.Registry.Register(id, roomID, displayName)
	if err != nil {
		return err
	}
	if left != "" {
		o.Relay.BroadcastToRoom(left, leftNotice(id), id)
		log.Info().Str("module", "orch").Str("participant", string(id)).Str("from_room", string(left)).Msg("moved out of room")
	}

	if sess, ok := o.Registry.Session(id); ok {
		if err := sess.Signal().TrySend(protocol.Message{
			Type:          protocol.TypeExistingMembers,
			ParticipantID: id,
			RoomID:        roomID,
			Participants:  existing,
		}); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("participant", string(id)).Msg("existing-members not delivered")
		}
	}

	o.Relay.BroadcastToRoom(roomID, protocol.Message{
		Type:          protocol.TypeJoinedNotice,
		ParticipantID: id,
		DisplayName:   displayName,
	}, id)
	log.Info().Str("module", "orch").Str("participant", string(id)).Str("room", string(roomID)).Int("existing", len(existing)).Msg("joined room")
	return nil
}

// Leave removes the participant from its room and tells the remaining
// members. It reports whether the participant was in a room.
func (o *Orchestrator) Leave(id domain.ParticipantID) bool {
	roomID, ok := o.Registry.Unregister(id)
	if !ok {
		return false
	}
	o.Relay.BroadcastToRoom(roomID, leftNotice(id), id)
	log.Info().Str("module", "orch").Str("participant", string(id)).Str("room", string(roomID)).Msg("left room")
	return true
}

func leftNotice(id domain.ParticipantID) protocol.Message {
	return protocol.Message{Type: protocol.TypeLeftNotice, ParticipantID: id}
}
