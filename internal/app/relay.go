package app

import (
	"errors"
	"time"

	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotInRoom  = errors.New("participant is not in a room")
	ErrTargetGone = errors.New("target participant gone")
)

// Relay forwards signaling, media-state and chat messages between members.
// It never carries media and never retries.
type Relay struct {
	Registry *Registry
	Policy   Policy
	Now      func() time.Time
}

func NewRelay(reg *Registry, policy Policy) *Relay {
	return &Relay{Registry: reg, Policy: policy, Now: time.Now}
}

// ForwardDirected delivers msg to msg.To tagged with from. Targets outside the
// sender's room count as gone; the message is dropped and ErrTargetGone
// returned for the caller to log, never to report.
func (r *Relay) ForwardDirected(from domain.ParticipantID, msg protocol.Message) error {
	roomID, sender, ok := r.Registry.RoomOf(from)
	if !ok {
		return ErrNotInRoom
	}
	targetRoom, target, ok := r.Registry.RoomOf(msg.To)
	if !ok || targetRoom != roomID {
		log.Debug().Str("module", "app.relay").Str("from", string(from)).Str("to", string(msg.To)).Str("type", string(msg.Type)).Msg("directed target gone, dropped")
		return ErrTargetGone
	}

	msg.From = from
	msg.To = ""
	if msg.Type == protocol.TypeOffer {
		msg.DisplayName = sender.Participant().DisplayName
	}
	if err := target.Signal().TrySend(msg); err != nil {
		if room, ok := r.Registry.Room(roomID); ok {
			r.applyPolicy(room, core.PublishResult{Dropped: []core.MemberSession{target}})
		}
		return err
	}
	return nil
}

// BroadcastToRoom sends msg to every member of roomID except exclude.
func (r *Relay) BroadcastToRoom(roomID domain.RoomID, msg protocol.Message, exclude domain.ParticipantID) core.PublishResult {
	room, ok := r.Registry.Room(roomID)
	if !ok {
		return core.PublishResult{}
	}
	res := room.Broadcast(exclude, msg)
	r.applyPolicy(room, res)
	return res
}

// PublishChat stamps body with the sender and the relay clock and sends it to
// the whole room, sender included.
func (r *Relay) PublishChat(from domain.ParticipantID, body string) (domain.ChatMessage, error) {
	roomID, sender, ok := r.Registry.RoomOf(from)
	if !ok {
		return domain.ChatMessage{}, ErrNotInRoom
	}
	room, ok := r.Registry.Room(roomID)
	if !ok {
		return domain.ChatMessage{}, ErrNotInRoom
	}
	msg, res := room.Publish("", func() protocol.Message {
		return protocol.NewChat(domain.NewChatMessage(sender.Participant(), body, r.Now()))
	})
	r.applyPolicy(room, res)
	return msg.Chat(), nil
}

func (r *Relay) applyPolicy(room core.RoomService, res core.PublishResult) {
	if r.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		id := slow.Participant().ID
		switch r.Policy.OnBackPressure(room, slow) {
		case KickMember:
			log.Warn().Str("module", "app.relay").Str("participant", string(id)).Msg("kicking slow member")
			r.Registry.Cancel(id)
			slow.Signal().Close()
		case DropFrame:
			log.Warn().Str("module", "app.relay").Str("participant", string(id)).Msg("send queue full, message dropped")
		case NoAction:
		}
	}
}
