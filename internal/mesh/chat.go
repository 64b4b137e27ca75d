package mesh

import (
	"errors"

	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
)

var ErrEmptyMessage = errors.New("empty chat message")

// SendChat hands body to the relay. The message shows up in the log only
// when the relay echoes it back, stamped and in room order.
func (o *Orchestrator) SendChat(body string) error {
	body, err := domain.NormalizeChatBody(body)
	if errors.Is(err, domain.ErrChatBodyEmpty) {
		return ErrEmptyMessage
	}
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != phaseJoined {
		return ErrNotJoined
	}
	if !o.relayUp {
		return ErrRelayLost
	}
	return o.sig.Send(protocol.Message{Type: protocol.TypeChatMessage, RoomID: o.self.RoomID, Body: body})
}

func (o *Orchestrator) onChatLocked(m protocol.Message) bool {
	o.chat = append(o.chat, m.Chat())
	return true
}
