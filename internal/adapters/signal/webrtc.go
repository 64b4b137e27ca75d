package signal

import (
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

// handleDirected relays offers, answers and candidates verbatim; the relay
// never inspects the session descriptions.
func (ctl *SignalWSController) handleDirected(
	id domain.ParticipantID,
	msg protocol.Message,
) {
	log.Debug().Str("module", "signal").Str("participant", string(id)).Str("to", string(msg.To)).Str("type", string(msg.Type)).Msg("directed")
	ctl.Orch.Forward(id, msg)
}
