package signal

import (
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(
	id domain.ParticipantID,
	conn *WsSignalConn,
	msg protocol.Message,
) {
	log.Info().Str("module", "signal").Str("participant", string(id)).Str("room", string(msg.RoomID)).Str("name", msg.DisplayName).Msg("join")
	if err := ctl.Orch.Join(id, msg.RoomID, msg.DisplayName); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("participant", string(id)).Msg("join failed")
		ctl.sendError(conn, "join_failed")
	}
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(id domain.ParticipantID) {
	log.Info().Str("module", "signal").Str("participant", string(id)).Msg("leave")
	ctl.Orch.Leave(id)
}
