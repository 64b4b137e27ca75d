package signal

import (
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleChat(
	id domain.ParticipantID,
	conn *WsSignalConn,
	msg protocol.Message,
) {
	if ctl.Limiter != nil && !ctl.Limiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("participant", string(id)).Msg("chat rate limited")
		ctl.sendError(conn, "rate_limited")
		return
	}
	if _, err := ctl.Orch.Chat(id, msg.RoomID, msg.Body); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("participant", string(id)).Msg("chat rejected")
		ctl.sendError(conn, "not_in_room")
	}
}

func (ctl *SignalWSController) handleMediaState(
	id domain.ParticipantID,
	conn *WsSignalConn,
	msg protocol.Message,
) {
	if err := ctl.Orch.MediaState(id, msg); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("participant", string(id)).Msg("media-state rejected")
		ctl.sendError(conn, "not_in_room")
	}
}
