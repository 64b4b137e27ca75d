package signal

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Settings.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case f, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Settings.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.Settings.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, id domain.ParticipantID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("participant", string(id)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(id)
		if ctl.Limiter != nil {
			ctl.Limiter.Forget(id)
		}
		cancel()
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.Settings.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.Settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.Settings.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("participant", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("participant", string(id)).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(ctl.Settings.PongWait))
			ctl.handleSignal(id, c, data)
		}
	}
}

// handleSignal decodes one frame and dispatches it. Malformed frames are
// logged and answered with an error; the session continues.
func (ctl *SignalWSController) handleSignal(id domain.ParticipantID, c *WsSignalConn, data []byte) {
	msg, err := c.codec.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("participant", string(id)).Msg("bad frame")
		ctl.sendError(c, "bad_payload")
		return
	}
	protocol.Normalize(&msg)
	if err := protocol.Validate(msg); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("participant", string(id)).Str("type", string(msg.Type)).Msg("invalid message")
		if errors.Is(err, protocol.ErrUnknownType) {
			ctl.sendError(c, "unknown_type")
		} else {
			ctl.sendError(c, "bad_payload")
		}
		return
	}

	if msg.Type.Directed() {
		ctl.handleDirected(id, msg)
		return
	}
	switch msg.Type {
	case protocol.TypeJoinRoom:
		ctl.handleJoin(id, c, msg)
	case protocol.TypeLeaveRoom:
		ctl.handleLeave(id)
	case protocol.TypePing:
		ctl.handlePing(c)
	case protocol.TypeMediaState:
		ctl.handleMediaState(id, c, msg)
	case protocol.TypeChatMessage:
		ctl.handleChat(id, c, msg)
	}
}

func (ctl *SignalWSController) send(c *WsSignalConn, m protocol.Message) {
	if err := c.TrySend(m); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("type", string(m.Type)).Msg("send")
	}
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, reason string) {
	ctl.send(c, protocol.NewError(reason))
}
