package signal

import "github.com/dkeye/jamhub/internal/protocol"

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	ctl.send(conn, protocol.Message{Type: protocol.TypePong})
}
