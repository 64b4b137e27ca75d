package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/jamhub/internal/app/orch"
	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// Settings are the per-connection limits of the signaling endpoint.
type Settings struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendQueue  int
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Settings Settings
	Limiter  *RoomRateLimiter
}

func NewSignalWSController(o *orch.Orchestrator, s Settings, limiter *RoomRateLimiter) *SignalWSController {
	return &SignalWSController{Orch: o, Settings: s, Limiter: limiter}
}

type frame struct {
	kind int
	data []byte
}

// WsSignalConn implements core.SignalConnection over one websocket.
type WsSignalConn struct {
	conn  *websocket.Conn
	codec protocol.Codec
	send  chan frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(m protocol.Message) error {
	data, err := c.codec.Encode(m)
	if err != nil {
		return err
	}
	kind := websocket.TextMessage
	if c.codec.Binary() {
		kind = websocket.BinaryMessage
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- frame{kind: kind, data: data}:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the session pumps. Every
// connection becomes a fresh participant.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	codec, err := protocol.CodecByName(c.Query("codec"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := domain.NewParticipantID()
	logger := log.With().Str("module", "signal").Str("participant", string(id)).Str("client", c.GetString("client_token")).Logger()

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	logger.Info().Str("codec", codec.Name()).Msg("new WS connection")

	conn := &WsSignalConn{
		conn:  ws,
		codec: codec,
		send:  make(chan frame, ctl.Settings.SendQueue),
	}

	sess := core.NewMemberSession(domain.Participant{ID: id}, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, id, conn)
}
