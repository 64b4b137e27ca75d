// Package wsclient is the participant side of the relay WebSocket session.
package wsclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dkeye/jamhub/internal/mesh"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendQueue      = 64
)

var (
	ErrBackpressure = errors.New("send queue full")
	ErrClosed       = errors.New("session closed")
)

// Client manages the WebSocket connection to the relay. Inbound messages are
// delivered to the handler from the read goroutine, in arrival order.
type Client struct {
	conn    *websocket.Conn
	codec   protocol.Codec
	handler mesh.SignalHandler
	log     zerolog.Logger

	outgoing  chan protocol.Message
	done      chan struct{}
	finished  chan struct{}
	closeOnce sync.Once
}

var _ mesh.Signaler = (*Client)(nil)

// Dial connects to the relay at serverURL. The codec is negotiated through
// the codec query parameter.
func Dial(ctx context.Context, serverURL string, codec protocol.Codec, h mesh.SignalHandler) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if codec.Name() != protocol.CodecJSON {
		q := u.Query()
		q.Set("codec", codec.Name())
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c := &Client{
		conn:     conn,
		codec:    codec,
		handler:  h,
		log:      log.With().Str("module", "wsclient").Str("server", u.Host).Logger(),
		outgoing: make(chan protocol.Message, sendQueue),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(c.readPump)
	g.Go(func() error { return c.writePump(gctx) })
	go func() {
		err := g.Wait()
		close(c.finished)
		c.log.Info().Err(err).Msg("relay session ended")
		h.SignalClosed(err)
	}()

	c.log.Info().Str("codec", codec.Name()).Msg("relay session open")
	return c, nil
}

// Send queues m without blocking.
func (c *Client) Send(m protocol.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.outgoing <- m:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close sends a close frame, waits for both pumps to stop and is idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	<-c.finished
	return nil
}

// readPump ends with a nil error on a normal close and on local shutdown.
func (c *Client) readPump() error {
	defer c.closeOnce.Do(func() { close(c.done) })

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		m, err := c.codec.Decode(data)
		if err != nil {
			c.log.Warn().Err(err).Msg("malformed relay message dropped")
			continue
		}
		c.handler.HandleSignal(m)
	}
}

func (c *Client) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	kind := websocket.TextMessage
	if c.codec.Binary() {
		kind = websocket.BinaryMessage
	}

	for {
		select {
		case m := <-c.outgoing:
			data, err := c.codec.Encode(m)
			if err != nil {
				c.log.Error().Err(err).Str("type", string(m.Type)).Msg("encode")
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(kind, data); err != nil {
				return err
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}

		case <-c.done:
			c.flush(kind)
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil

		case <-ctx.Done():
			return nil
		}
	}
}

// flush writes what is still queued, so a leave-room sent right before
// Close reaches the relay.
func (c *Client) flush(kind int) {
	for {
		select {
		case m := <-c.outgoing:
			data, err := c.codec.Encode(m)
			if err != nil {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(kind, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

// Dialer adapts Dial to the mesh orchestrator.
func Dialer(serverURL string, codec protocol.Codec) mesh.Dialer {
	return func(ctx context.Context, h mesh.SignalHandler) (mesh.Signaler, error) {
		c, err := Dial(ctx, serverURL, codec, h)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
