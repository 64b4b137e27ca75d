package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/jamhub/internal/adapters/rtc"
	"github.com/dkeye/jamhub/internal/config"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/mesh"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestCommand_LocalToggles(t *testing.T) {
	req := require.New(t)
	o := mesh.New(mesh.Options{})
	var out bytes.Buffer

	req.False(command(o, rtc.NewSinkSet(), "/mic", &out))
	req.False(command(o, rtc.NewSinkSet(), " /mic ", &out))
	req.False(command(o, rtc.NewSinkSet(), "/cam", &out))
	req.Equal("mic off\nmic on\ncamera off\n", out.String())

	// Blank lines and chat outside a room print nothing
	out.Reset()
	req.False(command(o, rtc.NewSinkSet(), "   ", &out))
	req.False(command(o, rtc.NewSinkSet(), "hello", &out))
	req.Empty(out.String())

	req.True(command(o, rtc.NewSinkSet(), "/leave", &out))
}

func TestPrintPeers(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer

	printPeers(mesh.View{RoomID: "blues", DisplayName: "A", RelayConnected: true, Local: mesh.LocalView{MicEnabled: true}}, rtc.NewSinkSet(), &out)
	req.Contains(out.String(), "room blues as A (mic on, camera off)")
	req.Contains(out.String(), "nobody else here")

	out.Reset()
	printPeers(mesh.View{
		RoomID:         "blues",
		DisplayName:    "A",
		RelayConnected: false,
		Local:          mesh.LocalView{Degraded: true},
		Peers: map[domain.ParticipantID]mesh.PeerView{
			"c": {DisplayName: "Cora", State: mesh.StateOfferSent},
			"b": {DisplayName: "Bob", State: mesh.StateConnected, Muted: true},
		},
	}, rtc.NewSinkSet(), &out)

	s := out.String()
	req.Contains(s, "degraded media, relay lost")
	req.Contains(s, "connected")
	req.Contains(s, "offer-sent")
	req.Less(strings.Index(s, "Bob"), strings.Index(s, "Cora"), "peers are listed by name")
}

func TestRunJoin_RelayUnreachable(t *testing.T) {
	req := require.New(t)
	v := viper.New()
	v.Set("server", "ws://127.0.0.1:1/api/ws/signal")
	v.Set("room", "blues")
	v.Set("name", "A")
	v.Set("ice.stun_urls", []string{})
	v.Set("ice.turn_urls", []string{})
	cfg, err := config.LoadPeer(v)
	req.NoError(err)

	err = runJoin(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{})
	req.Error(err)
}

// endless yields chat lines forever.
type endless struct{}

func (endless) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = "x\n"[i%2]
	}
	return len(p), nil
}

func TestReadLines_StopsWithSession(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	lines := readLines(ctx, endless{})
	req.Equal("x", <-lines)

	// When the session ends while input keeps coming
	cancel()

	// Then the reader gives up instead of blocking on a send nobody takes
	req.Eventually(func() bool {
		select {
		case _, ok := <-lines:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestReadLines_ClosesAtEOF(t *testing.T) {
	req := require.New(t)
	var got []string
	for l := range readLines(context.Background(), strings.NewReader("hello\n/peers\n")) {
		got = append(got, l)
	}
	req.Equal([]string{"hello", "/peers"}, got)
}
