package config_test

import (
	"testing"
	"time"

	"github.com/dkeye/jamhub/internal/config"
	"github.com/pion/webrtc/v4"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	req := require.New(t)
	cfg, err := config.LoadWith(viper.New(), "missing")
	req.NoError(err)

	req.Equal(8080, cfg.Port)
	req.Equal(54*time.Second, cfg.PingPeriod)
	req.Equal(60*time.Second, cfg.PongWait)
	req.Equal(64, cfg.SendQueue)
	req.Equal("drop", cfg.Backpressure)
	req.Equal(10, cfg.ChatRateLimit)
	req.Equal(config.DefaultSTUNURLs, cfg.ICE.STUNURLs)
}

func TestLoadWith_EnvOverrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("JAMHUB_PORT", "9090")
	t.Setenv("JAMHUB_BACKPRESSURE", "kick")

	cfg, err := config.LoadWith(viper.New(), "missing")
	req.NoError(err)
	req.Equal(9090, cfg.Port)
	req.Equal("kick", cfg.Backpressure)
}

func TestValidate(t *testing.T) {
	req := require.New(t)
	cfg, err := config.LoadWith(viper.New(), "missing")
	req.NoError(err)

	bad := *cfg
	bad.PingPeriod = bad.PongWait
	req.Error(bad.Validate())

	bad = *cfg
	bad.SendQueue = 0
	req.Error(bad.Validate())

	bad = *cfg
	bad.Port = 70000
	req.Error(bad.Validate())
}

func TestICEConfig_WebRTC(t *testing.T) {
	req := require.New(t)

	wc, err := config.ICEConfig{
		STUNURLs:       []string{"stun:a:3478, stun:b:3478"},
		TURNURLs:       []string{"turn:t:3478"},
		TURNUsername:   "u",
		TURNCredential: "p",
	}.WebRTC()
	req.NoError(err)
	req.Len(wc.ICEServers, 2)
	req.Equal([]string{"stun:a:3478", "stun:b:3478"}, wc.ICEServers[0].URLs)
	req.Equal("u", wc.ICEServers[1].Username)
	req.Equal(webrtc.ICECredentialTypePassword, wc.ICEServers[1].CredentialType)

	_, err = config.ICEConfig{TURNURLs: []string{"turn:t:3478"}}.WebRTC()
	req.Error(err, "turn without credentials")

	_, err = config.ICEConfig{STUNURLs: []string{"http://nope"}}.WebRTC()
	req.Error(err)

	wc, err = config.ICEConfig{}.WebRTC()
	req.NoError(err)
	req.Empty(wc.ICEServers)
}

func TestLoadPeer(t *testing.T) {
	req := require.New(t)
	v := viper.New()
	v.Set("room", "blues")
	v.Set("name", "A")

	p, err := config.LoadPeer(v)
	req.NoError(err)
	req.Equal("ws://localhost:8080/api/ws/signal", p.Server)
	req.Equal("json", p.Codec)
	req.Equal(config.DefaultTURNUsername, p.ICE.TURNUsername)

	v = viper.New()
	v.Set("room", "blues")
	v.Set("name", "A")
	v.Set("server", "http://localhost:8080")
	_, err = config.LoadPeer(v)
	req.Error(err)

	v = viper.New()
	v.Set("name", "A")
	_, err = config.LoadPeer(v)
	req.Error(err)
}
