package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/spf13/viper"
)

// Peer configures the jamhub-peer client. Keys mirror the CLI flags.
type Peer struct {
	Server    string    `mapstructure:"server"`
	Room      string    `mapstructure:"room"`
	Name      string    `mapstructure:"name"`
	Codec     string    `mapstructure:"codec"`
	Muted     bool      `mapstructure:"muted"`
	CameraOff bool      `mapstructure:"camera_off"`
	NoAudio   bool      `mapstructure:"no_audio"`
	NoVideo   bool      `mapstructure:"no_video"`
	Verbose   bool      `mapstructure:"verbose"`
	ICE       ICEConfig `mapstructure:"ice"`
}

func SetPeerDefaults(v *viper.Viper) {
	v.SetDefault("server", "ws://localhost:8080/api/ws/signal")
	v.SetDefault("codec", protocol.CodecJSON)
	v.SetDefault("ice.stun_urls", DefaultSTUNURLs)
	v.SetDefault("ice.turn_urls", DefaultTURNURLs)
	v.SetDefault("ice.turn_username", DefaultTURNUsername)
	v.SetDefault("ice.turn_credential", DefaultTURNCredential)
}

// LoadPeer reads the peer settings from v, whose flags the caller has bound.
// JAMHUB_* environment variables apply as for the server.
func LoadPeer(v *viper.Viper) (*Peer, error) {
	SetPeerDefaults(v)
	v.SetEnvPrefix("JAMHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var p Peer
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("unmarshal peer config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Peer) Validate() error {
	u, err := url.Parse(p.Server)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("server: scheme must be ws or wss, got %q", u.Scheme)
	}
	if strings.TrimSpace(p.Room) == "" {
		return fmt.Errorf("room: required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name: required")
	}
	if _, err := protocol.CodecByName(p.Codec); err != nil {
		return fmt.Errorf("codec: %w", err)
	}
	if _, err := p.ICE.WebRTC(); err != nil {
		return err
	}
	return nil
}
