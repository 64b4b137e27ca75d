package config

import (
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

var (
	DefaultSTUNURLs = []string{
		"stun:stun.l.google.com:19302",
		"stun:stun1.l.google.com:19302",
		"stun:stun2.l.google.com:19302",
		"stun:stun3.l.google.com:19302",
	}
	DefaultTURNURLs = []string{
		"turn:openrelay.metered.ca:80",
		"turn:openrelay.metered.ca:443",
		"turn:openrelay.metered.ca:443?transport=tcp",
	}
)

const (
	DefaultTURNUsername   = "openrelayproject"
	DefaultTURNCredential = "openrelayproject"
)

// ICEConfig is the fixed traversal setup every peer connection uses:
// reflection servers plus a credentialed relay fallback.
type ICEConfig struct {
	STUNURLs       []string `mapstructure:"stun_urls"`
	TURNURLs       []string `mapstructure:"turn_urls"`
	TURNUsername   string   `mapstructure:"turn_username"`
	TURNCredential string   `mapstructure:"turn_credential"`
}

func (c ICEConfig) WebRTC() (webrtc.Configuration, error) {
	var servers []webrtc.ICEServer

	stun := cleanURLs(c.STUNURLs)
	for _, u := range stun {
		if !strings.HasPrefix(u, "stun:") && !strings.HasPrefix(u, "stuns:") {
			return webrtc.Configuration{}, fmt.Errorf("ice.stun_urls: %q is not a stun url", u)
		}
	}
	if len(stun) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: stun})
	}

	turn := cleanURLs(c.TURNURLs)
	if len(turn) > 0 {
		user := strings.TrimSpace(c.TURNUsername)
		cred := strings.TrimSpace(c.TURNCredential)
		if user == "" || cred == "" {
			return webrtc.Configuration{}, fmt.Errorf("ice.turn_username/ice.turn_credential: both must be set when ice.turn_urls is set")
		}
		for _, u := range turn {
			if !strings.HasPrefix(u, "turn:") && !strings.HasPrefix(u, "turns:") {
				return webrtc.Configuration{}, fmt.Errorf("ice.turn_urls: %q is not a turn url", u)
			}
		}
		servers = append(servers, webrtc.ICEServer{
			URLs:           turn,
			Username:       user,
			Credential:     cred,
			CredentialType: webrtc.ICECredentialTypePassword,
		})
	}
	return webrtc.Configuration{ICEServers: servers}, nil
}

func cleanURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}
