package core

import (
	"context"

	"github.com/dkeye/jamhub/internal/domain"
	"github.com/pion/webrtc/v4"
)

//go:generate go run go.uber.org/mock/mockgen -destination=../mocks/mock_media.go -package=mocks github.com/dkeye/jamhub/internal/core MediaSource,MediaSink

// TransportState is the coarse connectivity of a Transport.
type TransportState int

const (
	TransportNew TransportState = iota
	TransportConnecting
	TransportConnected
	// TransportFailed is terminal: failed, disconnected and closed all map here.
	TransportFailed
)

func (s TransportState) String() string {
	switch s {
	case TransportNew:
		return "new"
	case TransportConnecting:
		return "connecting"
	case TransportConnected:
		return "connected"
	case TransportFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transport is the peer-to-peer media connection towards one remote participant.
// It is owned by exactly one connection record, which is its only mutator.
type Transport interface {
	// AddTrack attaches a local track; disabled tracks are attached too.
	AddTrack(LocalTrack) error
	// CreateOffer creates an offer and applies it as local description.
	CreateOffer() (webrtc.SessionDescription, error)
	// ApplyOffer applies a remote offer and returns the applied local answer.
	ApplyOffer(webrtc.SessionDescription) (webrtc.SessionDescription, error)
	ApplyAnswer(webrtc.SessionDescription) error
	// AddICECandidate applies a remote ICE candidate.
	AddICECandidate(webrtc.ICECandidateInit) error
	// OnICECandidate sets a callback for newly gathered local ICE candidates.
	OnICECandidate(func(webrtc.ICECandidateInit))
	// OnTrack sets a callback that will be invoked when a new remote track arrives.
	OnTrack(func(RemoteTrack))
	OnStateChange(func(TransportState))
	// Close should stop all underlying media resources.
	Close() error
}

type TransportFactory func(remote domain.ParticipantID) (Transport, error)

// RemoteTrack is the subset of *webrtc.TrackRemote the client needs.
type RemoteTrack interface {
	ID() string
	StreamID() string
	Kind() webrtc.RTPCodecType
}

// LocalTrack is a captured track with a user controlled enabled flag.
// A disabled track keeps being sent, carrying silence or black frames.
type LocalTrack interface {
	Kind() webrtc.RTPCodecType
	Track() webrtc.TrackLocal
	Enabled() bool
	SetEnabled(bool)
	// Stop releases the capture device.
	Stop()
}

// MediaSource acquires local capture tracks from the platform.
type MediaSource interface {
	Acquire(ctx context.Context, audio, video bool) ([]LocalTrack, error)
}

// MediaSink renders the media of one remote participant. It outlives the
// tracks feeding it; tracks are attached and detached explicitly.
type MediaSink interface {
	Attach(RemoteTrack)
	Detach()
}

type SinkFactory func(remote domain.ParticipantID) MediaSink
