package mesh

import (
	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// State is the handshake progress towards one remote participant.
type State int

const (
	StateIdle State = iota
	StateOfferSent
	StateOfferReceived
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOfferSent:
		return "offer-sent"
	case StateOfferReceived:
		return "offer-received"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// peerRecord is the connection record of one remote participant. All fields
// are guarded by the owning Orchestrator's mutex.
type peerRecord struct {
	remote    domain.Participant
	transport core.Transport
	sink      core.MediaSink
	state     State
	media     domain.MediaState
	hasStream bool

	// candidates received before the remote description was applied
	remoteSet bool
	pending   []webrtc.ICECandidateInit
}

func (r *peerRecord) addCandidate(c webrtc.ICECandidateInit) error {
	if !r.remoteSet {
		r.pending = append(r.pending, c)
		return nil
	}
	return r.transport.AddICECandidate(c)
}

// remoteApplied flushes candidates queued while the remote description was missing.
func (r *peerRecord) remoteApplied() {
	r.remoteSet = true
	for _, c := range r.pending {
		if err := r.transport.AddICECandidate(c); err != nil {
			log.Warn().Err(err).Str("module", "mesh").Str("peer", string(r.remote.ID)).Msg("queued candidate rejected")
		}
	}
	r.pending = nil
}

// release frees the transport and the sink. It must run without the
// orchestrator lock held: transports may call back into the orchestrator.
func (r *peerRecord) release() {
	if r.sink != nil {
		r.sink.Detach()
	}
	if err := r.transport.Close(); err != nil {
		log.Warn().Err(err).Str("module", "mesh").Str("peer", string(r.remote.ID)).Msg("transport close")
	}
}

func (r *peerRecord) view() PeerView {
	return PeerView{
		DisplayName: r.remote.DisplayName,
		HasStream:   r.hasStream,
		Muted:       r.media.Muted,
		CameraOff:   r.media.CameraOff,
		State:       r.state,
	}
}
