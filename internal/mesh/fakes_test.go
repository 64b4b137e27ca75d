package mesh_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/mesh"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/pion/webrtc/v4"
)

type fakeSignaler struct {
	mu     sync.Mutex
	sent   []protocol.Message
	closed bool
}

func (f *fakeSignaler) Send(m protocol.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("closed")
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeSignaler) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeSignaler) ofType(t protocol.Type) []protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []protocol.Message
	for _, m := range f.sent {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

type fakeTransport struct {
	remote domain.ParticipantID

	mu         sync.Mutex
	tracks     []core.LocalTrack
	offers     int
	remoteDesc *webrtc.SessionDescription
	candidates []webrtc.ICECandidateInit
	closed     bool

	onICE   func(webrtc.ICECandidateInit)
	onTrack func(core.RemoteTrack)
	onState func(core.TransportState)
}

func (t *fakeTransport) AddTrack(lt core.LocalTrack) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracks = append(t.tracks, lt)
	return nil
}

func (t *fakeTransport) CreateOffer() (webrtc.SessionDescription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offers++
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "offer-to-" + string(t.remote)}, nil
}

func (t *fakeTransport) ApplyOffer(sd webrtc.SessionDescription) (webrtc.SessionDescription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remoteDesc = &sd
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "answer-to-" + string(t.remote)}, nil
}

func (t *fakeTransport) ApplyAnswer(sd webrtc.SessionDescription) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remoteDesc = &sd
	return nil
}

func (t *fakeTransport) AddICECandidate(c webrtc.ICECandidateInit) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remoteDesc == nil {
		return errors.New("remote description not set")
	}
	t.candidates = append(t.candidates, c)
	return nil
}

func (t *fakeTransport) OnICECandidate(fn func(webrtc.ICECandidateInit)) { t.onICE = fn }
func (t *fakeTransport) OnTrack(fn func(core.RemoteTrack))               { t.onTrack = fn }
func (t *fakeTransport) OnStateChange(fn func(core.TransportState))      { t.onState = fn }

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) appliedCandidates() []webrtc.ICECandidateInit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]webrtc.ICECandidateInit(nil), t.candidates...)
}

type fakeTrack struct {
	kind    webrtc.RTPCodecType
	mu      sync.Mutex
	enabled bool
	stopped bool
}

func newFakeTrack(kind webrtc.RTPCodecType) *fakeTrack {
	return &fakeTrack{kind: kind, enabled: true}
}

func (f *fakeTrack) Kind() webrtc.RTPCodecType { return f.kind }
func (f *fakeTrack) Track() webrtc.TrackLocal  { return nil }

func (f *fakeTrack) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeTrack) SetEnabled(on bool) {
	f.mu.Lock()
	f.enabled = on
	f.mu.Unlock()
}

func (f *fakeTrack) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

type remoteTrack struct{ kind webrtc.RTPCodecType }

func (r remoteTrack) ID() string                { return "t-" + r.kind.String() }
func (r remoteTrack) StreamID() string          { return "s" }
func (r remoteTrack) Kind() webrtc.RTPCodecType { return r.kind }

// staticSource always succeeds with the given tracks.
type staticSource struct{ tracks []core.LocalTrack }

func (s staticSource) Acquire(context.Context, bool, bool) ([]core.LocalTrack, error) {
	return s.tracks, nil
}

// peer wires an Orchestrator to fakes and exposes the relay handler, so
// tests can play the relay.
type peer struct {
	o *mesh.Orchestrator

	mu         sync.Mutex
	sig        *fakeSignaler
	handler    mesh.SignalHandler
	transports map[domain.ParticipantID]*fakeTransport
	dialErr    error
}

func newPeer(t *testing.T, src core.MediaSource, sinks core.SinkFactory) *peer {
	t.Helper()
	p := &peer{transports: make(map[domain.ParticipantID]*fakeTransport)}
	p.o = mesh.New(mesh.Options{
		Dial: func(_ context.Context, h mesh.SignalHandler) (mesh.Signaler, error) {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.dialErr != nil {
				return nil, p.dialErr
			}
			p.sig = &fakeSignaler{}
			p.handler = h
			return p.sig, nil
		},
		Transports: func(remote domain.ParticipantID) (core.Transport, error) {
			p.mu.Lock()
			defer p.mu.Unlock()
			ft := &fakeTransport{remote: remote}
			p.transports[remote] = ft
			return ft, nil
		},
		Media: src,
		Sinks: sinks,
	})
	t.Cleanup(p.o.Leave)
	return p
}

func (p *peer) relay(m protocol.Message) {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	h.HandleSignal(m)
}

func (p *peer) signaler() *fakeSignaler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sig
}

func (p *peer) transport(id domain.ParticipantID) *fakeTransport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transports[id]
}

func existing(self domain.ParticipantID, room domain.RoomID, others ...domain.Participant) protocol.Message {
	return protocol.Message{
		Type:          protocol.TypeExistingMembers,
		ParticipantID: self,
		RoomID:        room,
		Participants:  others,
	}
}

func offerFrom(from domain.ParticipantID, name string) protocol.Message {
	return protocol.Message{
		Type:        protocol.TypeOffer,
		From:        from,
		DisplayName: name,
		Data: &protocol.SignalData{Description: &webrtc.SessionDescription{
			Type: webrtc.SDPTypeOffer, SDP: "remote-offer",
		}},
	}
}

func answerFrom(from domain.ParticipantID) protocol.Message {
	return protocol.Message{
		Type: protocol.TypeAnswer,
		From: from,
		Data: &protocol.SignalData{Description: &webrtc.SessionDescription{
			Type: webrtc.SDPTypeAnswer, SDP: "remote-answer",
		}},
	}
}

func candidateFrom(from domain.ParticipantID, cand string) protocol.Message {
	return protocol.Message{
		Type: protocol.TypeCandidate,
		From: from,
		Data: &protocol.SignalData{Candidate: &webrtc.ICECandidateInit{Candidate: cand}},
	}
}
