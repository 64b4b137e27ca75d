package mesh

import (
	"context"
	"errors"

	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var ErrNoMedia = errors.New("no local media available")

// localMedia is the local participant's capture state. The flags are the
// truth broadcast to the room; tracks follow them when present.
type localMedia struct {
	tracks        []core.LocalTrack
	micEnabled    bool
	cameraEnabled bool
	degraded      bool
}

func idleMedia() localMedia {
	return localMedia{micEnabled: true, cameraEnabled: true}
}

// acquireMedia asks for audio and video, then audio only, then gives up.
// The second result reports whether anything short of both was obtained.
func acquireMedia(ctx context.Context, src core.MediaSource) ([]core.LocalTrack, bool) {
	l := log.With().Str("module", "mesh").Logger()
	if src == nil {
		l.Warn().Err(ErrNoMedia).Msg("no media source configured")
		return nil, true
	}
	tracks, err := src.Acquire(ctx, true, true)
	if err == nil {
		return tracks, false
	}
	l.Warn().Err(err).Msg("audio+video unavailable, trying audio only")

	tracks, err = src.Acquire(ctx, true, false)
	if err == nil {
		return tracks, true
	}
	l.Warn().Err(errors.Join(ErrNoMedia, err)).Msg("joining without local media")
	return nil, true
}

func newLocalMedia(tracks []core.LocalTrack, degraded, mic, camera bool) localMedia {
	m := localMedia{
		tracks:        tracks,
		micEnabled:    mic,
		cameraEnabled: camera,
		degraded:      degraded,
	}
	m.apply()
	return m
}

func (m *localMedia) apply() {
	for _, t := range m.tracks {
		switch t.Kind() {
		case webrtc.RTPCodecTypeAudio:
			t.SetEnabled(m.micEnabled)
		case webrtc.RTPCodecTypeVideo:
			t.SetEnabled(m.cameraEnabled)
		}
	}
}

func (m *localMedia) has(kind webrtc.RTPCodecType) bool {
	return lo.ContainsBy(m.tracks, func(t core.LocalTrack) bool { return t.Kind() == kind })
}

func (m *localMedia) state() domain.MediaState {
	return domain.MediaState{Muted: !m.micEnabled, CameraOff: !m.cameraEnabled}
}

func (m *localMedia) stop() {
	stopTracks(m.tracks)
}

func stopTracks(tracks []core.LocalTrack) {
	for _, t := range tracks {
		t.Stop()
	}
}

// ToggleMic flips the microphone and tells the room. It works without an
// audio track too; the room still learns the intent.
func (o *Orchestrator) ToggleMic() domain.MediaState {
	return o.toggle(func(m *localMedia) { m.micEnabled = !m.micEnabled })
}

func (o *Orchestrator) ToggleCamera() domain.MediaState {
	return o.toggle(func(m *localMedia) { m.cameraEnabled = !m.cameraEnabled })
}

func (o *Orchestrator) toggle(flip func(*localMedia)) domain.MediaState {
	o.mu.Lock()
	flip(&o.local)
	o.local.apply()
	st := o.local.state()
	if o.phase == phaseJoined {
		o.broadcastStateLocked()
	}
	o.mu.Unlock()

	o.notify()
	return st
}

func (o *Orchestrator) broadcastStateLocked() {
	o.sendLocked(protocol.NewMediaState(o.self.RoomID, o.local.state()))
}

func (o *Orchestrator) onMediaStateLocked(m protocol.Message) bool {
	if m.From == "" || m.From == o.self.ID {
		return false
	}
	st := m.MediaState()
	if rec, ok := o.peers[m.From]; ok {
		rec.media = st
		return true
	}
	o.early[m.From] = st
	return false
}
