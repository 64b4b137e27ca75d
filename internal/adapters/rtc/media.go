package rtc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/jamhub/internal/core"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog/log"
)

var ErrDeviceUnavailable = errors.New("capture device unavailable")

// opusSilence is one 20ms Opus frame of digital silence.
var opusSilence = []byte{0xf8, 0xff, 0xfe}

const audioFrame = 20 * time.Millisecond

// SyntheticSource stands in for capture devices on headless peers. Audio
// tracks carry Opus silence; video tracks are negotiated but carry no frames.
type SyntheticSource struct {
	NoAudio bool
	NoVideo bool
}

var _ core.MediaSource = SyntheticSource{}

func (s SyntheticSource) Acquire(ctx context.Context, audio, video bool) ([]core.LocalTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if audio && s.NoAudio {
		return nil, fmt.Errorf("audio: %w", ErrDeviceUnavailable)
	}
	if video && s.NoVideo {
		return nil, fmt.Errorf("video: %w", ErrDeviceUnavailable)
	}

	stream := "jamhub-" + uuid.NewString()
	var tracks []core.LocalTrack
	if audio {
		t, err := newSyntheticTrack(webrtc.RTPCodecTypeAudio,
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}, stream)
		if err != nil {
			return nil, err
		}
		go t.pump(opusSilence, audioFrame)
		tracks = append(tracks, t)
	}
	if video {
		t, err := newSyntheticTrack(webrtc.RTPCodecTypeVideo,
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}, stream)
		if err != nil {
			for _, lt := range tracks {
				lt.Stop()
			}
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

type syntheticTrack struct {
	kind    webrtc.RTPCodecType
	track   *webrtc.TrackLocalStaticSample
	enabled atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func newSyntheticTrack(kind webrtc.RTPCodecType, codec webrtc.RTPCodecCapability, stream string) (*syntheticTrack, error) {
	tl, err := webrtc.NewTrackLocalStaticSample(codec, kind.String(), stream)
	if err != nil {
		return nil, err
	}
	t := &syntheticTrack{kind: kind, track: tl, done: make(chan struct{})}
	t.enabled.Store(true)
	return t, nil
}

func (t *syntheticTrack) Kind() webrtc.RTPCodecType { return t.kind }
func (t *syntheticTrack) Track() webrtc.TrackLocal  { return t.track }
func (t *syntheticTrack) Enabled() bool             { return t.enabled.Load() }
func (t *syntheticTrack) SetEnabled(on bool)        { t.enabled.Store(on) }
func (t *syntheticTrack) Stop()                     { t.once.Do(func() { close(t.done) }) }

func (t *syntheticTrack) pump(frame []byte, every time.Duration) {
	tk := time.NewTicker(every)
	defer tk.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-tk.C:
			err := t.track.WriteSample(media.Sample{Data: frame, Duration: every})
			if err != nil && !errors.Is(err, io.ErrClosedPipe) {
				log.Debug().Err(err).Str("module", "webrtc").Str("kind", t.kind.String()).Msg("write sample")
			}
		}
	}
}
