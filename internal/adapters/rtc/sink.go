package rtc

import (
	"sync"

	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type SinkStats struct {
	Tracks  int
	Packets uint64
	Bytes   uint64
	// Lost counts sequence gaps; reordered packets are not subtracted.
	Lost uint64
}

// RTPSink drains the remote tracks of one participant and keeps receive
// statistics. Headless peers have nothing to render, so accounting is the
// rendering.
type RTPSink struct {
	remote domain.ParticipantID

	mu    sync.Mutex
	gen   uint64
	last  map[string]uint16
	stats SinkStats
}

var _ core.MediaSink = (*RTPSink)(nil)

func NewRTPSink(remote domain.ParticipantID) *RTPSink {
	return &RTPSink{remote: remote, last: make(map[string]uint16)}
}

func (s *RTPSink) Attach(t core.RemoteTrack) {
	tr, ok := t.(*webrtc.TrackRemote)
	if !ok {
		log.Warn().Str("module", "webrtc").Str("peer", string(s.remote)).Msg("sink: track cannot be read")
		return
	}
	s.mu.Lock()
	gen := s.gen
	s.stats.Tracks++
	s.mu.Unlock()

	go func() {
		for {
			pkt, _, err := tr.ReadRTP()
			if err != nil {
				log.Debug().Err(err).Str("module", "webrtc").Str("peer", string(s.remote)).Str("track_id", tr.ID()).Msg("sink: track ended")
				return
			}
			if !s.record(gen, tr.ID(), pkt) {
				return
			}
		}
	}()
}

// Detach stops accounting for every attached track.
func (s *RTPSink) Detach() {
	s.mu.Lock()
	s.gen++
	s.last = make(map[string]uint16)
	s.stats.Tracks = 0
	s.mu.Unlock()
}

func (s *RTPSink) Stats() SinkStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// record reports false once the sink was detached from the track's generation.
func (s *RTPSink) record(gen uint64, track string, pkt *rtp.Packet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.stats.Packets++
	s.stats.Bytes += uint64(len(pkt.Payload))

	seq := pkt.SequenceNumber
	if prev, seen := s.last[track]; seen {
		d := seq - prev
		if d == 0 || d >= 0x8000 {
			// duplicate or late
			return true
		}
		s.stats.Lost += uint64(d - 1)
	}
	s.last[track] = seq
	return true
}

// SinkSet creates one RTPSink per remote participant and keeps them reachable
// for status output.
type SinkSet struct {
	mu    sync.Mutex
	sinks map[domain.ParticipantID]*RTPSink
}

func NewSinkSet() *SinkSet {
	return &SinkSet{sinks: make(map[domain.ParticipantID]*RTPSink)}
}

func (ss *SinkSet) Factory() core.SinkFactory {
	return func(remote domain.ParticipantID) core.MediaSink {
		s := NewRTPSink(remote)
		ss.mu.Lock()
		ss.sinks[remote] = s
		ss.mu.Unlock()
		return s
	}
}

func (ss *SinkSet) Stats(remote domain.ParticipantID) (SinkStats, bool) {
	ss.mu.Lock()
	s, ok := ss.sinks[remote]
	ss.mu.Unlock()
	if !ok {
		return SinkStats{}, false
	}
	return s.Stats(), true
}
