package mesh

import (
	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/pion/webrtc/v4"
)

// onExistingMembersLocked makes the newcomer the offerer towards every
// incumbent, then announces the local media state once.
func (o *Orchestrator) onExistingMembersLocked(m protocol.Message) bool {
	if m.RoomID != o.self.RoomID {
		o.log.Debug().Str("room", string(m.RoomID)).Msg("existing-members for another room ignored")
		return false
	}
	o.self.ID = m.ParticipantID
	for _, p := range m.Participants {
		if p.ID == o.self.ID {
			continue
		}
		if _, ok := o.peers[p.ID]; ok {
			continue
		}
		rec := o.newRecordLocked(p)
		if rec == nil {
			continue
		}
		o.offerLocked(rec)
	}
	o.log.Info().Str("self", string(o.self.ID)).Int("peers", len(m.Participants)).Msg("room entered")
	o.broadcastStateLocked()
	return true
}

func (o *Orchestrator) newRecordLocked(p domain.Participant) *peerRecord {
	t, err := o.opts.Transports(p.ID)
	if err != nil {
		o.log.Error().Err(err).Str("peer", string(p.ID)).Msg("create transport")
		return nil
	}
	rec := &peerRecord{remote: p, transport: t, state: StateIdle}
	if o.opts.Sinks != nil {
		rec.sink = o.opts.Sinks(p.ID)
	}
	for _, lt := range o.local.tracks {
		if err := t.AddTrack(lt); err != nil {
			o.log.Warn().Err(err).Str("peer", string(p.ID)).Str("kind", lt.Kind().String()).Msg("attach local track")
		}
	}
	t.OnICECandidate(func(c webrtc.ICECandidateInit) { o.onLocalCandidate(rec, c) })
	t.OnTrack(func(tr core.RemoteTrack) { o.onRemoteTrack(rec, tr) })
	t.OnStateChange(func(s core.TransportState) { o.onTransportState(rec, s) })

	if st, ok := o.early[p.ID]; ok {
		rec.media = st
		delete(o.early, p.ID)
	}
	o.peers[p.ID] = rec
	return rec
}

func (o *Orchestrator) offerLocked(rec *peerRecord) {
	offer, err := rec.transport.CreateOffer()
	if err != nil {
		o.log.Error().Err(err).Str("peer", string(rec.remote.ID)).Msg("create offer")
		o.removeLocked(rec.remote.ID, "offer failed")
		return
	}
	rec.state = StateOfferSent
	o.sendLocked(protocol.Message{
		Type: protocol.TypeOffer,
		To:   rec.remote.ID,
		Data: &protocol.SignalData{Description: &offer},
	})
}

func (o *Orchestrator) onOfferLocked(m protocol.Message) bool {
	if m.Data == nil || m.Data.Description == nil {
		return false
	}
	if rec, ok := o.peers[m.From]; ok {
		o.log.Warn().Str("peer", string(m.From)).Stringer("state", rec.state).Msg("duplicate offer ignored")
		return false
	}
	rec := o.newRecordLocked(domain.Participant{ID: m.From, DisplayName: m.DisplayName, RoomID: o.self.RoomID})
	if rec == nil {
		return false
	}
	answer, err := rec.transport.ApplyOffer(*m.Data.Description)
	if err != nil {
		o.log.Error().Err(err).Str("peer", string(m.From)).Msg("apply offer")
		o.removeLocked(m.From, "offer rejected")
		return false
	}
	rec.state = StateOfferReceived
	rec.remoteApplied()
	o.sendLocked(protocol.Message{
		Type: protocol.TypeAnswer,
		To:   m.From,
		Data: &protocol.SignalData{Description: &answer},
	})
	return true
}

func (o *Orchestrator) onAnswerLocked(m protocol.Message) bool {
	if m.Data == nil || m.Data.Description == nil {
		return false
	}
	rec, ok := o.peers[m.From]
	if !ok || rec.state != StateOfferSent || rec.remoteSet {
		o.log.Debug().Str("peer", string(m.From)).Msg("stale answer ignored")
		return false
	}
	if err := rec.transport.ApplyAnswer(*m.Data.Description); err != nil {
		o.log.Error().Err(err).Str("peer", string(m.From)).Msg("apply answer")
		return o.removeLocked(m.From, "answer rejected")
	}
	rec.remoteApplied()
	return false
}

func (o *Orchestrator) onCandidateLocked(m protocol.Message) {
	if m.Data == nil || m.Data.Candidate == nil {
		return
	}
	rec, ok := o.peers[m.From]
	if !ok {
		o.log.Debug().Str("peer", string(m.From)).Msg("candidate for unknown peer dropped")
		return
	}
	if err := rec.addCandidate(*m.Data.Candidate); err != nil {
		o.log.Warn().Err(err).Str("peer", string(m.From)).Msg("add candidate")
	}
}

// withRecord runs fn under the lock if rec is still the live record of its
// participant. Transport callbacks of replaced or released records are stale.
func (o *Orchestrator) withRecord(rec *peerRecord, fn func() bool) {
	o.mu.Lock()
	if o.peers[rec.remote.ID] != rec || rec.state == StateClosed {
		o.mu.Unlock()
		return
	}
	changed := fn()
	closing := o.takeClosingLocked()
	o.mu.Unlock()

	releaseAll(closing)
	if changed {
		o.notify()
	}
}

func (o *Orchestrator) onLocalCandidate(rec *peerRecord, c webrtc.ICECandidateInit) {
	o.withRecord(rec, func() bool {
		o.sendLocked(protocol.Message{
			Type: protocol.TypeCandidate,
			To:   rec.remote.ID,
			Data: &protocol.SignalData{Candidate: &c},
		})
		return false
	})
}

func (o *Orchestrator) onRemoteTrack(rec *peerRecord, tr core.RemoteTrack) {
	o.withRecord(rec, func() bool {
		o.log.Info().Str("peer", string(rec.remote.ID)).Str("kind", tr.Kind().String()).Msg("remote track")
		rec.hasStream = true
		if rec.sink != nil {
			rec.sink.Attach(tr)
		}
		return true
	})
}

func (o *Orchestrator) onTransportState(rec *peerRecord, s core.TransportState) {
	o.withRecord(rec, func() bool {
		switch s {
		case core.TransportConnected:
			if rec.state == StateOfferSent || rec.state == StateOfferReceived {
				rec.state = StateConnected
				o.log.Info().Str("peer", string(rec.remote.ID)).Msg("peer connected")
				return true
			}
		case core.TransportFailed:
			return o.removeLocked(rec.remote.ID, "transport failed")
		}
		return false
	})
}
