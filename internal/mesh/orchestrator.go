// Package mesh drives one participant's side of a full-mesh call: a peer
// connection per remote participant, negotiated over the relay.
package mesh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyJoined = errors.New("already joined")
	ErrNotJoined     = errors.New("not in a room")
	ErrJoinAborted   = errors.New("join aborted by leave")
	ErrRelayLost     = errors.New("relay session lost")
	ErrJoinRejected  = errors.New("join rejected by relay")
)

type phase int

const (
	phaseIdle phase = iota
	phaseJoining
	phaseJoined
)

type JoinOptions struct {
	InitialMuted     bool
	InitialCameraOff bool
}

type Options struct {
	Dial       Dialer
	Transports core.TransportFactory
	Media      core.MediaSource
	// Sinks is optional; remote tracks are only accounted for when set.
	Sinks core.SinkFactory
}

// Orchestrator owns every connection record of the local participant. All
// state transitions happen under mu, whether triggered by the caller, the
// relay session or a transport callback.
type Orchestrator struct {
	opts Options
	log  zerolog.Logger

	mu       sync.Mutex
	gen      uint64
	phase    phase
	sig      Signaler
	relayUp  bool
	self     domain.Participant
	local    localMedia
	peers    map[domain.ParticipantID]*peerRecord
	early    map[domain.ParticipantID]domain.MediaState
	chat     []domain.ChatMessage
	rejected error
	closing  []*peerRecord
	watchers []func()
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{
		opts:  opts,
		log:   log.With().Str("module", "mesh").Logger(),
		local: idleMedia(),
		peers: make(map[domain.ParticipantID]*peerRecord),
		early: make(map[domain.ParticipantID]domain.MediaState),
	}
}

// Join acquires local media, opens the relay session and asks to enter the
// room. It returns once the join request is issued; peers show up as the
// relay answers. Missing devices degrade the call, an unreachable relay fails it.
// A join the relay refuses afterwards ends the call and is reported through
// Snapshot().Rejected.
func (o *Orchestrator) Join(ctx context.Context, displayName, roomID string, jo JoinOptions) error {
	name, err := domain.NormalizeDisplayName(displayName)
	if err != nil {
		return err
	}
	room, err := domain.NormalizeRoomID(roomID)
	if err != nil {
		return err
	}
	joinMsg := protocol.Message{Type: protocol.TypeJoinRoom, RoomID: room, DisplayName: name}
	if err := protocol.Validate(joinMsg); err != nil {
		return err
	}

	o.mu.Lock()
	if o.phase != phaseIdle {
		o.mu.Unlock()
		return ErrAlreadyJoined
	}
	o.phase = phaseJoining
	o.gen++
	gen := o.gen
	o.rejected = nil
	// Toggles made while joining land here and survive acquisition.
	o.local = localMedia{micEnabled: !jo.InitialMuted, cameraEnabled: !jo.InitialCameraOff}
	o.mu.Unlock()

	tracks, degraded := acquireMedia(ctx, o.opts.Media)

	sig, err := o.opts.Dial(ctx, relayEvents{o: o, gen: gen})
	if err != nil {
		stopTracks(tracks)
		o.mu.Lock()
		if o.gen == gen {
			o.phase = phaseIdle
			o.local = idleMedia()
		}
		o.mu.Unlock()
		return fmt.Errorf("connect relay: %w", err)
	}

	o.mu.Lock()
	if o.gen != gen {
		o.mu.Unlock()
		stopTracks(tracks)
		_ = sig.Close()
		return ErrJoinAborted
	}
	o.local = newLocalMedia(tracks, degraded, o.local.micEnabled, o.local.cameraEnabled)
	o.sig = sig
	o.relayUp = true
	o.self = domain.Participant{DisplayName: name, RoomID: room}
	o.phase = phaseJoined
	err = sig.Send(joinMsg)
	o.mu.Unlock()

	if err != nil {
		o.Leave()
		return fmt.Errorf("send join: %w", err)
	}
	o.log.Info().Str("room", string(room)).Str("name", name).Bool("degraded", degraded).Msg("join issued")
	o.notify()
	return nil
}

// Leave tears down every connection record, the local tracks and the relay
// session before returning. Events of the finished join are ignored afterwards.
func (o *Orchestrator) Leave() {
	o.mu.Lock()
	if o.phase == phaseIdle {
		o.mu.Unlock()
		return
	}
	o.shutdownLocked(true, nil)
}

// shutdownLocked ends the current join. It is entered with mu held and
// releases it. rejected is kept for Snapshot when the relay refused the join.
func (o *Orchestrator) shutdownLocked(sayLeave bool, rejected error) {
	o.gen++
	for id := range o.peers {
		o.removeLocked(id, "local leave")
	}
	closing := o.takeClosingLocked()
	sig, local, room := o.sig, o.local, o.self.RoomID
	if sig != nil && o.relayUp && sayLeave {
		_ = sig.Send(protocol.Message{Type: protocol.TypeLeaveRoom})
	}
	o.sig = nil
	o.relayUp = false
	o.self = domain.Participant{}
	o.local = idleMedia()
	o.early = make(map[domain.ParticipantID]domain.MediaState)
	o.chat = nil
	o.phase = phaseIdle
	o.rejected = rejected
	o.mu.Unlock()

	releaseAll(closing)
	local.stop()
	if sig != nil {
		if err := sig.Close(); err != nil {
			o.log.Debug().Err(err).Msg("relay session close")
		}
	}
	o.log.Info().Str("room", string(room)).Msg("left")
	o.notify()
}

// OnChange registers fn to be called after every change of the snapshot.
// fn runs without internal locks held and may call Snapshot.
func (o *Orchestrator) OnChange(fn func()) {
	o.mu.Lock()
	o.watchers = append(o.watchers, fn)
	o.mu.Unlock()
}

func (o *Orchestrator) notify() {
	o.mu.Lock()
	ws := append([]func(){}, o.watchers...)
	o.mu.Unlock()
	for _, fn := range ws {
		fn()
	}
}

func (o *Orchestrator) handleRelay(gen uint64, m protocol.Message) {
	o.mu.Lock()
	if gen != o.gen || o.phase != phaseJoined {
		o.mu.Unlock()
		o.log.Debug().Str("type", string(m.Type)).Msg("stale relay message ignored")
		return
	}
	if m.Type == protocol.TypeError && o.self.ID == "" {
		// The relay answers a valid join with existing-members first, so an
		// error before it means the join itself was refused.
		err := fmt.Errorf("%w: %s", ErrJoinRejected, m.Error)
		o.log.Warn().Err(err).Msg("join refused by relay")
		o.shutdownLocked(false, err)
		return
	}
	changed := o.dispatchLocked(m)
	closing := o.takeClosingLocked()
	o.mu.Unlock()

	releaseAll(closing)
	if changed {
		o.notify()
	}
}

func (o *Orchestrator) dispatchLocked(m protocol.Message) bool {
	switch m.Type {
	case protocol.TypeExistingMembers:
		return o.onExistingMembersLocked(m)
	case protocol.TypeJoinedNotice:
		o.log.Info().Str("peer", string(m.ParticipantID)).Str("name", m.DisplayName).Msg("participant joined")
		o.broadcastStateLocked()
		return false
	case protocol.TypeLeftNotice:
		delete(o.early, m.ParticipantID)
		return o.removeLocked(m.ParticipantID, "left room")
	case protocol.TypeOffer:
		return o.onOfferLocked(m)
	case protocol.TypeAnswer:
		return o.onAnswerLocked(m)
	case protocol.TypeCandidate:
		o.onCandidateLocked(m)
		return false
	case protocol.TypeMediaState:
		return o.onMediaStateLocked(m)
	case protocol.TypeChatMessage:
		return o.onChatLocked(m)
	case protocol.TypeError:
		o.log.Warn().Str("reason", m.Error).Msg("relay error")
		return false
	case protocol.TypePong:
		return false
	default:
		o.log.Debug().Str("type", string(m.Type)).Msg("unexpected relay message")
		return false
	}
}

// relayClosed keeps established peer connections: media flows peer-to-peer,
// only new handshakes need the relay.
func (o *Orchestrator) relayClosed(gen uint64, err error) {
	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		return
	}
	o.relayUp = false
	o.mu.Unlock()
	o.log.Warn().Err(err).Msg("relay session lost")
	o.notify()
}

// sendLocked reports delivery problems to the log only: the relay session
// surfaces its own failure through SignalClosed.
func (o *Orchestrator) sendLocked(m protocol.Message) {
	if o.sig == nil || !o.relayUp {
		return
	}
	if err := o.sig.Send(m); err != nil {
		o.log.Warn().Err(err).Str("type", string(m.Type)).Str("to", string(m.To)).Msg("relay send failed")
	}
}

// removeLocked moves the record to Closed and schedules its release.
func (o *Orchestrator) removeLocked(id domain.ParticipantID, reason string) bool {
	rec, ok := o.peers[id]
	if !ok {
		return false
	}
	delete(o.peers, id)
	rec.state = StateClosed
	o.closing = append(o.closing, rec)
	o.log.Info().Str("peer", string(id)).Str("reason", reason).Msg("peer removed")
	return true
}

func (o *Orchestrator) takeClosingLocked() []*peerRecord {
	c := o.closing
	o.closing = nil
	return c
}

func releaseAll(recs []*peerRecord) {
	for _, r := range recs {
		r.release()
	}
}
