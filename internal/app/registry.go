package app

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrUnknownParticipant = errors.New("unknown participant")

type sessionEntry struct {
	RoomID  domain.RoomID
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry indexes connected participants and resolves their room. Room
// membership itself lives in the rooms, each guarded by its own lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ParticipantID]*sessionEntry
	rooms    core.RoomManager
}

func NewRegistry(rooms core.RoomManager) *Registry {
	return &Registry{
		sessions: make(map[domain.ParticipantID]*sessionEntry),
		rooms:    rooms,
	}
}

func (r *Registry) BindSignal(sess core.MemberSession, cancel context.CancelFunc) {
	id := sess.Participant().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("participant", string(id)).Msg("bound signal")
}

func (r *Registry) Unbind(id domain.ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("participant", string(id)).Msg("unbind session")
}

func (r *Registry) Session(id domain.ParticipantID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) RoomOf(id domain.ParticipantID) (domain.RoomID, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[id]
	if !ok || entry.RoomID == "" {
		return "", nil, false
	}
	return entry.RoomID, entry.Session, true
}

// Register puts the participant into roomID and returns the members that were
// already there. A participant already in a room leaves it first; that room is
// returned as left so the caller can notify it.
func (r *Registry) Register(id domain.ParticipantID, roomID domain.RoomID, displayName string) (existing []domain.Participant, left domain.RoomID, err error) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, "", ErrUnknownParticipant
	}
	if prev, ok := r.Unregister(id); ok {
		left = prev
	}

	r.mu.RLock()
	sess := entry.Session
	r.mu.RUnlock()
	sess = core.NewMemberSession(domain.Participant{
		ID:          id,
		DisplayName: displayName,
		RoomID:      roomID,
	}, sess.Signal())

	for {
		room := r.rooms.GetOrCreate(roomID)
		if existing, ok = room.Add(sess); ok {
			break
		}
		// lost the race against the last leave of this room; it is closed now
		r.rooms.Release(roomID, room)
	}

	r.mu.Lock()
	entry.Session = sess
	entry.RoomID = roomID
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("participant", string(id)).Str("room", string(roomID)).Int("existing", len(existing)).Msg("registered")
	return existing, left, nil
}

// Unregister removes the participant from its room, deleting the room when it
// becomes empty. ok is false when the participant was not in a room.
func (r *Registry) Unregister(id domain.ParticipantID) (domain.RoomID, bool) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if !ok || entry.RoomID == "" {
		r.mu.Unlock()
		return "", false
	}
	roomID := entry.RoomID
	entry.RoomID = ""
	entry.Session = entry.Session.WithRoom("")
	r.mu.Unlock()

	if room, ok := r.rooms.Get(roomID); ok {
		if _, empty := room.Remove(id); empty {
			r.rooms.Release(roomID, room)
		}
	}
	log.Info().Str("module", "app.registry").Str("participant", string(id)).Str("room", string(roomID)).Msg("unregistered")
	return roomID, true
}

func (r *Registry) Room(id domain.RoomID) (core.RoomService, bool) {
	return r.rooms.Get(id)
}

func (r *Registry) Members(id domain.RoomID) []domain.Participant {
	room, ok := r.rooms.Get(id)
	if !ok {
		return nil
	}
	return room.MembersSnapshot()
}

func (r *Registry) Rooms() []core.RoomInfo {
	return r.rooms.List()
}

func (r *Registry) Cancel(id domain.ParticipantID) bool {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("participant", string(id)).Msg("canceled session")
	return true
}
