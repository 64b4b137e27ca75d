package core

import (
	"sync"

	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	id     domain.RoomID
	mu     sync.Mutex
	byID   map[domain.ParticipantID]MemberSession
	order  []domain.ParticipantID
	closed bool
}

func NewRoomService(id domain.RoomID) RoomService {
	return &roomImpl{
		id:   id,
		byID: make(map[domain.ParticipantID]MemberSession),
	}
}

func (r *roomImpl) ID() domain.RoomID { return r.id }

func (r *roomImpl) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *roomImpl) Add(ms MemberSession) ([]domain.Participant, bool) {
	id := ms.Participant().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, false
	}
	existing := r.snapshotLocked(id)
	if _, ok := r.byID[id]; !ok {
		r.order = append(r.order, id)
	}
	r.byID[id] = ms
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("participant", string(id)).Msg("member added")
	return existing, true
}

func (r *roomImpl) Remove(id domain.ParticipantID) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, len(r.byID) == 0
	}
	delete(r.byID, id)
	r.order = lo.Without(r.order, id)
	empty := len(r.byID) == 0
	if empty {
		r.closed = true
	}
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("participant", string(id)).Bool("empty", empty).Msg("member removed")
	return true, empty
}

func (r *roomImpl) Member(id domain.ParticipantID) (MemberSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.byID[id]
	return ms, ok
}

func (r *roomImpl) Broadcast(exclude domain.ParticipantID, msg protocol.Message) PublishResult {
	_, res := r.Publish(exclude, func() protocol.Message { return msg })
	return res
}

func (r *roomImpl) Publish(exclude domain.ParticipantID, compose func() protocol.Message) (protocol.Message, PublishResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := compose()
	res := PublishResult{}
	for _, id := range r.order {
		if id == exclude {
			continue
		}
		m := r.byID[id]
		if err := m.Signal().TrySend(msg); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("type", string(msg.Type)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return msg, res
}

func (r *roomImpl) MembersSnapshot() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked("")
}

func (r *roomImpl) snapshotLocked(exclude domain.ParticipantID) []domain.Participant {
	ids := lo.Without(r.order, exclude)
	return lo.Map(ids, func(id domain.ParticipantID, _ int) domain.Participant {
		return r.byID[id].Participant()
	})
}
