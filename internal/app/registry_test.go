package app_test

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/dkeye/jamhub/internal/app"
	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterUnknown(t *testing.T) {
	req := require.New(t)
	reg := app.NewRegistry(app.NewRoomManager())

	_, _, err := reg.Register("nobody", "blues", "N")
	req.ErrorIs(err, app.ErrUnknownParticipant)
	req.Empty(reg.Rooms())
}

func TestRegistry_RoomLifecycle(t *testing.T) {
	req := require.New(t)
	reg := app.NewRegistry(app.NewRoomManager())
	connect(reg, "a")
	connect(reg, "b")

	// Given A joins alone
	existing, left, err := reg.Register("a", "blues", "A")
	req.NoError(err)
	req.Empty(existing)
	req.Empty(left)
	req.Len(reg.Rooms(), 1)

	// When B joins, it sees A
	existing, _, err = reg.Register("b", "blues", "B")
	req.NoError(err)
	req.Equal([]domain.Participant{{ID: "a", DisplayName: "A", RoomID: "blues"}}, existing)
	req.Len(reg.Members("blues"), 2)
	req.Equal(2, reg.Rooms()[0].MemberCount)

	roomID, sess, ok := reg.RoomOf("b")
	req.True(ok)
	req.Equal(domain.RoomID("blues"), roomID)
	req.Equal("B", sess.Participant().DisplayName)

	// Then the room lives until its last member leaves
	roomID, ok = reg.Unregister("a")
	req.True(ok)
	req.Equal(domain.RoomID("blues"), roomID)
	_, ok = reg.Room("blues")
	req.True(ok)

	_, ok = reg.Unregister("b")
	req.True(ok)
	_, ok = reg.Room("blues")
	req.False(ok)
	req.Empty(reg.Rooms())

	_, ok = reg.Unregister("b")
	req.False(ok)
}

func TestRegistry_JoinAnotherRoomLeavesFirst(t *testing.T) {
	req := require.New(t)
	reg := app.NewRegistry(app.NewRoomManager())
	connect(reg, "a")

	_, _, err := reg.Register("a", "blues", "A")
	req.NoError(err)
	_, left, err := reg.Register("a", "jazz", "A")
	req.NoError(err)

	req.Equal(domain.RoomID("blues"), left)
	_, ok := reg.Room("blues")
	req.False(ok)
	req.Len(reg.Members("jazz"), 1)
}

func TestRegistry_ConcurrentMembership(t *testing.T) {
	req := require.New(t)
	reg := app.NewRegistry(app.NewRoomManager())
	rooms := []domain.RoomID{"r1", "r2", "r3"}

	const n = 40
	ids := make([]domain.ParticipantID, n)
	for i := range ids {
		ids[i] = domain.ParticipantID(fmt.Sprintf("p%02d", i))
		connect(reg, ids[i])
	}

	errs := make(chan error, n*25)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(seed int64, id domain.ParticipantID) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for j := 0; j < 25; j++ {
				if rnd.Intn(3) == 0 {
					reg.Unregister(id)
					continue
				}
				if _, _, err := reg.Register(id, rooms[rnd.Intn(len(rooms))], string(id)); err != nil {
					errs <- err
				}
			}
		}(int64(i), id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	// Every participant is in at most one room and the registry agrees with the rooms
	seen := map[domain.ParticipantID]domain.RoomID{}
	for _, room := range rooms {
		for _, p := range reg.Members(room) {
			_, dup := seen[p.ID]
			req.False(dup, "participant %s in two rooms", p.ID)
			seen[p.ID] = room
		}
	}
	for _, id := range ids {
		roomID, _, ok := reg.RoomOf(id)
		if ok {
			req.Equal(roomID, seen[id])
		} else {
			req.NotContains(seen, id)
		}
	}
	// No empty room is listed
	req.True(lo.EveryBy(reg.Rooms(), func(r core.RoomInfo) bool { return r.MemberCount > 0 }))

	for _, id := range ids {
		reg.Unregister(id)
	}
	req.Empty(reg.Rooms())
}

func TestRegistry_Cancel(t *testing.T) {
	req := require.New(t)
	reg := app.NewRegistry(app.NewRoomManager())
	_, canceled := connect(reg, "a")

	req.True(reg.Cancel("a"))
	req.True(*canceled)
	req.False(reg.Cancel("ghost"))

	reg.Unbind("a")
	_, ok := reg.Session("a")
	req.False(ok)
}
