package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	router "github.com/dkeye/jamhub/internal/adapters/http"
	"github.com/dkeye/jamhub/internal/adapters/signal"
	"github.com/dkeye/jamhub/internal/app"
	"github.com/dkeye/jamhub/internal/app/orch"
	"github.com/dkeye/jamhub/internal/config"
	"github.com/dkeye/jamhub/internal/core"
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type sinkConn struct{}

func (*sinkConn) TrySend(protocol.Message) error { return nil }
func (*sinkConn) Close()                         {}

func setup(t *testing.T) (http.Handler, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := app.NewRegistry(app.NewRoomManager())
	o := orch.New(reg, app.NewRelay(reg, app.SimplePolicy{}))
	ctl := signal.NewSignalWSController(o, signal.Settings{
		ReadLimit: 4096, PingPeriod: time.Minute, PongWait: time.Minute, WriteWait: time.Second, SendQueue: 8,
	}, nil)
	cfg := &config.Config{Mode: "test", Secret: "s3cret", StaticPath: t.TempDir(), ICE: config.ICEConfig{
		STUNURLs:       []string{"stun:stun.example.org:3478"},
		TURNURLs:       []string{"turn:turn.example.org:3478"},
		TURNUsername:   "jam",
		TURNCredential: "hub",
	}}
	return router.SetupRouter(context.Background(), cfg, o, ctl), o
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_Healthz(t *testing.T) {
	req := require.New(t)
	h, _ := setup(t)

	w := get(t, h, "/healthz")
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"status":"ok"}`, w.Body.String())
	req.NotEmpty(w.Result().Cookies(), "client token cookie is issued")
}

func TestRouter_Rooms(t *testing.T) {
	req := require.New(t)
	h, o := setup(t)

	// Given no rooms
	w := get(t, h, "/api/rooms")
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"rooms":[]}`, w.Body.String())

	// When a participant joins "blues"
	id := domain.NewParticipantID()
	o.Connect(core.NewMemberSession(domain.Participant{ID: id}, &sinkConn{}), func() {})
	req.NoError(o.Join(id, "blues", "A"))

	// Then the room and its member are listed
	w = get(t, h, "/api/rooms")
	var rooms struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &rooms))
	req.Equal([]core.RoomInfo{{ID: "blues", MemberCount: 1}}, rooms.Rooms)

	w = get(t, h, "/api/rooms/blues/members")
	req.Equal(http.StatusOK, w.Code)
	var members struct {
		Room    domain.RoomID        `json:"room"`
		Members []domain.Participant `json:"members"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &members))
	req.Equal(domain.RoomID("blues"), members.Room)
	req.Len(members.Members, 1)
	req.Equal("A", members.Members[0].DisplayName)

	w = get(t, h, "/api/rooms/jazz/members")
	req.Equal(http.StatusNotFound, w.Code)
}

func TestRouter_SignalRejectsUnknownCodec(t *testing.T) {
	req := require.New(t)
	h, _ := setup(t)

	w := get(t, h, "/api/ws/signal?codec=xml")
	req.Equal(http.StatusBadRequest, w.Code)
}

func TestRouter_ICEServers(t *testing.T) {
	req := require.New(t)
	h, _ := setup(t)

	w := get(t, h, "/api/ice")
	req.Equal(http.StatusOK, w.Code)

	var body struct {
		ICEServers []struct {
			URLs       []string `json:"urls"`
			Username   string   `json:"username"`
			Credential string   `json:"credential"`
		} `json:"iceServers"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Len(body.ICEServers, 2)
	req.Equal([]string{"stun:stun.example.org:3478"}, body.ICEServers[0].URLs)
	req.Empty(body.ICEServers[0].Username)
	req.Equal([]string{"turn:turn.example.org:3478"}, body.ICEServers[1].URLs)
	req.Equal("jam", body.ICEServers[1].Username)
	req.Equal("hub", body.ICEServers[1].Credential)
}
