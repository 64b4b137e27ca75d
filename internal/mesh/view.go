package mesh

import (
	"github.com/dkeye/jamhub/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/samber/lo"
)

type LocalView struct {
	MicEnabled    bool
	CameraEnabled bool
	HasAudio      bool
	HasVideo      bool
	// Degraded is set when audio+video could not be acquired.
	Degraded bool
}

type PeerView struct {
	DisplayName string
	HasStream   bool
	Muted       bool
	CameraOff   bool
	State       State
}

// View is a point-in-time copy of the call, safe to keep and render.
type View struct {
	Self           domain.ParticipantID
	DisplayName    string
	RoomID         domain.RoomID
	Joined         bool
	RelayConnected bool
	Local          LocalView
	Peers          map[domain.ParticipantID]PeerView
	Chat           []domain.ChatMessage
	// Rejected is set when the relay refused the last join.
	Rejected error
}

func (o *Orchestrator) Snapshot() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return View{
		Self:           o.self.ID,
		DisplayName:    o.self.DisplayName,
		RoomID:         o.self.RoomID,
		Joined:         o.phase == phaseJoined,
		RelayConnected: o.relayUp,
		Local: LocalView{
			MicEnabled:    o.local.micEnabled,
			CameraEnabled: o.local.cameraEnabled,
			HasAudio:      o.local.has(webrtc.RTPCodecTypeAudio),
			HasVideo:      o.local.has(webrtc.RTPCodecTypeVideo),
			Degraded:      o.local.degraded,
		},
		Peers: lo.MapValues(o.peers, func(r *peerRecord, _ domain.ParticipantID) PeerView {
			return r.view()
		}),
		Chat:     append([]domain.ChatMessage(nil), o.chat...),
		Rejected: o.rejected,
	}
}
