package protocol_test

import (
	"testing"

	"github.com/dkeye/jamhub/internal/domain"
	"github.com/dkeye/jamhub/internal/protocol"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"
)

func TestCodecs_AgreeOnEnvelope(t *testing.T) {
	mid := "0"
	in := protocol.Message{
		Type:          protocol.TypeExistingMembers,
		ParticipantID: "p1",
		RoomID:        "blues",
		Participants:  []domain.Participant{{ID: "p2", DisplayName: "B"}},
		Data: &protocol.SignalData{
			Candidate: &webrtc.ICECandidateInit{Candidate: "candidate:1 1 udp 1 10.0.0.1 5000 typ host", SDPMid: &mid},
		},
	}

	for _, name := range []string{protocol.CodecJSON, protocol.CodecMsgpack} {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			codec, err := protocol.CodecByName(name)
			req.NoError(err)

			data, err := codec.Encode(in)
			req.NoError(err)
			out, err := codec.Decode(data)
			req.NoError(err)
			req.Equal(in, out)
		})
	}
}

func TestJSONCodec_WireNames(t *testing.T) {
	req := require.New(t)
	data, err := protocol.JSONCodec{}.Encode(protocol.NewMediaState("blues", domain.MediaState{Muted: true}))
	req.NoError(err)
	req.JSONEq(`{"type":"media-state","roomId":"blues","isMuted":true}`, string(data))
}

func TestDecode_Malformed(t *testing.T) {
	req := require.New(t)
	_, err := protocol.JSONCodec{}.Decode([]byte(`{"type":`))
	req.ErrorIs(err, protocol.ErrMalformed)
	_, err = protocol.MsgpackCodec{}.Decode([]byte{0xc1})
	req.ErrorIs(err, protocol.ErrMalformed)
	_, err = protocol.CodecByName("xml")
	req.Error(err)
}
