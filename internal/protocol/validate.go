package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/jamhub/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/pion/webrtc/v4"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

var validate = validator.New()

type joinRoomRequest struct {
	RoomID      string `validate:"required,max=64,printascii"`
	DisplayName string `validate:"required,max=36"`
}

type chatRequest struct {
	RoomID string `validate:"required,max=64"`
	Body   string `validate:"required,max=2000"`
}

// Validate checks an inbound client message. Join and chat fields are expected
// to be trimmed by Normalize first.
func Validate(m Message) error {
	switch m.Type {
	case TypeJoinRoom:
		return wrap(validate.Struct(joinRoomRequest{
			RoomID:      string(m.RoomID),
			DisplayName: m.DisplayName,
		}))
	case TypeOffer, TypeAnswer:
		if err := validateTarget(m); err != nil {
			return err
		}
		if m.Data.Description == nil {
			return fmt.Errorf("%w: %s without description", ErrMalformed, m.Type)
		}
		want := webrtc.SDPTypeOffer
		if m.Type == TypeAnswer {
			want = webrtc.SDPTypeAnswer
		}
		if m.Data.Description.Type != want {
			return fmt.Errorf("%w: %s carries %s", ErrMalformed, m.Type, m.Data.Description.Type)
		}
		return nil
	case TypeCandidate:
		if err := validateTarget(m); err != nil {
			return err
		}
		if m.Data.Candidate == nil {
			return fmt.Errorf("%w: candidate without payload", ErrMalformed)
		}
		return nil
	case TypeMediaState:
		return wrap(validate.Var(string(m.RoomID), "required,max=64"))
	case TypeChatMessage:
		return wrap(validate.Struct(chatRequest{RoomID: string(m.RoomID), Body: m.Body}))
	case TypeLeaveRoom, TypePing:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
}

// Normalize trims user supplied text fields in place.
func Normalize(m *Message) {
	m.RoomID = domain.RoomID(strings.TrimSpace(string(m.RoomID)))
	m.DisplayName = strings.TrimSpace(m.DisplayName)
	m.Body = strings.TrimSpace(m.Body)
}

func validateTarget(m Message) error {
	if err := validate.Var(string(m.To), "required,uuid4"); err != nil {
		return fmt.Errorf("%w: bad target: %v", ErrMalformed, err)
	}
	if m.Data == nil {
		return fmt.Errorf("%w: %s without data", ErrMalformed, m.Type)
	}
	return nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}
