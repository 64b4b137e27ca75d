// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxDisplayNameLen = 36

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
)

// ParticipantID is unique per live relay connection, never reused.
type ParticipantID string

type Participant struct {
	ID          ParticipantID `json:"participantId"`
	DisplayName string        `json:"displayName"`
	RoomID      RoomID        `json:"roomId,omitempty"`
}

func NewParticipantID() ParticipantID {
	return ParticipantID(uuid.NewString())
}

// NormalizeDisplayName trims the name and checks its length in characters.
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return "", ErrDisplayNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", ErrDisplayNameTooLong
	}
	return name, nil
}
