package domain

import (
	"errors"
	"strings"
)

const MaxRoomIDLen = 64

var (
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomIDTooLong = errors.New("room id too long")
	ErrRoomIDCharset = errors.New("room id must be printable ASCII")
)

type RoomID string

// NormalizeRoomID trims raw and accepts 1 to MaxRoomIDLen printable ASCII
// characters, the same rule the relay enforces.
func NormalizeRoomID(raw string) (RoomID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrRoomIDEmpty
	}
	if len(raw) > MaxRoomIDLen {
		return "", ErrRoomIDTooLong
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < 0x20 || raw[i] > 0x7e {
			return "", ErrRoomIDCharset
		}
	}
	return RoomID(raw), nil
}
