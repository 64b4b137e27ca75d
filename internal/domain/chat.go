package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
	"time"
)

const MaxChatBodyLen = 2000

var (
	ErrChatBodyEmpty   = errors.New("chat body empty")
	ErrChatBodyTooLong = errors.New("chat body too long")
)

// ChatMessage is stamped once by the relay and never modified afterwards.
type ChatMessage struct {
	SenderID    ParticipantID `json:"senderId"`
	DisplayName string        `json:"displayName"`
	Body        string        `json:"body"`
	Timestamp   int64         `json:"timestamp"`
}

func NewChatMessage(sender Participant, body string, at time.Time) ChatMessage {
	return ChatMessage{
		SenderID:    sender.ID,
		DisplayName: sender.DisplayName,
		Body:        body,
		Timestamp:   at.UnixMilli(),
	}
}

func NormalizeChatBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrChatBodyEmpty
	}
	if utf8.RuneCountInString(body) > MaxChatBodyLen {
		return "", ErrChatBodyTooLong
	}
	return body, nil
}
