package protocol

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a chat channel payload. Chat frames are session-scoped.
type ChatMessage interface {
	ChatType() ChatType
}

// EncodeChat frames a chat message.
func EncodeChat(m ChatMessage) ([]byte, error) {
	return EncodeMessage(m)
}

type ChatAuthor struct {
	ID          string   `msgpack:"id"`
	Username    string   `msgpack:"username"`
	DisplayName string   `msgpack:"displayName,omitempty"`
	BadgeIDs    []string `msgpack:"badgeIds"`
}

// UserMessage is a message typed by a participant.
type UserMessage struct {
	ID       string     `msgpack:"id"`
	User     ChatAuthor `msgpack:"user"`
	Content  string     `msgpack:"content"`
	SentAt   int64      `msgpack:"sentAt"` // epoch ms
	ReplyTo  string     `msgpack:"replyTo,omitempty"`
	Mentions []string   `msgpack:"mentions,omitempty"`
}

// SystemMessage is generated by the server (joins, moderation, notices).
type SystemMessage struct {
	ID      string `msgpack:"id"`
	Kind    string `msgpack:"kind,omitempty"`
	Content string `msgpack:"content"`
	SentAt  int64  `msgpack:"sentAt"`
}

// NewUserMessage stamps a fresh message id and the current time.
func NewUserMessage(author ChatAuthor, content string) UserMessage {
	return UserMessage{
		ID:      uuid.NewString(),
		User:    author,
		Content: content,
		SentAt:  time.Now().UnixMilli(),
	}
}

// NewSystemMessage stamps a fresh message id and the current time.
func NewSystemMessage(kind, content string) SystemMessage {
	return SystemMessage{
		ID:      uuid.NewString(),
		Kind:    kind,
		Content: content,
		SentAt:  time.Now().UnixMilli(),
	}
}

func (UserMessage) ChatType() ChatType   { return ChatUser }
func (SystemMessage) ChatType() ChatType { return ChatSystem }
