package models

import (
	"fmt"
	"time"
)

// Role tags a chat turn's author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ParseRole rejects unknown role strings.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// ChatMessage is the local cache row for a single chat turn.
type ChatMessage struct {
	ID             string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	ConversationID string    `gorm:"type:varchar(50);index" json:"conversationId"`
	Role           Role      `gorm:"type:varchar(20)" json:"role"`
	Content        string    `gorm:"type:text" json:"content"`
	CreatedAt      int64     `gorm:"index" json:"createdAt"`
	SyncState      SyncState `gorm:"index;default:0" json:"syncState"`
	SyncAttempts   int       `gorm:"default:0" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ChatMessageDocument is the remote document representation of a ChatMessage.
type ChatMessageDocument struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (m *ChatMessage) ToDocument() ChatMessageDocument {
	return ChatMessageDocument{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
		CreatedAt:      time.UnixMilli(m.CreatedAt).UTC(),
	}
}

func ChatMessageFromDocument(doc ChatMessageDocument) (ChatMessage, error) {
	role, err := ParseRole(doc.Role)
	if err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{
		ID:             doc.ID,
		ConversationID: doc.ConversationID,
		Role:           role,
		Content:        doc.Content,
		CreatedAt:      doc.CreatedAt.UnixMilli(),
		SyncState:      SyncStateSynced,
	}, nil
}

// Conversation is the local cache row for a chat thread. LastMessage holds
// the preview shown in the conversation list; updating it re-marks the row
// unsynced.
type Conversation struct {
	ID            string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Title         string    `gorm:"type:varchar(100)" json:"title"`
	LastMessage   string    `gorm:"type:text" json:"lastMessage"`
	LastMessageAt int64     `json:"lastMessageAt"`
	CreatedAt     int64     `gorm:"index" json:"createdAt"`
	SyncState     SyncState `gorm:"index;default:0" json:"syncState"`
	SyncAttempts  int       `gorm:"default:0" json:"-"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ConversationDocument is the remote document representation of a Conversation.
type ConversationDocument struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (c *Conversation) ToDocument() ConversationDocument {
	return ConversationDocument{
		ID:            c.ID,
		Title:         c.Title,
		LastMessage:   c.LastMessage,
		LastMessageAt: time.UnixMilli(c.LastMessageAt).UTC(),
		CreatedAt:     time.UnixMilli(c.CreatedAt).UTC(),
	}
}

func ConversationFromDocument(doc ConversationDocument) Conversation {
	return Conversation{
		ID:            doc.ID,
		Title:         doc.Title,
		LastMessage:   doc.LastMessage,
		LastMessageAt: doc.LastMessageAt.UnixMilli(),
		CreatedAt:     doc.CreatedAt.UnixMilli(),
		SyncState:     SyncStateSynced,
	}
}
