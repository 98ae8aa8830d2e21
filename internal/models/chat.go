package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatSession holds the filters accumulated by the search assistant.
// Nothing moves a session to completed yet; such sessions reject new turns.
type ChatSession struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`
	ActiveFilters SearchFilters       `bson:"active_filters" json:"activeFilters"`
	Status        string              `bson:"status" json:"status"`
	CreatedAt     time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updatedAt"`
}

type ChatMessage struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID      primitive.ObjectID `bson:"session_id" json:"sessionId"`
	Role           string             `bson:"role" json:"role"`
	Content        string             `bson:"content" json:"content"`
	TranscriptText *string            `bson:"transcript_text,omitempty" json:"transcriptText,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}

// ChatMessageView is what callers outside the service ever see of a message.
type ChatMessageView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *ChatMessage) View() ChatMessageView {
	return ChatMessageView{
		ID:        m.ID.Hex(),
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// Session status
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
