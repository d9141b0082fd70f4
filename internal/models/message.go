package models

import "time"

// Message is a conversation message. System messages (the conversation seed)
// share the table with user messages.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	Content        string    `db:"content" json:"content"`
	IsSystem       bool      `db:"is_system" json:"is_system"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// InviteEvent is pushed through the websocket relay to the connected UI
// after a state change has been durably committed.
type InviteEvent struct {
	Type         string        `json:"type"`
	Invitation   *Invitation   `json:"invitation,omitempty"`
	Conversation *Conversation `json:"conversation,omitempty"`
	Message      *Message      `json:"message,omitempty"`
}
