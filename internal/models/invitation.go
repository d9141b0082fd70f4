package models

import "time"

// InvitationStatus enumerates the lifecycle states of an invitation.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationDeclined  InvitationStatus = "declined"
	InvitationCancelled InvitationStatus = "cancelled"
)

// Invitation is one peer's request to open a conversation with another.
// Each device keeps its own copy of the record; the id is the shared key.
type Invitation struct {
	ID             string           `db:"id" json:"id"`
	SenderID       string           `db:"sender_id" json:"sender_id"`
	RecipientID    string           `db:"recipient_id" json:"recipient_id"`
	Message        string           `db:"message" json:"message"`
	Status         InvitationStatus `db:"status" json:"status"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	RespondedAt    *time.Time       `db:"responded_at" json:"responded_at,omitempty"`
	ConversationID *string          `db:"conversation_id" json:"conversation_id,omitempty"`
}

// Terminal reports whether the invitation has left the pending state.
func (i Invitation) Terminal() bool {
	return i.Status != InvitationPending
}
