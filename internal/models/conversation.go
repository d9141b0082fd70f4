package models

import "time"

// Conversation is the local record of a messaging thread between two peers.
// The accepter and the original sender each hold their own row; the id is
// the only value the two devices share.
type Conversation struct {
	ID            string    `db:"id" json:"id"`
	ParticipantA  string    `db:"participant_a" json:"participant_a"`
	ParticipantB  string    `db:"participant_b" json:"participant_b"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
	SeedMessageID string    `db:"seed_message_id" json:"seed_message_id"`
}

// HasParticipant reports whether the peer is one of the two participants.
func (c Conversation) HasParticipant(peerID string) bool {
	return c.ParticipantA == peerID || c.ParticipantB == peerID
}
