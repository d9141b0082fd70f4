// Package ident mints the identifiers shared between peer devices.
//
// Conversation ids are minted on the accepter's device and adopted verbatim
// by the sender's device, so they must be unique without coordination and
// survive transport inside a notification payload: a millisecond timestamp
// prefix plus 128 bits of entropy rendered as hex keeps them ASCII-safe and
// collision-free across the combined device population.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewInvitationID returns a fresh invitation identifier.
func NewInvitationID() string {
	return newID("inv")
}

// NewConversationID returns a fresh conversation identifier.
func NewConversationID() string {
	return newID("chat")
}

// NewMessageID returns a fresh message identifier.
func NewMessageID() string {
	return newID("msg")
}

func newID(prefix string) string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("ident: read entropy: %v", err))
	}
	return fmt.Sprintf("%s_%d-%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(buf))
}
