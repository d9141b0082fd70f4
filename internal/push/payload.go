package push

import (
	"encoding/json"
	"errors"
	"fmt"

	"invite-service/internal/models"
)

// ErrMalformedPayload marks an inbound payload missing required fields for
// its declared kind. Such payloads are flagged, never silently dropped.
var ErrMalformedPayload = errors.New("malformed push payload")

// Kinds of inbound payloads.
const (
	KindInvitation = "invitation"
	KindResponse   = "response"
)

// Inbound is a decoded inbound push payload. Exactly one of Invite and
// Response is set, matching Kind.
type Inbound struct {
	Kind     string
	Invite   *models.InvitePayload
	Response *models.ResponsePayload
}

// rawPayload tolerates the field aliases older app builds emit. The aliasing
// stays inside this adapter; everything past it sees the strict schema.
type rawPayload struct {
	Kind string `json:"kind"`
	Type string `json:"type"`
	Data struct {
		InvitationID    string `json:"invitationId"`
		InviteIDLegacy  string `json:"invite_id"`
		SenderID        string `json:"senderId"`
		RecipientID     string `json:"recipientId"`
		ResponderID     string `json:"responderId"`
		Response        string `json:"response"`
		ConversationID  string `json:"conversationId"`
		ChatIDLegacy    string `json:"chat_id"`
		Message         string `json:"message"`
		Timestamp       int64  `json:"timestamp"`
	} `json:"data"`
}

// DecodePayload parses and validates an inbound push payload. It is the
// single trust boundary for platform-delivered data.
func DecodePayload(body []byte) (Inbound, error) {
	var raw rawPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	kind := raw.Kind
	if kind == "" {
		kind = raw.Type
	}

	invitationID := raw.Data.InvitationID
	if invitationID == "" {
		invitationID = raw.Data.InviteIDLegacy
	}
	conversationID := raw.Data.ConversationID
	if conversationID == "" {
		conversationID = raw.Data.ChatIDLegacy
	}

	switch kind {
	case KindInvitation:
		if invitationID == "" || raw.Data.SenderID == "" || raw.Data.RecipientID == "" {
			return Inbound{}, fmt.Errorf("%w: invitation payload missing required fields", ErrMalformedPayload)
		}
		return Inbound{
			Kind: KindInvitation,
			Invite: &models.InvitePayload{
				InvitationID: invitationID,
				SenderID:     raw.Data.SenderID,
				RecipientID:  raw.Data.RecipientID,
				Message:      raw.Data.Message,
				Timestamp:    raw.Data.Timestamp,
			},
		}, nil

	case KindResponse:
		if invitationID == "" || raw.Data.ResponderID == "" {
			return Inbound{}, fmt.Errorf("%w: response payload missing required fields", ErrMalformedPayload)
		}
		switch raw.Data.Response {
		case models.ResponseAccepted, models.ResponseDeclined, models.ResponseCancelled:
		default:
			return Inbound{}, fmt.Errorf("%w: unknown response %q", ErrMalformedPayload, raw.Data.Response)
		}
		// A missing conversationId on an accepted response is NOT malformed:
		// delivery platforms truncate payloads, and the controller has a
		// cache fallback for exactly that case.
		return Inbound{
			Kind: KindResponse,
			Response: &models.ResponsePayload{
				InvitationID:   invitationID,
				ResponderID:    raw.Data.ResponderID,
				Response:       raw.Data.Response,
				ConversationID: conversationID,
				Timestamp:      raw.Data.Timestamp,
			},
		}, nil

	default:
		return Inbound{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, kind)
	}
}
