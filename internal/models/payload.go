package models

// Response values carried in a ResponsePayload.
const (
	ResponseAccepted  = "accepted"
	ResponseDeclined  = "declined"
	ResponseCancelled = "cancelled"
)

// ResponsePayload is the out-of-band payload delivered to the counterparty
// after an invitation response. For an accepted response the ConversationID
// is the sole channel through which the original sender learns the shared
// conversation id.
type ResponsePayload struct {
	InvitationID   string `json:"invitationId"`
	ResponderID    string `json:"responderId"`
	Response       string `json:"response"`
	ConversationID string `json:"conversationId,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

// InvitePayload announces a freshly created invitation to the recipient's
// device. Delivery is best-effort; the invitation exists locally regardless.
type InvitePayload struct {
	InvitationID string `json:"invitationId"`
	SenderID     string `json:"senderId"`
	RecipientID  string `json:"recipientId"`
	Message      string `json:"message,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}
