package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"invite-service/internal/models"
)

// Gateway delivers payloads to a peer's devices through the push relay.
// delivered=true means at least one live device acknowledged receipt at the
// transport layer, not merely that the relay accepted the call.
type Gateway interface {
	SendResponse(ctx context.Context, recipientPeerID string, payload models.ResponsePayload) (bool, error)
	SendInvite(ctx context.Context, recipientPeerID string, payload models.InvitePayload) (bool, error)
}

type pushRequest struct {
	To   string `json:"to"`
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

type pushResult struct {
	NotificationsSent int `json:"notifications_sent"`
}

// HTTPGateway posts JSON to a push relay endpoint.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGateway builds a Gateway for the relay at baseURL, or a noop
// gateway when no relay is configured.
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) Gateway {
	if baseURL == "" {
		log.Printf("push gateway disabled, using noop: empty relay url")
		return noopGateway{}
	}
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// SendResponse delivers an invitation response to the counterparty.
func (g *HTTPGateway) SendResponse(ctx context.Context, recipientPeerID string, payload models.ResponsePayload) (bool, error) {
	return g.send(ctx, recipientPeerID, "response", payload)
}

// SendInvite delivers a new-invitation alert to the recipient.
func (g *HTTPGateway) SendInvite(ctx context.Context, recipientPeerID string, payload models.InvitePayload) (bool, error) {
	return g.send(ctx, recipientPeerID, "invitation", payload)
}

func (g *HTTPGateway) send(ctx context.Context, recipientPeerID, kind string, data any) (bool, error) {
	ctx, span := otel.Tracer("invite-service/push").Start(ctx, "push.send")
	defer span.End()
	span.SetAttributes(attribute.String("push.kind", kind))

	body, err := json.Marshal(pushRequest{To: recipientPeerID, Kind: kind, Data: data})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/push", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("push relay status %d", resp.StatusCode)
	}

	var result pushResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode relay response: %w", err)
	}

	// A 2xx with zero notifications_sent means the relay accepted the call
	// but no live device received anything.
	return result.NotificationsSent >= 1, nil
}

// noopGateway confirms delivery unconditionally so local flows can complete
// without push infrastructure. Development only.
type noopGateway struct{}

func (noopGateway) SendResponse(ctx context.Context, recipientPeerID string, payload models.ResponsePayload) (bool, error) {
	log.Printf("push noop response to=%s invitation=%s response=%s", recipientPeerID, payload.InvitationID, payload.Response)
	return true, nil
}

func (noopGateway) SendInvite(ctx context.Context, recipientPeerID string, payload models.InvitePayload) (bool, error) {
	log.Printf("push noop invite to=%s invitation=%s", recipientPeerID, payload.InvitationID)
	return true, nil
}
