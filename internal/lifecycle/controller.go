// Package lifecycle implements the invitation state machine with
// notification-gated commit: acceptance provisions the shared conversation
// optimistically, then treats confirmed out-of-band delivery of the response
// as the commit precondition, reverting the local state when delivery fails.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"invite-service/internal/ident"
	"invite-service/internal/models"
	"invite-service/internal/notify"
	"invite-service/internal/observability"
	"invite-service/internal/push"
	"invite-service/internal/repositories"
	"invite-service/internal/telemetry"
)

const (
	defaultGatewayAttempts = 3
	defaultRetryDelay      = 2 * time.Second

	seedMessageText = "Conversation started"
)

var errNotDelivered = errors.New("no live device acknowledged delivery")

// EventSink receives state-change events for the connected UI after a
// durable commit. Implementations must not block.
type EventSink interface {
	BroadcastToPeer(peerID string, event models.InviteEvent)
}

// Config tunes the controller's gateway retry behaviour.
type Config struct {
	GatewayAttempts   int
	GatewayRetryDelay time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Controller orchestrates invitation state transitions, conversation
// provisioning, and compensating rollback. All collaborators are injected;
// sink and audit may be nil.
type Controller struct {
	invitations   repositories.InvitationRepository
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	cache         repositories.ResponseCacheRepository
	gateway       push.Gateway
	emitter       notify.Emitter
	sink          EventSink
	audit         *telemetry.AuditEmitter
	cfg           Config
	locks         *keyedMutex
}

// NewController builds a Controller.
func NewController(
	invitations repositories.InvitationRepository,
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	cache repositories.ResponseCacheRepository,
	gateway push.Gateway,
	emitter notify.Emitter,
	sink EventSink,
	audit *telemetry.AuditEmitter,
	cfg Config,
) *Controller {
	if emitter == nil {
		emitter = notify.NoopEmitter{}
	}
	return &Controller{
		invitations:   invitations,
		conversations: conversations,
		messages:      messages,
		cache:         cache,
		gateway:       gateway,
		emitter:       emitter,
		sink:          sink,
		audit:         audit,
		cfg:           cfg,
		locks:         newKeyedMutex(),
	}
}

func (c *Controller) now() time.Time {
	if c.cfg.Now != nil {
		return c.cfg.Now().UTC()
	}
	return time.Now().UTC()
}

// Invite creates a local pending invitation and announces it to the
// recipient's device. The announcement is best-effort: the invitation
// exists locally regardless of push delivery.
func (c *Controller) Invite(ctx context.Context, senderID, recipientID, message string) (models.Invitation, error) {
	if senderID == recipientID {
		return models.Invitation{}, ErrSelfInvitation
	}

	now := c.now()
	inv := models.Invitation{
		ID:          ident.NewInvitationID(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     message,
		Status:      models.InvitationPending,
		CreatedAt:   now,
	}
	if err := c.invitations.Create(ctx, inv); err != nil {
		return models.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}

	payload := models.InvitePayload{
		InvitationID: inv.ID,
		SenderID:     senderID,
		RecipientID:  recipientID,
		Message:      message,
		Timestamp:    now.UnixMilli(),
	}
	if delivered, err := c.gateway.SendInvite(ctx, recipientID, payload); err != nil || !delivered {
		log.Printf("invite push best-effort failed invitation=%s delivered=%v err=%v", inv.ID, delivered, err)
	}

	observability.IncInvitationCreated()
	c.auditEvent(ctx, "invitation_created", inv.ID, senderID)
	c.publish(models.InviteEvent{Type: "invitation_created", Invitation: &inv}, senderID)
	return inv, nil
}

// Accept transitions a pending invitation addressed to actorID to accepted.
//
// The conversation is provisioned and the acceptance persisted before the
// gateway call (the optimistic local commit); confirmed delivery of the
// response payload is the commit gate. Without it the sender's device would
// never learn the conversation id, so on gateway exhaustion the whole commit
// is reverted and ErrRecipientUnreachable returned.
func (c *Controller) Accept(ctx context.Context, invitationID, actorID string) (models.Invitation, error) {
	unlock := c.locks.Lock(invitationID)
	defer unlock()

	inv, err := c.invitations.Get(ctx, invitationID)
	if err != nil {
		return models.Invitation{}, err
	}
	if inv.Status != models.InvitationPending || inv.RecipientID != actorID {
		return models.Invitation{}, ErrInvalidState
	}

	prior := inv
	now := c.now()
	convID := ident.NewConversationID()
	seedID := ident.NewMessageID()

	conv := models.Conversation{
		ID:            convID,
		ParticipantA:  actorID,
		ParticipantB:  inv.SenderID,
		CreatedAt:     now,
		UpdatedAt:     now,
		SeedMessageID: seedID,
	}
	if err := c.conversations.Create(ctx, conv); err != nil {
		return models.Invitation{}, fmt.Errorf("provision conversation: %w", err)
	}
	seed := models.Message{
		ID:             seedID,
		ConversationID: convID,
		SenderID:       actorID,
		Content:        seedMessageText,
		IsSystem:       true,
		CreatedAt:      now,
	}
	if err := c.messages.Create(ctx, seed); err != nil {
		_ = c.conversations.Delete(ctx, convID)
		return models.Invitation{}, fmt.Errorf("seed conversation: %w", err)
	}

	inv.Status = models.InvitationAccepted
	inv.RespondedAt = &now
	inv.ConversationID = &convID
	if err := c.invitations.Update(ctx, inv); err != nil {
		_ = c.conversations.Delete(ctx, convID)
		return models.Invitation{}, fmt.Errorf("persist acceptance: %w", err)
	}

	payload := models.ResponsePayload{
		InvitationID:   inv.ID,
		ResponderID:    actorID,
		Response:       models.ResponseAccepted,
		ConversationID: convID,
		Timestamp:      now.UnixMilli(),
	}
	if err := c.cache.Put(ctx, inv.ID, payload); err != nil {
		log.Printf("response cache write failed invitation=%s: %v", inv.ID, err)
	}

	if !c.deliverResponse(ctx, inv.SenderID, payload) {
		c.compensate(ctx, prior, convID, "accept")
		return models.Invitation{}, ErrRecipientUnreachable
	}

	observability.IncTransition(string(models.InvitationAccepted))
	c.auditEvent(ctx, "invitation_accepted", inv.ID, actorID)
	c.emitter.Show("Invitation Accepted", fmt.Sprintf("You are now connected with %s", inv.SenderID), "invitation_accepted",
		map[string]any{"invitation_id": inv.ID, "conversation_id": convID})
	c.publish(models.InviteEvent{Type: "invitation_updated", Invitation: &inv}, actorID)
	c.publish(models.InviteEvent{Type: "conversation_created", Conversation: &conv}, actorID)
	return inv, nil
}

// Decline transitions a pending invitation addressed to actorID to declined,
// gated on delivery like Accept but with no conversation to provision.
func (c *Controller) Decline(ctx context.Context, invitationID, actorID string) (models.Invitation, error) {
	unlock := c.locks.Lock(invitationID)
	defer unlock()

	inv, err := c.invitations.Get(ctx, invitationID)
	if err != nil {
		return models.Invitation{}, err
	}
	if inv.Status != models.InvitationPending || inv.RecipientID != actorID {
		return models.Invitation{}, ErrInvalidState
	}

	prior := inv
	now := c.now()
	inv.Status = models.InvitationDeclined
	inv.RespondedAt = &now
	if err := c.invitations.Update(ctx, inv); err != nil {
		return models.Invitation{}, fmt.Errorf("persist decline: %w", err)
	}

	payload := models.ResponsePayload{
		InvitationID: inv.ID,
		ResponderID:  actorID,
		Response:     models.ResponseDeclined,
		Timestamp:    now.UnixMilli(),
	}
	if !c.deliverResponse(ctx, inv.SenderID, payload) {
		c.compensate(ctx, prior, "", "decline")
		return models.Invitation{}, ErrRecipientUnreachable
	}

	observability.IncTransition(string(models.InvitationDeclined))
	c.auditEvent(ctx, "invitation_declined", inv.ID, actorID)
	c.publish(models.InviteEvent{Type: "invitation_updated", Invitation: &inv}, actorID)
	return inv, nil
}

// Cancel withdraws a pending invitation. Sender-only, and because it is only
// valid while pending, it can never race a completed acceptance. The
// counterpart is notified best-effort with no delivery gate.
func (c *Controller) Cancel(ctx context.Context, invitationID, actorID string) (models.Invitation, error) {
	unlock := c.locks.Lock(invitationID)
	defer unlock()

	inv, err := c.invitations.Get(ctx, invitationID)
	if err != nil {
		return models.Invitation{}, err
	}
	if inv.Status != models.InvitationPending || inv.SenderID != actorID {
		return models.Invitation{}, ErrInvalidState
	}

	now := c.now()
	inv.Status = models.InvitationCancelled
	inv.RespondedAt = &now
	if err := c.invitations.Update(ctx, inv); err != nil {
		return models.Invitation{}, fmt.Errorf("persist cancel: %w", err)
	}

	payload := models.ResponsePayload{
		InvitationID: inv.ID,
		ResponderID:  actorID,
		Response:     models.ResponseCancelled,
		Timestamp:    now.UnixMilli(),
	}
	if _, err := c.gateway.SendResponse(ctx, inv.RecipientID, payload); err != nil {
		log.Printf("cancel push best-effort failed invitation=%s: %v", inv.ID, err)
	}

	observability.IncTransition(string(models.InvitationCancelled))
	c.auditEvent(ctx, "invitation_cancelled", inv.ID, actorID)
	c.publish(models.InviteEvent{Type: "invitation_updated", Invitation: &inv}, actorID)
	return inv, nil
}

// HandleResponse applies a counterparty's response payload to the local copy
// of the invitation. For accepted and declined responses this is the original
// sender's device adopting the outcome; cancelled responses arrive on the
// recipient's device. Duplicate deliveries are idempotent.
func (c *Controller) HandleResponse(ctx context.Context, payload models.ResponsePayload) error {
	unlock := c.locks.Lock(payload.InvitationID)
	defer unlock()

	inv, err := c.invitations.Get(ctx, payload.InvitationID)
	if err != nil {
		return err
	}

	switch payload.Response {
	case models.ResponseAccepted:
		return c.adoptAcceptance(ctx, inv, payload)

	case models.ResponseDeclined:
		if inv.Terminal() {
			return nil
		}
		now := c.now()
		inv.Status = models.InvitationDeclined
		inv.RespondedAt = &now
		if err := c.invitations.Update(ctx, inv); err != nil {
			return fmt.Errorf("persist decline: %w", err)
		}
		observability.IncTransition(string(models.InvitationDeclined))
		c.auditEvent(ctx, "invitation_declined", inv.ID, payload.ResponderID)
		c.emitter.Show("Invitation Declined", fmt.Sprintf("%s declined your invitation", payload.ResponderID), "invitation_declined",
			map[string]any{"invitation_id": inv.ID})
		c.publish(models.InviteEvent{Type: "invitation_updated", Invitation: &inv}, inv.SenderID)
		return nil

	case models.ResponseCancelled:
		if inv.Terminal() {
			return nil
		}
		now := c.now()
		inv.Status = models.InvitationCancelled
		inv.RespondedAt = &now
		if err := c.invitations.Update(ctx, inv); err != nil {
			return fmt.Errorf("persist cancel: %w", err)
		}
		observability.IncTransition(string(models.InvitationCancelled))
		c.auditEvent(ctx, "invitation_cancelled", inv.ID, payload.ResponderID)
		c.emitter.Show("Invitation Cancelled", fmt.Sprintf("%s withdrew their invitation", payload.ResponderID), "invitation_cancelled",
			map[string]any{"invitation_id": inv.ID})
		c.publish(models.InviteEvent{Type: "invitation_updated", Invitation: &inv}, inv.RecipientID)
		return nil

	default:
		return fmt.Errorf("unknown response %q", payload.Response)
	}
}

// adoptAcceptance adopts the accepter's conversation id verbatim. The local
// device never mints its own id for an incoming acceptance: the payload (or
// its cached copy) is the sole synchronization channel.
func (c *Controller) adoptAcceptance(ctx context.Context, inv models.Invitation, payload models.ResponsePayload) error {
	if inv.Status == models.InvitationAccepted && inv.ConversationID != nil {
		return nil // duplicate delivery
	}
	if inv.Terminal() && inv.Status != models.InvitationAccepted {
		// The two devices disagree (e.g. local cancel raced the acceptance
		// in flight). Keep the local terminal state and flag the conflict.
		c.auditEvent(ctx, "response_conflict", inv.ID, payload.ResponderID)
		return ErrInvalidState
	}

	convID := payload.ConversationID
	if convID == "" {
		cached, ok, err := c.cache.Get(ctx, inv.ID)
		if err != nil {
			log.Printf("response cache read failed invitation=%s: %v", inv.ID, err)
		}
		if ok && cached.ConversationID != "" {
			convID = cached.ConversationID
		}
	}

	now := c.now()
	if convID == "" {
		// Truncated payload and no cached copy: record the acceptance but
		// flag it so the condition is reportable rather than silent.
		inv.Status = models.InvitationAccepted
		inv.RespondedAt = &now
		inv.ConversationID = nil
		if err := c.invitations.Update(ctx, inv); err != nil {
			return fmt.Errorf("persist acceptance: %w", err)
		}
		observability.IncResyncRequired()
		c.auditEvent(ctx, "resync_required", inv.ID, payload.ResponderID)
		c.emitter.Show("Sync Required", "Invitation accepted but the conversation could not be linked", "resync_required",
			map[string]any{"invitation_id": inv.ID})
		c.publish(models.InviteEvent{Type: "invitation_updated", Invitation: &inv}, inv.SenderID)
		return ErrResyncRequired
	}

	seedID := ident.NewMessageID()
	conv := models.Conversation{
		ID:            convID,
		ParticipantA:  inv.SenderID,
		ParticipantB:  payload.ResponderID,
		CreatedAt:     now,
		UpdatedAt:     now,
		SeedMessageID: seedID,
	}
	switch err := c.conversations.Create(ctx, conv); {
	case errors.Is(err, repositories.ErrDuplicateConversation):
		// Already adopted by an earlier delivery; nothing to provision.
	case err != nil:
		return fmt.Errorf("adopt conversation: %w", err)
	default:
		seed := models.Message{
			ID:             seedID,
			ConversationID: convID,
			SenderID:       payload.ResponderID,
			Content:        seedMessageText,
			IsSystem:       true,
			CreatedAt:      now,
		}
		if err := c.messages.Create(ctx, seed); err != nil {
			log.Printf("seed message write failed conversation=%s: %v", convID, err)
		}
	}

	if err := c.cache.Put(ctx, inv.ID, payload); err != nil {
		log.Printf("response cache write failed invitation=%s: %v", inv.ID, err)
	}

	inv.Status = models.InvitationAccepted
	inv.RespondedAt = &now
	inv.ConversationID = &convID
	if err := c.invitations.Update(ctx, inv); err != nil {
		return fmt.Errorf("persist acceptance: %w", err)
	}

	observability.IncTransition(string(models.InvitationAccepted))
	c.auditEvent(ctx, "invitation_accepted", inv.ID, payload.ResponderID)
	c.emitter.Show("Invitation Accepted", fmt.Sprintf("%s accepted your invitation", payload.ResponderID), "invitation_accepted",
		map[string]any{"invitation_id": inv.ID, "conversation_id": convID})
	c.publish(models.InviteEvent{Type: "invitation_updated", Invitation: &inv}, inv.SenderID)
	c.publish(models.InviteEvent{Type: "conversation_created", Conversation: &conv}, inv.SenderID)
	return nil
}

// HandleIncomingInvite materializes a counterparty's invitation as a local
// pending record on the recipient's device. Redelivery is idempotent.
func (c *Controller) HandleIncomingInvite(ctx context.Context, payload models.InvitePayload) (models.Invitation, error) {
	unlock := c.locks.Lock(payload.InvitationID)
	defer unlock()

	createdAt := c.now()
	if payload.Timestamp > 0 {
		createdAt = time.UnixMilli(payload.Timestamp).UTC()
	}
	inv := models.Invitation{
		ID:          payload.InvitationID,
		SenderID:    payload.SenderID,
		RecipientID: payload.RecipientID,
		Message:     payload.Message,
		Status:      models.InvitationPending,
		CreatedAt:   createdAt,
	}

	err := c.invitations.Create(ctx, inv)
	if errors.Is(err, repositories.ErrDuplicateInvitation) {
		return c.invitations.Get(ctx, inv.ID)
	}
	if err != nil {
		return models.Invitation{}, fmt.Errorf("store invitation: %w", err)
	}

	observability.IncInvitationCreated()
	c.auditEvent(ctx, "invitation_received", inv.ID, payload.RecipientID)
	c.emitter.Show("New Invitation", fmt.Sprintf("%s wants to start a conversation", payload.SenderID), "invitation_received",
		map[string]any{"invitation_id": inv.ID})
	c.publish(models.InviteEvent{Type: "invitation_created", Invitation: &inv}, payload.RecipientID)
	return inv, nil
}

// deliverResponse drives the bounded retry sequence against the gateway.
// It returns true only when at least one live device confirmed receipt.
func (c *Controller) deliverResponse(ctx context.Context, recipientPeerID string, payload models.ResponsePayload) bool {
	attempts := c.cfg.GatewayAttempts
	if attempts <= 0 {
		attempts = defaultGatewayAttempts
	}
	delay := c.cfg.GatewayRetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	op := func() error {
		delivered, err := c.gateway.SendResponse(ctx, recipientPeerID, payload)
		if err != nil {
			observability.IncGatewayAttempt("error")
			return err
		}
		if !delivered {
			observability.IncGatewayAttempt("undelivered")
			return errNotDelivered
		}
		observability.IncGatewayAttempt("delivered")
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		log.Printf("response delivery exhausted invitation=%s recipient=%s: %v", payload.InvitationID, recipientPeerID, err)
		return false
	}
	return true
}

// compensate reverts the optimistic local commit after gateway exhaustion.
// It must run after the retry sequence, never concurrently with it, since it
// writes back the pre-operation record.
func (c *Controller) compensate(ctx context.Context, prior models.Invitation, conversationID, operation string) {
	if err := c.invitations.Update(ctx, prior); err != nil {
		log.Printf("compensation revert failed invitation=%s: %v", prior.ID, err)
	}
	if conversationID != "" {
		if err := c.conversations.Delete(ctx, conversationID); err != nil {
			log.Printf("compensation delete failed conversation=%s: %v", conversationID, err)
		}
	}
	observability.IncCompensation(operation)
	c.auditEvent(ctx, "compensation_"+operation, prior.ID, prior.RecipientID)
}

func (c *Controller) auditEvent(ctx context.Context, event, invitationID, peerID string) {
	if c.audit == nil {
		return
	}
	c.audit.Emit(ctx, "INFO", fmt.Sprintf("%s invitation=%s", event, invitationID), "", &peerID)
}

func (c *Controller) publish(event models.InviteEvent, peers ...string) {
	if c.sink == nil {
		return
	}
	for _, peer := range peers {
		c.sink.BroadcastToPeer(peer, event)
	}
}
