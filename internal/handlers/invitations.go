package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"invite-service/internal/lifecycle"
	"invite-service/internal/models"
	"invite-service/internal/push"
	"invite-service/internal/repositories"
	"invite-service/internal/telemetry"
)

// InvitationService is the lifecycle surface the handlers drive.
type InvitationService interface {
	Invite(ctx context.Context, senderID, recipientID, message string) (models.Invitation, error)
	Accept(ctx context.Context, invitationID, actorID string) (models.Invitation, error)
	Decline(ctx context.Context, invitationID, actorID string) (models.Invitation, error)
	Cancel(ctx context.Context, invitationID, actorID string) (models.Invitation, error)
	HandleResponse(ctx context.Context, payload models.ResponsePayload) error
	HandleIncomingInvite(ctx context.Context, payload models.InvitePayload) (models.Invitation, error)
}

// InvitationHandler manages invitation endpoints.
type InvitationHandler struct {
	service     InvitationService
	invitations repositories.InvitationRepository
	audit       *telemetry.AuditEmitter
}

// NewInvitationHandler builds an InvitationHandler.
func NewInvitationHandler(service InvitationService, invitations repositories.InvitationRepository, audit *telemetry.AuditEmitter) *InvitationHandler {
	return &InvitationHandler{service: service, invitations: invitations, audit: audit}
}

// Create records a new outgoing invitation for the acting peer.
func (h *InvitationHandler) Create(c *gin.Context) {
	var req struct {
		RecipientID string `json:"recipient_id" binding:"required"`
		Message     string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := peerIDFromContext(c)
	inv, err := h.service.Invite(c.Request.Context(), actorID, req.RecipientID, req.Message)
	if err != nil {
		if errors.Is(err, lifecycle.ErrSelfInvitation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot invite yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create invitation"})
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// List returns the acting peer's invitations, filtered by role.
func (h *InvitationHandler) List(c *gin.Context) {
	actorID := peerIDFromContext(c)

	var (
		invs []models.Invitation
		err  error
	)
	switch role := c.DefaultQuery("role", "received"); role {
	case "sent":
		invs, err = h.invitations.ListBySender(c.Request.Context(), actorID)
	case "received":
		invs, err = h.invitations.ListByRecipient(c.Request.Context(), actorID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be sent or received"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invitations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invs})
}

// Accept runs the gated accept operation for the acting peer.
func (h *InvitationHandler) Accept(c *gin.Context) {
	h.respond(c, func(ctx context.Context, id, actor string) (models.Invitation, error) {
		return h.service.Accept(ctx, id, actor)
	})
}

// Decline runs the gated decline operation for the acting peer.
func (h *InvitationHandler) Decline(c *gin.Context) {
	h.respond(c, func(ctx context.Context, id, actor string) (models.Invitation, error) {
		return h.service.Decline(ctx, id, actor)
	})
}

// Cancel withdraws a pending invitation sent by the acting peer.
func (h *InvitationHandler) Cancel(c *gin.Context) {
	h.respond(c, func(ctx context.Context, id, actor string) (models.Invitation, error) {
		return h.service.Cancel(ctx, id, actor)
	})
}

func (h *InvitationHandler) respond(c *gin.Context, op func(context.Context, string, string) (models.Invitation, error)) {
	invitationID := c.Param("invitation_id")
	actorID := peerIDFromContext(c)

	inv, err := op(c.Request.Context(), invitationID, actorID)
	if err != nil {
		status, message := statusForError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, inv)
}

// PushReceipt ingests a payload delivered by the platform's push receipt
// path: counterparty responses and incoming invitations.
func (h *InvitationHandler) PushReceipt(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	inbound, err := push.DecodePayload(body)
	if err != nil {
		h.audit.Emit(c.Request.Context(), "WARN", "malformed push payload: "+err.Error(), requestIDFromContext(c), peerIDPointer(c))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload", "resync_required": false})
		return
	}

	switch inbound.Kind {
	case push.KindInvitation:
		inv, err := h.service.HandleIncomingInvite(c.Request.Context(), *inbound.Invite)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store invitation"})
			return
		}
		c.JSON(http.StatusOK, inv)

	case push.KindResponse:
		if err := h.service.HandleResponse(c.Request.Context(), *inbound.Response); err != nil {
			if errors.Is(err, lifecycle.ErrResyncRequired) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "resync_required": true})
				return
			}
			status, message := statusForError(err)
			c.JSON(status, gin.H{"error": message})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, repositories.ErrInvitationNotFound):
		return http.StatusNotFound, "invitation not found"
	case errors.Is(err, lifecycle.ErrInvalidState):
		return http.StatusConflict, "invitation is not in a state that allows this operation"
	case errors.Is(err, lifecycle.ErrRecipientUnreachable):
		return http.StatusBadGateway, lifecycle.ErrRecipientUnreachable.Error()
	default:
		return http.StatusInternalServerError, "operation failed"
	}
}
