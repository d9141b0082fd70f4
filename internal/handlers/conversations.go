package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"invite-service/internal/ident"
	"invite-service/internal/lifecycle"
	"invite-service/internal/models"
	"invite-service/internal/repositories"
)

// ConversationHandler manages conversation endpoints.
type ConversationHandler struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	sink          lifecycle.EventSink
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(conversations repositories.ConversationRepository, messages repositories.MessageRepository, sink lifecycle.EventSink) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, messages: messages, sink: sink}
}

// List returns the conversations the acting peer participates in.
func (h *ConversationHandler) List(c *gin.Context) {
	actorID := peerIDFromContext(c)

	convs, err := h.conversations.List(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// GetMessages returns ordered messages for a conversation.
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	conv, ok := h.loadForParticipant(c)
	if !ok {
		return
	}

	msgs, err := h.messages.ListByConversation(c.Request.Context(), conv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage stores a conversation message and relays it to the UI.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	conv, ok := h.loadForParticipant(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	msg := models.Message{
		ID:             ident.NewMessageID(),
		ConversationID: conv.ID,
		SenderID:       peerIDFromContext(c),
		Content:        req.Content,
		CreatedAt:      now,
	}
	if err := h.messages.Create(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	if err := h.conversations.Touch(c.Request.Context(), conv.ID, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update conversation"})
		return
	}

	if h.sink != nil {
		event := models.InviteEvent{Type: "message", Message: &msg}
		h.sink.BroadcastToPeer(conv.ParticipantA, event)
		h.sink.BroadcastToPeer(conv.ParticipantB, event)
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *ConversationHandler) loadForParticipant(c *gin.Context) (models.Conversation, bool) {
	conversationID := c.Param("conversation_id")

	conv, err := h.conversations.Get(c.Request.Context(), conversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return models.Conversation{}, false
	}

	if !conv.HasParticipant(peerIDFromContext(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return models.Conversation{}, false
	}
	return conv, true
}
