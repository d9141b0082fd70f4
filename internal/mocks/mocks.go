package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"invite-service/internal/models"
	"invite-service/internal/repositories"
)

type InvitationRepositoryMock struct {
	mock.Mock
}

func (m *InvitationRepositoryMock) Create(ctx context.Context, inv models.Invitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *InvitationRepositoryMock) Get(ctx context.Context, id string) (models.Invitation, error) {
	args := m.Called(ctx, id)
	var inv models.Invitation
	if val := args.Get(0); val != nil {
		inv = val.(models.Invitation)
	}
	return inv, args.Error(1)
}

func (m *InvitationRepositoryMock) Update(ctx context.Context, inv models.Invitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *InvitationRepositoryMock) ListBySender(ctx context.Context, peerID string) ([]models.Invitation, error) {
	args := m.Called(ctx, peerID)
	var list []models.Invitation
	if val := args.Get(0); val != nil {
		list = val.([]models.Invitation)
	}
	return list, args.Error(1)
}

func (m *InvitationRepositoryMock) ListByRecipient(ctx context.Context, peerID string) ([]models.Invitation, error) {
	args := m.Called(ctx, peerID)
	var list []models.Invitation
	if val := args.Get(0); val != nil {
		list = val.([]models.Invitation)
	}
	return list, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) Create(ctx context.Context, conv models.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) Get(ctx context.Context, id string) (models.Conversation, error) {
	args := m.Called(ctx, id)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) List(ctx context.Context, peerID string) ([]models.Conversation, error) {
	args := m.Called(ctx, peerID)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) FindByParticipants(ctx context.Context, a, b string) (models.Conversation, bool, error) {
	args := m.Called(ctx, a, b)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Bool(1), args.Error(2)
}

func (m *ConversationRepositoryMock) Touch(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, msg models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepositoryMock) Get(ctx context.Context, id string) (models.Message, error) {
	args := m.Called(ctx, id)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type ResponseCacheRepositoryMock struct {
	mock.Mock
}

func (m *ResponseCacheRepositoryMock) Put(ctx context.Context, invitationID string, payload models.ResponsePayload) error {
	args := m.Called(ctx, invitationID, payload)
	return args.Error(0)
}

func (m *ResponseCacheRepositoryMock) Get(ctx context.Context, invitationID string) (models.ResponsePayload, bool, error) {
	args := m.Called(ctx, invitationID)
	var payload models.ResponsePayload
	if val := args.Get(0); val != nil {
		payload = val.(models.ResponsePayload)
	}
	return payload, args.Bool(1), args.Error(2)
}

type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) SendResponse(ctx context.Context, recipientPeerID string, payload models.ResponsePayload) (bool, error) {
	args := m.Called(ctx, recipientPeerID, payload)
	return args.Bool(0), args.Error(1)
}

func (m *GatewayMock) SendInvite(ctx context.Context, recipientPeerID string, payload models.InvitePayload) (bool, error) {
	args := m.Called(ctx, recipientPeerID, payload)
	return args.Bool(0), args.Error(1)
}

type EmitterMock struct {
	mock.Mock
}

func (m *EmitterMock) Show(title, body, kind string, data map[string]any) {
	m.Called(title, body, kind, data)
}

type EventSinkMock struct {
	mock.Mock
}

func (m *EventSinkMock) BroadcastToPeer(peerID string, event models.InviteEvent) {
	m.Called(peerID, event)
}

var _ repositories.InvitationRepository = (*InvitationRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ResponseCacheRepository = (*ResponseCacheRepositoryMock)(nil)
