package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invite-service/internal/models"
)

type InvitationServiceMock struct {
	mock.Mock
}

func (m *InvitationServiceMock) Invite(ctx context.Context, senderID, recipientID, message string) (models.Invitation, error) {
	args := m.Called(ctx, senderID, recipientID, message)
	var inv models.Invitation
	if val := args.Get(0); val != nil {
		inv = val.(models.Invitation)
	}
	return inv, args.Error(1)
}

func (m *InvitationServiceMock) Accept(ctx context.Context, invitationID, actorID string) (models.Invitation, error) {
	args := m.Called(ctx, invitationID, actorID)
	var inv models.Invitation
	if val := args.Get(0); val != nil {
		inv = val.(models.Invitation)
	}
	return inv, args.Error(1)
}

func (m *InvitationServiceMock) Decline(ctx context.Context, invitationID, actorID string) (models.Invitation, error) {
	args := m.Called(ctx, invitationID, actorID)
	var inv models.Invitation
	if val := args.Get(0); val != nil {
		inv = val.(models.Invitation)
	}
	return inv, args.Error(1)
}

func (m *InvitationServiceMock) Cancel(ctx context.Context, invitationID, actorID string) (models.Invitation, error) {
	args := m.Called(ctx, invitationID, actorID)
	var inv models.Invitation
	if val := args.Get(0); val != nil {
		inv = val.(models.Invitation)
	}
	return inv, args.Error(1)
}

func (m *InvitationServiceMock) HandleResponse(ctx context.Context, payload models.ResponsePayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *InvitationServiceMock) HandleIncomingInvite(ctx context.Context, payload models.InvitePayload) (models.Invitation, error) {
	args := m.Called(ctx, payload)
	var inv models.Invitation
	if val := args.Get(0); val != nil {
		inv = val.(models.Invitation)
	}
	return inv, args.Error(1)
}
