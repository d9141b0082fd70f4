package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invite-service/internal/mocks"
	"invite-service/internal/telemetry"
)

func TestEmitPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.invitations", "invite-service", "test")

	var envelope telemetry.AuditEnvelope
	publisher.On("Publish", mock.Anything, "audit.invitations", mock.AnythingOfType("telemetry.AuditEnvelope")).
		Run(func(args mock.Arguments) { envelope = args.Get(2).(telemetry.AuditEnvelope) }).
		Return(nil).Once()

	peer := "alice"
	emitter.Emit(context.Background(), "INFO", "invitation_accepted invitation=inv1", "req1", &peer)

	publisher.AssertExpectations(t)
	assert.Equal(t, 1, envelope.SchemaVersion)
	assert.Equal(t, "audit_log", envelope.EventType)
	assert.Equal(t, "invite-service", envelope.Service)
	assert.Equal(t, "req1", envelope.RequestID)
	require.NotNil(t, envelope.PeerID)
	assert.Equal(t, "alice", *envelope.PeerID)
	assert.Equal(t, "INFO", envelope.Payload.Level)
}

func TestEmitNilReceiverIsSafe(t *testing.T) {
	var emitter *telemetry.AuditEmitter
	emitter.Emit(context.Background(), "INFO", "ignored", "", nil)
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.invitations", "invite-service", "test")

	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()
	emitter.Emit(context.Background(), "WARN", "still fine", "", nil)
	publisher.AssertExpectations(t)
}
