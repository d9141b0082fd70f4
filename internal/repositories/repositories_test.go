package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invite-service/internal/db"
	"invite-service/internal/models"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := db.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func sampleInvitation(id string) models.Invitation {
	return models.Invitation{
		ID:          id,
		SenderID:    "alice",
		RecipientID: "bob",
		Message:     "hello",
		Status:      models.InvitationPending,
		CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestInvitationCreateGetRoundTrip(t *testing.T) {
	repo := NewInvitationRepo(testDB(t))
	ctx := context.Background()

	inv := sampleInvitation("inv1")
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.Get(ctx, "inv1")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, inv.SenderID, got.SenderID)
	assert.Equal(t, inv.RecipientID, got.RecipientID)
	assert.Equal(t, models.InvitationPending, got.Status)
	assert.Nil(t, got.RespondedAt)
	assert.Nil(t, got.ConversationID)
}

func TestInvitationCreateDuplicate(t *testing.T) {
	repo := NewInvitationRepo(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleInvitation("inv1")))
	err := repo.Create(ctx, sampleInvitation("inv1"))
	require.ErrorIs(t, err, ErrDuplicateInvitation)
}

func TestInvitationGetMissing(t *testing.T) {
	repo := NewInvitationRepo(testDB(t))
	_, err := repo.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationUpdate(t *testing.T) {
	repo := NewInvitationRepo(testDB(t))
	ctx := context.Background()

	inv := sampleInvitation("inv1")
	require.NoError(t, repo.Create(ctx, inv))

	respondedAt := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)
	convID := "chat_abc"
	inv.Status = models.InvitationAccepted
	inv.RespondedAt = &respondedAt
	inv.ConversationID = &convID
	require.NoError(t, repo.Update(ctx, inv))

	got, err := repo.Get(ctx, "inv1")
	require.NoError(t, err)
	assert.Equal(t, models.InvitationAccepted, got.Status)
	require.NotNil(t, got.ConversationID)
	assert.Equal(t, "chat_abc", *got.ConversationID)
	require.NotNil(t, got.RespondedAt)
	assert.True(t, got.RespondedAt.Equal(respondedAt))

	// Reverting clears the optional fields again.
	inv.Status = models.InvitationPending
	inv.RespondedAt = nil
	inv.ConversationID = nil
	require.NoError(t, repo.Update(ctx, inv))

	got, err = repo.Get(ctx, "inv1")
	require.NoError(t, err)
	assert.Equal(t, models.InvitationPending, got.Status)
	assert.Nil(t, got.RespondedAt)
	assert.Nil(t, got.ConversationID)
}

func TestInvitationUpdateMissing(t *testing.T) {
	repo := NewInvitationRepo(testDB(t))
	err := repo.Update(context.Background(), sampleInvitation("ghost"))
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationListings(t *testing.T) {
	repo := NewInvitationRepo(testDB(t))
	ctx := context.Background()

	first := sampleInvitation("inv1")
	second := sampleInvitation("inv2")
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	inbound := sampleInvitation("inv3")
	inbound.SenderID, inbound.RecipientID = "bob", "alice"

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, inbound))

	sent, err := repo.ListBySender(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Equal(t, "inv2", sent[0].ID)
	assert.Equal(t, "inv1", sent[1].ID)

	received, err := repo.ListByRecipient(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "inv3", received[0].ID)
}

func sampleConversation(id string) models.Conversation {
	at := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	return models.Conversation{
		ID:            id,
		ParticipantA:  "bob",
		ParticipantB:  "alice",
		CreatedAt:     at,
		UpdatedAt:     at,
		SeedMessageID: "msg_seed",
	}
}

func TestConversationCreateGetDelete(t *testing.T) {
	database := testDB(t)
	convs := NewConversationRepo(database)
	msgs := NewMessageRepo(database)
	ctx := context.Background()

	conv := sampleConversation("chat1")
	require.NoError(t, convs.Create(ctx, conv))
	require.ErrorIs(t, convs.Create(ctx, conv), ErrDuplicateConversation)

	require.NoError(t, msgs.Create(ctx, models.Message{
		ID:             "msg_seed",
		ConversationID: "chat1",
		SenderID:       "bob",
		Content:        "Conversation started",
		IsSystem:       true,
		CreatedAt:      conv.CreatedAt,
	}))

	got, err := convs.Get(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.ParticipantA)
	assert.Equal(t, "alice", got.ParticipantB)

	require.NoError(t, convs.Delete(ctx, "chat1"))
	_, err = convs.Get(ctx, "chat1")
	require.ErrorIs(t, err, ErrConversationNotFound)

	orphans, err := msgs.ListByConversation(ctx, "chat1")
	require.NoError(t, err)
	assert.Empty(t, orphans)

	// Deleting again is a no-op.
	require.NoError(t, convs.Delete(ctx, "chat1"))
}

func TestConversationListAndTouch(t *testing.T) {
	repo := NewConversationRepo(testDB(t))
	ctx := context.Background()

	older := sampleConversation("chat1")
	newer := sampleConversation("chat2")
	newer.ParticipantB = "carol"
	newer.UpdatedAt = older.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "chat2", list[0].ID)

	list, err = repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "chat1", list[0].ID)

	require.NoError(t, repo.Touch(ctx, "chat1", newer.UpdatedAt.Add(time.Hour)))
	list, err = repo.List(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "chat1", list[0].ID)
}

func TestConversationFindByParticipants(t *testing.T) {
	repo := NewConversationRepo(testDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleConversation("chat1")))

	conv, found, err := repo.FindByParticipants(ctx, "alice", "bob")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "chat1", conv.ID)

	_, found, err = repo.FindByParticipants(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMessageCreateAndList(t *testing.T) {
	database := testDB(t)
	convs := NewConversationRepo(database)
	msgs := NewMessageRepo(database)
	ctx := context.Background()

	require.NoError(t, convs.Create(ctx, sampleConversation("chat1")))

	base := time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC)
	for i, id := range []string{"msg1", "msg2", "msg3"} {
		require.NoError(t, msgs.Create(ctx, models.Message{
			ID:             id,
			ConversationID: "chat1",
			SenderID:       "bob",
			Content:        "m",
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := msgs.ListByConversation(ctx, "chat1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "msg1", list[0].ID)
	assert.Equal(t, "msg3", list[2].ID)

	got, err := msgs.Get(ctx, "msg2")
	require.NoError(t, err)
	assert.Equal(t, "chat1", got.ConversationID)

	_, err = msgs.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrMessageNotFound)
}

func TestResponseCachePutGet(t *testing.T) {
	repo := NewResponseCacheRepo(testDB(t))
	ctx := context.Background()

	_, found, err := repo.Get(ctx, "inv1")
	require.NoError(t, err)
	assert.False(t, found)

	payload := models.ResponsePayload{
		InvitationID:   "inv1",
		ResponderID:    "bob",
		Response:       models.ResponseAccepted,
		ConversationID: "chat1",
		Timestamp:      1700000000000,
	}
	require.NoError(t, repo.Put(ctx, "inv1", payload))

	got, found, err := repo.Get(ctx, "inv1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, payload, got)

	// Upsert replaces the previous copy.
	payload.ConversationID = "chat2"
	require.NoError(t, repo.Put(ctx, "inv1", payload))
	got, found, err = repo.Get(ctx, "inv1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "chat2", got.ConversationID)
}
