package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"invite-service/internal/models"
)

var (
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrDuplicateConversation = errors.New("conversation id already exists")
)

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	Create(ctx context.Context, conv models.Conversation) error
	Get(ctx context.Context, id string) (models.Conversation, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, peerID string) ([]models.Conversation, error)
	FindByParticipants(ctx context.Context, a, b string) (models.Conversation, bool, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create inserts a conversation, failing on a duplicate id.
func (r *ConversationRepo) Create(ctx context.Context, conv models.Conversation) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM conversations WHERE id=$1)`, conv.ID); err != nil {
		return err
	}
	if exists {
		return ErrDuplicateConversation
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO conversations
        (id, participant_a, participant_b, created_at, updated_at, seed_message_id)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		conv.ID, conv.ParticipantA, conv.ParticipantB, conv.CreatedAt, conv.UpdatedAt, conv.SeedMessageID)
	return err
}

// Get fetches a conversation by id.
func (r *ConversationRepo) Get(ctx context.Context, id string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, participant_a, participant_b, created_at, updated_at, seed_message_id
        FROM conversations WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// Delete removes a conversation and its messages. Deleting an absent
// conversation is a no-op: deletion is best-effort compensation.
func (r *ConversationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id=$1`, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id=$1`, id)
	return err
}

// List returns the conversations the peer participates in, most recent first.
func (r *ConversationRepo) List(ctx context.Context, peerID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, `SELECT id, participant_a, participant_b, created_at, updated_at, seed_message_id
        FROM conversations WHERE participant_a=$1 OR participant_b=$1 ORDER BY updated_at DESC`, peerID)
	return convs, err
}

// FindByParticipants looks a conversation up by its unordered participant pair.
func (r *ConversationRepo) FindByParticipants(ctx context.Context, a, b string) (models.Conversation, bool, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, participant_a, participant_b, created_at, updated_at, seed_message_id
        FROM conversations
        WHERE (participant_a=$1 AND participant_b=$2) OR (participant_a=$2 AND participant_b=$1)`, a, b)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, false, nil
	}
	if err != nil {
		return models.Conversation{}, false, err
	}
	return conv, true, nil
}

// Touch bumps the conversation's updated_at.
func (r *ConversationRepo) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversations SET updated_at=$1 WHERE id=$2`, at, id)
	return err
}
