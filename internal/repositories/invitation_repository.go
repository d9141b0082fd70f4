package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"invite-service/internal/models"
)

var (
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrDuplicateInvitation = errors.New("invitation id already exists")
)

// InvitationRepository abstracts invitation persistence. The store does not
// enforce transition legality; the lifecycle controller owns that.
type InvitationRepository interface {
	Create(ctx context.Context, inv models.Invitation) error
	Get(ctx context.Context, id string) (models.Invitation, error)
	Update(ctx context.Context, inv models.Invitation) error
	ListBySender(ctx context.Context, peerID string) ([]models.Invitation, error)
	ListByRecipient(ctx context.Context, peerID string) ([]models.Invitation, error)
}

// InvitationRepo is a sqlx implementation of InvitationRepository.
type InvitationRepo struct {
	db *sqlx.DB
}

// NewInvitationRepo constructs an InvitationRepo.
func NewInvitationRepo(db *sqlx.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

// Create inserts a new invitation, failing on a duplicate id rather than
// silently overwriting.
func (r *InvitationRepo) Create(ctx context.Context, inv models.Invitation) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM invitations WHERE id=$1)`, inv.ID); err != nil {
		return err
	}
	if exists {
		return ErrDuplicateInvitation
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO invitations
        (id, sender_id, recipient_id, message, status, created_at, responded_at, conversation_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.SenderID, inv.RecipientID, inv.Message, inv.Status, inv.CreatedAt, inv.RespondedAt, inv.ConversationID)
	return err
}

// Get fetches an invitation by id.
func (r *InvitationRepo) Get(ctx context.Context, id string) (models.Invitation, error) {
	var inv models.Invitation
	err := r.db.GetContext(ctx, &inv, `SELECT id, sender_id, recipient_id, message, status, created_at, responded_at, conversation_id
        FROM invitations WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invitation{}, ErrInvitationNotFound
	}
	return inv, err
}

// Update replaces the mutable fields of the record.
func (r *InvitationRepo) Update(ctx context.Context, inv models.Invitation) error {
	res, err := r.db.ExecContext(ctx, `UPDATE invitations
        SET status=$1, responded_at=$2, conversation_id=$3 WHERE id=$4`,
		inv.Status, inv.RespondedAt, inv.ConversationID, inv.ID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

// ListBySender returns a fresh snapshot of invitations sent by the peer.
func (r *InvitationRepo) ListBySender(ctx context.Context, peerID string) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := r.db.SelectContext(ctx, &invs, `SELECT id, sender_id, recipient_id, message, status, created_at, responded_at, conversation_id
        FROM invitations WHERE sender_id=$1 ORDER BY created_at DESC`, peerID)
	return invs, err
}

// ListByRecipient returns a fresh snapshot of invitations addressed to the peer.
func (r *InvitationRepo) ListByRecipient(ctx context.Context, peerID string) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := r.db.SelectContext(ctx, &invs, `SELECT id, sender_id, recipient_id, message, status, created_at, responded_at, conversation_id
        FROM invitations WHERE recipient_id=$1 ORDER BY created_at DESC`, peerID)
	return invs, err
}
