package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"invite-service/internal/models"
)

// ResponseCacheRepository keeps a local copy of response payloads keyed by
// invitation id. It backs the adoption fallback when an inbound payload
// arrives with its conversation id stripped by the delivery platform.
type ResponseCacheRepository interface {
	Put(ctx context.Context, invitationID string, payload models.ResponsePayload) error
	Get(ctx context.Context, invitationID string) (models.ResponsePayload, bool, error)
}

// ResponseCacheRepo is a sqlx implementation of ResponseCacheRepository.
type ResponseCacheRepo struct {
	db *sqlx.DB
}

// NewResponseCacheRepo constructs a ResponseCacheRepo.
func NewResponseCacheRepo(db *sqlx.DB) *ResponseCacheRepo {
	return &ResponseCacheRepo{db: db}
}

// Put upserts the cached payload for the invitation.
func (r *ResponseCacheRepo) Put(ctx context.Context, invitationID string, payload models.ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO response_cache (invitation_id, payload, cached_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (invitation_id) DO UPDATE SET payload=excluded.payload, cached_at=excluded.cached_at`,
		invitationID, string(body), time.Now().UTC())
	return err
}

// Get returns the cached payload for the invitation, if any.
func (r *ResponseCacheRepo) Get(ctx context.Context, invitationID string) (models.ResponsePayload, bool, error) {
	var body string
	err := r.db.GetContext(ctx, &body, `SELECT payload FROM response_cache WHERE invitation_id=$1`, invitationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ResponsePayload{}, false, nil
	}
	if err != nil {
		return models.ResponsePayload{}, false, err
	}

	var payload models.ResponsePayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return models.ResponsePayload{}, false, err
	}
	return payload, true, nil
}
