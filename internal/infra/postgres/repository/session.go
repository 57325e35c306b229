package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
	"github.com/aliskhannn/knowledge-check-bot/internal/infra/postgres"
)

// SessionRepository keeps each user's current video in the user_sessions table.
type SessionRepository struct {
	db postgres.DBTX
}

func NewSessionRepository(db postgres.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns the session of a user or entities.ErrSessionNotFound.
func (r *SessionRepository) Get(ctx context.Context, userID int64) (*entities.Session, error) {
	query := `
		SELECT user_id, video_id, updated_at
		FROM user_sessions
		WHERE user_id = $1
	`

	var s entities.Session
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UserID, &s.VideoID, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &s, nil
}

// Upsert stores the session, replacing the user's previous video.
func (r *SessionRepository) Upsert(ctx context.Context, s *entities.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, video_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			video_id = EXCLUDED.video_id,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Exec(ctx, query, s.UserID, s.VideoID, s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

// Delete removes the user's session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
