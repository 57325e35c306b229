package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
)

const (
	fieldVideoID   = "video_id"
	fieldUpdatedAt = "updated_at"
)

// SessionRepository keeps each user's current video in a Redis hash.
type SessionRepository struct {
	rdb redis.Cmdable
}

func NewSessionRepository(rdb redis.Cmdable) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

func sessionKey(userID int64) string {
	return "session:" + strconv.FormatInt(userID, 10)
}

// Get returns the session of a user or entities.ErrSessionNotFound.
func (r *SessionRepository) Get(ctx context.Context, userID int64) (*entities.Session, error) {
	fields, err := r.rdb.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall failed: %w", err)
	}

	videoID, ok := fields[fieldVideoID]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}

	s := &entities.Session{UserID: userID, VideoID: videoID}
	if raw := fields[fieldUpdatedAt]; raw != "" {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid updated_at %q: %w", raw, err)
		}
		s.UpdatedAt = time.Unix(unix, 0).UTC()
	}

	return s, nil
}

// Upsert stores the session, replacing the user's previous video.
func (r *SessionRepository) Upsert(ctx context.Context, s *entities.Session) error {
	err := r.rdb.HSet(ctx, sessionKey(s.UserID),
		fieldVideoID, s.VideoID,
		fieldUpdatedAt, strconv.FormatInt(s.UpdatedAt.Unix(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("hset failed: %w", err)
	}

	return nil
}

// Delete removes the user's session.
func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("del failed: %w", err)
	}

	return nil
}
