package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
)

const maxVideoIDLen = 64

var ErrInvalidVideoID = errors.New("invalid video id")

// SessionService manages the video each user is working with.
type SessionService struct {
	repo   SessionRepository
	logger *zap.Logger
}

func NewSessionService(repo SessionRepository, logger *zap.Logger) *SessionService {
	return &SessionService{repo: repo, logger: logger}
}

// SelectVideo makes videoID the user's current video.
func (s *SessionService) SelectVideo(ctx context.Context, userID int64, videoID string) (*entities.Session, error) {
	videoID = strings.TrimSpace(videoID)
	if err := validateVideoID(videoID); err != nil {
		return nil, err
	}

	session := entities.NewSession(userID, videoID)
	if err := s.repo.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("video selected",
		zap.Int64("user_id", userID),
		zap.String("video_id", videoID),
	)

	return session, nil
}

// Current returns the user's session. A user who never selected a video gets
// an empty session rather than an error.
func (s *SessionService) Current(ctx context.Context, userID int64) (*entities.Session, error) {
	session, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			return &entities.Session{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

// Clear forgets the user's current video.
func (s *SessionService) Clear(ctx context.Context, userID int64) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func validateVideoID(id string) error {
	if id == "" || len(id) > maxVideoIDLen {
		return ErrInvalidVideoID
	}
	for _, r := range id {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return ErrInvalidVideoID
		}
	}
	return nil
}
