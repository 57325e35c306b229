package service

import (
	"context"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
)

type UserService struct {
	repository UserRepository
}

func NewUserService(repository UserRepository) *UserService {
	return &UserService{repository: repository}
}

// EnsureUser registers the user on first contact and reactivates them afterwards.
// It reports whether the user is new.
func (s *UserService) EnsureUser(ctx context.Context, userID, chatID int64) (bool, error) {
	return s.repository.Save(ctx, entities.NewUser(userID, chatID))
}

// Deactivate marks a user who can no longer be messaged.
func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	return s.repository.SetActive(ctx, userID, false)
}
