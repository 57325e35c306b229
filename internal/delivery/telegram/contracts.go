package telegram

import (
	"context"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
	"github.com/aliskhannn/knowledge-check-bot/internal/service"
)

type UserService interface {
	EnsureUser(ctx context.Context, userID, chatID int64) (bool, error)
	Deactivate(ctx context.Context, userID int64) error
}

type SessionService interface {
	SelectVideo(ctx context.Context, userID int64, videoID string) (*entities.Session, error)
	Current(ctx context.Context, userID int64) (*entities.Session, error)
}

type QuizService interface {
	Start(ctx context.Context, chatID int64, session *entities.Session, onReady service.ReadyFunc) error
	Stop(chatID int64) bool
	Loading(chatID int64) bool
	Answer(chatID int64, d entities.Difficulty, position, selected int) (*service.AnswerResult, error)
	Hint(chatID int64, d entities.Difficulty, position int) (string, error)
}
