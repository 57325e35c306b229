package service

import (
	"context"
	"time"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
)

// Fetcher posts a payload to a knowledge-check endpoint and blocks until it succeeds.
type Fetcher interface {
	FetchWithRetry(ctx context.Context, url string, payload any) (*entities.APIResponse, error)
}

type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (bool, error)
	SetActive(ctx context.Context, userID int64, active bool) error
}

// SessionRepository keeps the current video of each user.
type SessionRepository interface {
	Get(ctx context.Context, userID int64) (*entities.Session, error)
	Upsert(ctx context.Context, s *entities.Session) error
	Delete(ctx context.Context, userID int64) error
}

// QuestionFetcher produces a QuestionSet for a session.
type QuestionFetcher interface {
	FetchQuestionSet(ctx context.Context, session *entities.Session) (*entities.QuestionSet, error)
}

// QuizStorage holds quiz runs and in-flight fetches per chat.
type QuizStorage interface {
	StoreRun(run *entities.QuizRun)
	GetRun(chatID int64) (*entities.QuizRun, bool)
	DeleteRun(chatID int64)
	UpdateRun(chatID int64, fn func(run *entities.QuizRun) (keep bool)) bool
	SetPending(chatID int64, cancel context.CancelFunc) uint64
	ClearPending(chatID int64, token uint64) bool
	CompletePending(chatID int64, token uint64, run *entities.QuizRun) bool
	CancelPending(chatID int64) bool
	HasPending(chatID int64) bool
	EvictIdle(maxIdle time.Duration) int
}
