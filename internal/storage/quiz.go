package storage

import (
	"context"
	"sync"
	"time"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
)

type pendingFetch struct {
	token  uint64
	cancel context.CancelFunc
}

// QuizStorage provides in-memory storage for quiz runs and in-flight fetches by chat ID.
type QuizStorage struct {
	mu        sync.RWMutex
	runs      map[int64]*entities.QuizRun
	pending   map[int64]pendingFetch
	nextToken uint64
}

// NewQuizStorage creates a new QuizStorage.
func NewQuizStorage() *QuizStorage {
	return &QuizStorage{
		runs:    make(map[int64]*entities.QuizRun),
		pending: make(map[int64]pendingFetch),
	}
}

// StoreRun saves the run for its chat, replacing any previous one.
func (s *QuizStorage) StoreRun(run *entities.QuizRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ChatID] = run
}

// GetRun retrieves the run of a chat.
func (s *QuizStorage) GetRun(chatID int64) (*entities.QuizRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[chatID]
	return run, ok
}

// DeleteRun removes the run of a chat.
func (s *QuizStorage) DeleteRun(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, chatID)
}

// UpdateRun calls fn with the run of a chat while holding the write lock.
// When fn returns false the run is removed. It reports whether a run existed.
func (s *QuizStorage) UpdateRun(chatID int64, fn func(run *entities.QuizRun) (keep bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[chatID]
	if !ok {
		return false
	}
	if !fn(run) {
		delete(s.runs, chatID)
	}

	return true
}

// SetPending registers an in-flight fetch for a chat, cancelling the previous one.
// The returned token identifies this fetch to ClearPending.
func (s *QuizStorage) SetPending(chatID int64, cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.pending[chatID]; ok {
		prev.cancel()
	}

	s.nextToken++
	s.pending[chatID] = pendingFetch{token: s.nextToken, cancel: cancel}

	return s.nextToken
}

// ClearPending forgets the fetch identified by token. It reports false when a
// newer fetch has replaced it or it was cancelled.
func (s *QuizStorage) ClearPending(chatID int64, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[chatID]
	if !ok || p.token != token {
		return false
	}
	delete(s.pending, chatID)

	return true
}

// CompletePending replaces the fetch identified by token with its resulting run.
// Like ClearPending it reports false, and stores nothing, when the fetch is no
// longer current.
func (s *QuizStorage) CompletePending(chatID int64, token uint64, run *entities.QuizRun) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[chatID]
	if !ok || p.token != token {
		return false
	}
	delete(s.pending, chatID)
	s.runs[chatID] = run

	return true
}

// CancelPending aborts the in-flight fetch of a chat, if any.
func (s *QuizStorage) CancelPending(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[chatID]
	if !ok {
		return false
	}
	p.cancel()
	delete(s.pending, chatID)

	return true
}

// HasPending reports whether a fetch is in flight for the chat.
func (s *QuizStorage) HasPending(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pending[chatID]
	return ok
}

// EvictIdle removes runs without activity for longer than maxIdle and returns how many were removed.
func (s *QuizStorage) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	evicted := 0
	for chatID, run := range s.runs {
		if run.IdleFor(now) > maxIdle {
			delete(s.runs, chatID)
			evicted++
		}
	}

	return evicted
}
