package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
)

var (
	ErrRunNotFound   = errors.New("quiz run not found")
	ErrStaleAnswer   = errors.New("answer does not match the current question")
	ErrInvalidOption = errors.New("invalid option index")
)

// QuestionView is one question as presented to the user.
type QuestionView struct {
	Difficulty entities.Difficulty
	Position   int // index within the tier
	Number     int // 1-based across the whole run
	Total      int
	Question   entities.Question
}

// TierScore is the result of one tier.
type TierScore struct {
	Difficulty entities.Difficulty
	Correct    int
	Total      int
}

// Summary is the final score of a finished run.
type Summary struct {
	Tiers   []TierScore
	Correct int
	Total   int
}

// AnswerResult describes the outcome of answering the current question.
type AnswerResult struct {
	Answered entities.Question
	Selected int
	Correct  bool
	Next     *QuestionView // nil when the run is finished
	Summary  *Summary      // set when the run is finished
}

// ReadyFunc receives the first question of a freshly fetched run.
// first is nil when the backend returned no usable questions.
type ReadyFunc func(first *QuestionView, err error)

// QuizService drives knowledge-check runs for chats.
type QuizService struct {
	questions QuestionFetcher
	storage   QuizStorage
	ttl       time.Duration
	logger    *zap.Logger
}

func NewQuizService(questions QuestionFetcher, storage QuizStorage, ttl time.Duration, logger *zap.Logger) *QuizService {
	return &QuizService{
		questions: questions,
		storage:   storage,
		ttl:       ttl,
		logger:    logger,
	}
}

// Start discards the chat's current run and fetches a new question set in the
// background. onReady is called from the fetching goroutine unless the fetch
// is superseded by another Start or aborted by Stop.
func (s *QuizService) Start(ctx context.Context, chatID int64, session *entities.Session, onReady ReadyFunc) error {
	if !session.HasVideo() {
		return ErrNoVideoSelected
	}

	s.storage.DeleteRun(chatID)

	fetchCtx, cancel := context.WithCancel(ctx)
	token := s.storage.SetPending(chatID, cancel)

	s.logger.Debug("starting knowledge check fetch",
		zap.Int64("chat_id", chatID),
		zap.String("video_id", session.VideoID),
	)

	go func() {
		defer cancel()

		set, err := s.questions.FetchQuestionSet(fetchCtx, session)
		if err != nil {
			if s.storage.ClearPending(chatID, token) {
				onReady(nil, err)
			}
			return
		}

		run := entities.NewQuizRun(chatID, session.VideoID, set)
		if run.Finished() {
			if s.storage.ClearPending(chatID, token) {
				onReady(nil, nil)
			}
			return
		}

		first := viewOf(run)
		if !s.storage.CompletePending(chatID, token, run) {
			s.logger.Debug("discarding abandoned fetch", zap.Int64("chat_id", chatID))
			return
		}
		onReady(first, nil)
	}()

	return nil
}

// Stop abandons the chat's in-flight fetch and current run.
// It reports whether there was anything to stop.
func (s *QuizService) Stop(chatID int64) bool {
	cancelled := s.storage.CancelPending(chatID)

	_, hadRun := s.storage.GetRun(chatID)
	s.storage.DeleteRun(chatID)

	return cancelled || hadRun
}

// Loading reports whether a fetch is in flight for the chat.
func (s *QuizService) Loading(chatID int64) bool {
	return s.storage.HasPending(chatID)
}

// Answer records option selected for the question at (d, position).
// Answers for any other than the current question are rejected as stale.
func (s *QuizService) Answer(chatID int64, d entities.Difficulty, position, selected int) (*AnswerResult, error) {
	var (
		result *AnswerResult
		err    error
	)

	found := s.storage.UpdateRun(chatID, func(run *entities.QuizRun) bool {
		if run.Finished() || run.Difficulty() != d || run.Position != position {
			err = ErrStaleAnswer
			return true
		}
		if selected < 0 || selected >= entities.OptionsPerQuestion {
			err = fmt.Errorf("%w: %d", ErrInvalidOption, selected)
			return true
		}

		answered, correct := run.Answer(selected)
		result = &AnswerResult{
			Answered: answered,
			Selected: selected,
			Correct:  correct,
		}

		if run.Finished() {
			result.Summary = summaryOf(run)
			return false
		}

		result.Next = viewOf(run)
		return true
	})
	if !found {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	if result.Summary != nil {
		s.logger.Info("knowledge check finished",
			zap.Int64("chat_id", chatID),
			zap.Int("correct", result.Summary.Correct),
			zap.Int("total", result.Summary.Total),
		)
	}

	return result, nil
}

// Hint returns the hint of the question at (d, position) of the chat's run.
func (s *QuizService) Hint(chatID int64, d entities.Difficulty, position int) (string, error) {
	run, ok := s.storage.GetRun(chatID)
	if !ok {
		return "", ErrRunNotFound
	}

	// The question set is never mutated after the run is created.
	questions := run.Set.Tier(d)
	if position < 0 || position >= len(questions) {
		return "", ErrStaleAnswer
	}

	return questions[position].Hint, nil
}

// StartCleanup discards idle runs on the given cron schedule until ctx is done.
func (s *QuizService) StartCleanup(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(schedule, s.evictIdle)
	if err != nil {
		return fmt.Errorf("add cleanup job: %w", err)
	}

	c.Start()
	s.logger.Info("quiz cleanup scheduler started", zap.String("schedule", schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("quiz cleanup scheduler stopped")

	return nil
}

func (s *QuizService) evictIdle() {
	if n := s.storage.EvictIdle(s.ttl); n > 0 {
		s.logger.Info("discarded idle quiz runs", zap.Int("count", n))
	}
}

func viewOf(run *entities.QuizRun) *QuestionView {
	q, ok := run.Current()
	if !ok {
		return nil
	}

	number := run.Position + 1
	for _, t := range entities.Tiers[:run.TierIdx] {
		number += len(run.Set.Tier(t.Difficulty))
	}

	return &QuestionView{
		Difficulty: run.Difficulty(),
		Position:   run.Position,
		Number:     number,
		Total:      run.Set.Total(),
		Question:   q,
	}
}

func summaryOf(run *entities.QuizRun) *Summary {
	sum := &Summary{}
	for _, t := range entities.Tiers {
		total := len(run.Set.Tier(t.Difficulty))
		if total == 0 {
			continue
		}
		sum.Tiers = append(sum.Tiers, TierScore{
			Difficulty: t.Difficulty,
			Correct:    run.Correct[t.Difficulty],
			Total:      total,
		})
	}
	sum.Correct, sum.Total = run.Score()
	return sum
}
