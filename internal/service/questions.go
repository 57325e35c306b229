package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
)

var ErrNoVideoSelected = errors.New("no video selected")

// QuestionService fetches the knowledge check of a video, tier by tier.
type QuestionService struct {
	fetcher    Fetcher
	normalizer *Normalizer
	baseURL    string
	tiers      []entities.Tier
	logger     *zap.Logger
}

func NewQuestionService(fetcher Fetcher, baseURL string, logger *zap.Logger) *QuestionService {
	return &QuestionService{
		fetcher:    fetcher,
		normalizer: NewNormalizer(logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
		tiers:      entities.Tiers,
		logger:     logger,
	}
}

// FetchQuestionSet builds a fresh QuestionSet for the session's current video.
// Tiers are fetched one after another; each fetch retries until the backend
// succeeds, so the call returns an error only when no video is selected or
// ctx is cancelled.
func (s *QuestionService) FetchQuestionSet(ctx context.Context, session *entities.Session) (*entities.QuestionSet, error) {
	if !session.HasVideo() {
		return nil, ErrNoVideoSelected
	}

	payload := entities.VideoRequest{VideoID: session.VideoID}
	set := &entities.QuestionSet{
		Easy:   []entities.Question{},
		Medium: []entities.Question{},
		Hard:   []entities.Question{},
	}

	for _, tier := range s.tiers {
		url := s.endpointURL(tier)

		resp, err := s.fetcher.FetchWithRetry(ctx, url, payload)
		if err != nil {
			return nil, fmt.Errorf("fetch %s questions: %w", tier.Difficulty, err)
		}

		set.SetTier(tier.Difficulty, s.normalizer.NormalizeTier(tier.Difficulty, resp))
	}

	s.logger.Info("fetched question set",
		zap.Int64("user_id", session.UserID),
		zap.String("video_id", session.VideoID),
		zap.Int("easy", len(set.Easy)),
		zap.Int("medium", len(set.Medium)),
		zap.Int("hard", len(set.Hard)),
	)

	return set, nil
}

func (s *QuestionService) endpointURL(tier entities.Tier) string {
	return s.baseURL + "/" + tier.Endpoint
}
