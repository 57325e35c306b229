package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
	"github.com/aliskhannn/knowledge-check-bot/internal/metrics"
)

const (
	// DefaultExplanation is shown when the backend sends no explanation.
	DefaultExplanation = "Review the problem constraints and solution approach."

	hintPrefix    = "Consider the key concepts in: "
	hintPromptLen = 50
)

var (
	ErrInvalidAnswerCode = errors.New("invalid answer code")
	ErrMalformedQuestion = errors.New("malformed question")
)

// AnswerToIndex converts an answer letter ("A".."D", any case) into a zero-based option index.
func AnswerToIndex(answer string) (int, error) {
	letter := strings.TrimSpace(answer)
	if utf8.RuneCountInString(letter) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAnswerCode, answer)
	}

	index := int(strings.ToUpper(letter)[0]) - 'A'
	if index < 0 || index >= entities.OptionsPerQuestion {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAnswerCode, answer)
	}

	return index, nil
}

// DefaultHint synthesizes a hint from the first characters of the prompt.
func DefaultHint(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > hintPromptLen {
		runes = runes[:hintPromptLen]
	}
	return hintPrefix + string(runes) + "..."
}

// NormalizeQuestion validates a raw record and maps it to a displayable question.
// Records without a prompt, without exactly four options, or without a valid
// answer letter are rejected.
func NormalizeQuestion(raw entities.RawQuestion) (entities.Question, error) {
	if raw.Question == "" {
		return entities.Question{}, fmt.Errorf("%w: empty prompt", ErrMalformedQuestion)
	}
	if len(raw.Options) != entities.OptionsPerQuestion {
		return entities.Question{}, fmt.Errorf("%w: %d options", ErrMalformedQuestion, len(raw.Options))
	}
	if raw.CorrectAnswer == nil {
		return entities.Question{}, fmt.Errorf("%w: missing correct answer", ErrMalformedQuestion)
	}

	correct, err := AnswerToIndex(*raw.CorrectAnswer)
	if err != nil {
		return entities.Question{}, err
	}

	q := entities.Question{
		Question:     raw.Question,
		Options:      append([]string(nil), raw.Options...),
		CorrectIndex: correct,
		Explanation:  raw.Explanation,
		Hint:         raw.Hint,
	}
	if q.Explanation == "" {
		q.Explanation = DefaultExplanation
	}
	if q.Hint == "" {
		q.Hint = DefaultHint(raw.Question)
	}

	return q, nil
}

// Normalizer turns backend responses into question lists.
type Normalizer struct {
	logger *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// NormalizeTier decodes and normalizes every record of one tier's response.
// Malformed records, including ones with an invalid answer letter, are dropped
// and counted; the rest of the tier is kept.
func (n *Normalizer) NormalizeTier(d entities.Difficulty, resp *entities.APIResponse) []entities.Question {
	if resp == nil {
		return []entities.Question{}
	}

	questions := make([]entities.Question, 0, len(resp.Questions))
	dropped := 0

	for i, rec := range resp.Questions {
		var raw entities.RawQuestion
		if err := json.Unmarshal(rec, &raw); err != nil {
			dropped++
			n.logger.Debug("dropping undecodable question",
				zap.String("difficulty", string(d)),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}

		q, err := NormalizeQuestion(raw)
		if err != nil {
			dropped++
			n.logger.Debug("dropping malformed question",
				zap.String("difficulty", string(d)),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}

		questions = append(questions, q)
	}

	if dropped > 0 {
		metrics.QuestionsDropped.WithLabelValues(string(d)).Add(float64(dropped))
		n.logger.Warn("dropped malformed questions",
			zap.String("difficulty", string(d)),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(questions)),
		)
	}

	if len(questions) == 0 {
		n.logger.Warn("no valid questions received",
			zap.String("difficulty", string(d)),
			zap.Int("count", 0),
		)
	}

	return questions
}
