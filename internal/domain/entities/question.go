// Package entities contains domain entities used across the application.
package entities

import "encoding/json"

// Difficulty is a knowledge-check tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Tier binds a difficulty to the backend endpoint serving it.
type Tier struct {
	Difficulty Difficulty
	Endpoint   string // path relative to the API base URL
}

// Tiers lists the knowledge-check tiers in the order they are fetched and played.
var Tiers = []Tier{
	{Difficulty: DifficultyEasy, Endpoint: "KnowledgeCheckEasy"},
	{Difficulty: DifficultyMedium, Endpoint: "KnowledgeCheckMedium"},
	{Difficulty: DifficultyHard, Endpoint: "KnowledgeCheckHard"},
}

// ParseDifficulty returns the difficulty named s, if it is a known tier.
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, t := range Tiers {
		if string(t.Difficulty) == s {
			return t.Difficulty, true
		}
	}
	return "", false
}

// OptionsPerQuestion is the number of choices every question must carry.
const OptionsPerQuestion = 4

// RawQuestion is a question record as the backend sends it.
type RawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *string  `json:"correctAnswer"` // letter "A".."D"; nil when absent
	Hint          string   `json:"hint,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// APIResponse is the body returned by every knowledge-check endpoint.
// Questions stay undecoded so a single malformed record can be dropped
// without rejecting the whole response.
type APIResponse struct {
	Success   bool              `json:"success"`
	Questions []json.RawMessage `json:"questions"`
	Count     *int              `json:"count,omitempty"` // only sent by the hard tier
}

// VideoRequest is the payload posted to every knowledge-check endpoint.
type VideoRequest struct {
	VideoID string `json:"videoId"`
}

// Question is a validated multiple-choice question ready for display.
type Question struct {
	Question     string
	Options      []string // always OptionsPerQuestion entries
	CorrectIndex int      // zero-based, in [0, OptionsPerQuestion)
	Explanation  string
	Hint         string
}

// IsCorrect reports whether the option at index is the right answer.
func (q Question) IsCorrect(index int) bool {
	return index == q.CorrectIndex
}

// CorrectOption returns the text of the right answer.
func (q Question) CorrectOption() string {
	return q.Options[q.CorrectIndex]
}

// QuestionSet holds the normalized questions of one fetch cycle, per tier.
type QuestionSet struct {
	Easy   []Question
	Medium []Question
	Hard   []Question
}

// Tier returns the questions of difficulty d.
func (s *QuestionSet) Tier(d Difficulty) []Question {
	switch d {
	case DifficultyEasy:
		return s.Easy
	case DifficultyMedium:
		return s.Medium
	case DifficultyHard:
		return s.Hard
	default:
		return nil
	}
}

// SetTier replaces the questions of difficulty d.
func (s *QuestionSet) SetTier(d Difficulty, questions []Question) {
	switch d {
	case DifficultyEasy:
		s.Easy = questions
	case DifficultyMedium:
		s.Medium = questions
	case DifficultyHard:
		s.Hard = questions
	}
}

// Total returns the number of questions across all tiers.
func (s *QuestionSet) Total() int {
	return len(s.Easy) + len(s.Medium) + len(s.Hard)
}
