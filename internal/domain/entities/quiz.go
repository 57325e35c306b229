package entities

import "time"

// QuizRun walks one chat through a QuestionSet, tier by tier in Tiers order.
// It lives only in memory and is discarded when the quiz ends or goes idle.
type QuizRun struct {
	ChatID    int64
	VideoID   string
	Set       *QuestionSet
	TierIdx   int // index into Tiers
	Position  int // index into the current tier's questions
	Correct   map[Difficulty]int
	Answered  map[Difficulty]int
	StartedAt time.Time
	UpdatedAt time.Time
}

// NewQuizRun creates a run positioned on the first available question.
func NewQuizRun(chatID int64, videoID string, set *QuestionSet) *QuizRun {
	now := time.Now()
	r := &QuizRun{
		ChatID:    chatID,
		VideoID:   videoID,
		Set:       set,
		Correct:   make(map[Difficulty]int, len(Tiers)),
		Answered:  make(map[Difficulty]int, len(Tiers)),
		StartedAt: now,
		UpdatedAt: now,
	}
	r.skipEmptyTiers()
	return r
}

// Finished reports whether every question has been answered.
func (r *QuizRun) Finished() bool {
	return r.TierIdx >= len(Tiers)
}

// Difficulty returns the tier currently being played.
func (r *QuizRun) Difficulty() Difficulty {
	if r.Finished() {
		return ""
	}
	return Tiers[r.TierIdx].Difficulty
}

// Current returns the question awaiting an answer.
func (r *QuizRun) Current() (Question, bool) {
	if r.Finished() {
		return Question{}, false
	}
	return r.Set.Tier(r.Difficulty())[r.Position], true
}

// Answer records the selected option for the current question and moves on.
// It returns the answered question and whether the choice was right.
func (r *QuizRun) Answer(index int) (Question, bool) {
	q, ok := r.Current()
	if !ok {
		return Question{}, false
	}

	d := r.Difficulty()
	correct := q.IsCorrect(index)
	r.Answered[d]++
	if correct {
		r.Correct[d]++
	}

	r.Position++
	r.skipEmptyTiers()
	r.Touch()

	return q, correct
}

// Score returns correct answers and total questions across all tiers.
func (r *QuizRun) Score() (correct, total int) {
	for _, t := range Tiers {
		correct += r.Correct[t.Difficulty]
	}
	return correct, r.Set.Total()
}

// Touch marks the run as active now.
func (r *QuizRun) Touch() {
	r.UpdatedAt = time.Now()
}

// IdleFor returns how long the run has gone without activity.
func (r *QuizRun) IdleFor(now time.Time) time.Duration {
	return now.Sub(r.UpdatedAt)
}

func (r *QuizRun) skipEmptyTiers() {
	for r.TierIdx < len(Tiers) && r.Position >= len(r.Set.Tier(Tiers[r.TierIdx].Difficulty)) {
		r.TierIdx++
		r.Position = 0
	}
}
