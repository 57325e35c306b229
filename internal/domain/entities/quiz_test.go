package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(prompt string, correct int) Question {
	return Question{
		Question:     prompt,
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: correct,
		Explanation:  "because",
		Hint:         "think",
	}
}

func TestQuizRun_WalksTiersInOrder(t *testing.T) {
	set := &QuestionSet{
		Easy: []Question{question("e1", 0), question("e2", 1)},
		Hard: []Question{question("h1", 3)},
	}
	run := NewQuizRun(1, "vid", set)

	q, ok := run.Current()
	require.True(t, ok)
	assert.Equal(t, "e1", q.Question)
	assert.Equal(t, DifficultyEasy, run.Difficulty())

	_, correct := run.Answer(0)
	assert.True(t, correct)

	_, correct = run.Answer(0)
	assert.False(t, correct)

	// The empty medium tier is skipped.
	assert.Equal(t, DifficultyHard, run.Difficulty())
	q, ok = run.Current()
	require.True(t, ok)
	assert.Equal(t, "h1", q.Question)

	_, correct = run.Answer(3)
	assert.True(t, correct)
	assert.True(t, run.Finished())

	got, total := run.Score()
	assert.Equal(t, 2, got)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, run.Correct[DifficultyEasy])
	assert.Equal(t, 2, run.Answered[DifficultyEasy])
	assert.Equal(t, 0, run.Answered[DifficultyMedium])
}

func TestQuizRun_EmptySetIsFinished(t *testing.T) {
	run := NewQuizRun(1, "vid", &QuestionSet{})

	assert.True(t, run.Finished())
	_, ok := run.Current()
	assert.False(t, ok)

	_, correct := run.Answer(0)
	assert.False(t, correct)
}

func TestQuizRun_IdleFor(t *testing.T) {
	run := NewQuizRun(1, "vid", &QuestionSet{})
	run.UpdatedAt = time.Now().Add(-time.Hour)

	assert.GreaterOrEqual(t, run.IdleFor(time.Now()), time.Hour)

	run.Touch()
	assert.Less(t, run.IdleFor(time.Now()), time.Minute)
}

func TestQuestionSet_TierAccessors(t *testing.T) {
	var set QuestionSet
	for i, tier := range Tiers {
		set.SetTier(tier.Difficulty, []Question{question(string(tier.Difficulty), i)})
	}

	assert.Len(t, set.Tier(DifficultyEasy), 1)
	assert.Len(t, set.Tier(DifficultyMedium), 1)
	assert.Len(t, set.Tier(DifficultyHard), 1)
	assert.Nil(t, set.Tier("impossible"))
	assert.Equal(t, 3, set.Total())
}

func TestParseDifficulty(t *testing.T) {
	d, ok := ParseDifficulty("medium")
	assert.True(t, ok)
	assert.Equal(t, DifficultyMedium, d)

	_, ok = ParseDifficulty("extreme")
	assert.False(t, ok)
}

func TestSession_HasVideo(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.HasVideo())
	assert.False(t, (&Session{UserID: 1}).HasVideo())
	assert.True(t, NewSession(1, "abc").HasVideo())
}
