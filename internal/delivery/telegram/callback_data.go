package telegram

import (
	"errors"
	"strconv"
	"strings"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
)

// Callback action constants.
const (
	actionQuiz = "quiz"
	actionHint = "hint"
)

// Quiz sub-actions.
const (
	quizStart = "start"
)

var errBadCallback = errors.New("malformed callback data")

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// questionRef points at one question of a run.
type questionRef struct {
	Difficulty entities.Difficulty
	Position   int
}

// parseQuestionRef reads "<tier>:<position>" from the first two params.
func parseQuestionRef(params []string) (questionRef, error) {
	if len(params) < 2 {
		return questionRef{}, errBadCallback
	}

	d, ok := entities.ParseDifficulty(params[0])
	if !ok {
		return questionRef{}, errBadCallback
	}

	pos, err := strconv.Atoi(params[1])
	if err != nil || pos < 0 {
		return questionRef{}, errBadCallback
	}

	return questionRef{Difficulty: d, Position: pos}, nil
}

// parseAnswer reads "<tier>:<position>:<option>" answer params.
func parseAnswer(params []string) (questionRef, int, error) {
	if len(params) != 3 {
		return questionRef{}, 0, errBadCallback
	}

	ref, err := parseQuestionRef(params)
	if err != nil {
		return questionRef{}, 0, err
	}

	option, err := strconv.Atoi(params[2])
	if err != nil || option < 0 || option >= entities.OptionsPerQuestion {
		return questionRef{}, 0, errBadCallback
	}

	return ref, option, nil
}

// buildQuizAnswerCallback builds callback data for answering a quiz question.
func buildQuizAnswerCallback(d entities.Difficulty, position, answerIndex int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{
			string(d),
			strconv.Itoa(position),
			strconv.Itoa(answerIndex),
		},
	}.encode()
}

// buildQuizStartCallback builds callback data for starting a new knowledge check.
func buildQuizStartCallback() string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStart},
	}.encode()
}

// buildHintCallback builds callback data for revealing a question's hint.
func buildHintCallback(d entities.Difficulty, position int) string {
	return callbackData{
		Action: actionHint,
		Params: []string{string(d), strconv.Itoa(position)},
	}.encode()
}
