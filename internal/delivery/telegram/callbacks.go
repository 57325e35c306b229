package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb.ID, "", false)
		return
	}

	var (
		data   = decodeCallback(cb.Data)
		chatID = cb.Message.Chat.ID
		text   string
		alert  bool
		err    error
	)

	switch data.Action {
	case actionQuiz:
		if len(data.Params) == 1 && data.Params[0] == quizStart {
			err = h.handleQuiz(cb.From.ID)(ctx, chatID)
			break
		}
		text, err = h.handleAnswerCallback(cb, data.Params)

	case actionHint:
		text, err = h.handleHintCallback(cb, data.Params)
		alert = err == nil && text != ""

	default:
		h.logger.Warn("unknown callback action", zap.String("data", cb.Data))
	}

	// Remove the user's "clock".
	h.answerCallback(cb.ID, text, alert)

	if err != nil {
		h.handleError(ctx, cb.From.ID, chatID, err)
	}
}

// handleAnswerCallback records the selected option, replaces the question with
// its feedback and moves on to the next question or the summary.
// It returns the text of the callback notification.
func (h *Handler) handleAnswerCallback(cb *tgbotapi.CallbackQuery, params []string) (string, error) {
	chatID := cb.Message.Chat.ID

	ref, option, err := parseAnswer(params)
	if err != nil {
		h.logger.Warn("invalid quiz callback", zap.String("data", cb.Data))
		return "", nil
	}

	res, err := h.quizService.Answer(chatID, ref.Difficulty, ref.Position, option)
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		if h.quizService.Loading(chatID) {
			return msgAlreadyLoading, nil
		}
		return msgNoActiveQuiz, nil
	case errors.Is(err, service.ErrStaleAnswer):
		return msgStaleQuestion, nil
	case err != nil:
		return "", err
	}

	// The edit drops the keyboard so the question cannot be answered twice.
	if err := h.send(newEdit(chatID, cb.Message.MessageID, renderAnswered(res))); err != nil {
		return "", err
	}

	if res.Next != nil {
		if err := h.sendQuestion(chatID, res.Next); err != nil {
			return "", err
		}
	} else if res.Summary != nil {
		msg := newMessage(chatID, renderSummary(res.Summary))
		msg.ReplyMarkup = buildSummaryKeyboard()
		if err := h.send(msg); err != nil {
			return "", err
		}
	}

	if res.Correct {
		return "✅ Correct", nil
	}
	return "❌ Incorrect", nil
}

// handleHintCallback returns the hint of the referenced question.
func (h *Handler) handleHintCallback(cb *tgbotapi.CallbackQuery, params []string) (string, error) {
	ref, err := parseQuestionRef(params)
	if err != nil || len(params) != 2 {
		h.logger.Warn("invalid hint callback", zap.String("data", cb.Data))
		return "", nil
	}

	hint, err := h.quizService.Hint(cb.Message.Chat.ID, ref.Difficulty, ref.Position)
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		return msgNoActiveQuiz, nil
	case errors.Is(err, service.ErrStaleAnswer):
		return msgStaleQuestion, nil
	case err != nil:
		return "", err
	}

	return truncate("💡 "+hint, maxCallbackText), nil
}

func (h *Handler) answerCallback(id, text string, alert bool) {
	answer := tgbotapi.NewCallback(id, text)
	if alert {
		answer = tgbotapi.NewCallbackWithAlert(id, text)
	}

	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}
