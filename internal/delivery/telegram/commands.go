package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/service"
)

// handleStart greets the user and lists the commands.
func (h *Handler) handleStart() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.send(newMessage(chatID, welcomeMessage()))
	}
}

// handleHelp lists the commands.
func (h *Handler) handleHelp() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.send(newMessage(chatID, helpMessage()))
	}
}

// handleVideo selects the video to be quizzed on, or shows the current one
// when called without arguments.
func (h *Handler) handleVideo(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if args == "" {
			session, err := h.sessionService.Current(ctx, userID)
			if err != nil {
				return err
			}
			return h.send(newMessage(chatID, currentVideoMessage(session)))
		}

		session, err := h.sessionService.SelectVideo(ctx, userID, args)
		if errors.Is(err, service.ErrInvalidVideoID) {
			return h.send(newPlainMessage(chatID, msgInvalidVideoID))
		}
		if err != nil {
			return err
		}

		// A run for the previous video is no longer relevant.
		h.quizService.Stop(chatID)

		return h.send(newMessage(chatID, videoSelectedMessage(session.VideoID)))
	}
}

// handleQuiz starts a knowledge check for the user's current video.
func (h *Handler) handleQuiz(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		session, err := h.sessionService.Current(ctx, userID)
		if err != nil {
			return err
		}
		if !session.HasVideo() {
			return h.send(newPlainMessage(chatID, msgNoVideoSelected))
		}

		loading, err := h.bot.Send(newPlainMessage(chatID, msgLoadingQuestions))
		if err != nil {
			return err
		}

		err = h.quizService.Start(ctx, chatID, session, h.onQuizReady(ctx, userID, chatID, loading.MessageID))
		if errors.Is(err, service.ErrNoVideoSelected) {
			return h.send(newPlainMessage(chatID, msgNoVideoSelected))
		}

		return err
	}
}

// handleStop abandons the current knowledge check.
func (h *Handler) handleStop() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if !h.quizService.Stop(chatID) {
			return h.send(newPlainMessage(chatID, msgNothingToStop))
		}
		return h.send(newPlainMessage(chatID, msgStopped))
	}
}

// onQuizReady replaces the loading message once the question set is fetched
// and sends the first question. It runs on the fetching goroutine.
func (h *Handler) onQuizReady(ctx context.Context, userID, chatID int64, loadingMsgID int) service.ReadyFunc {
	return func(first *service.QuestionView, err error) {
		switch {
		case errors.Is(err, context.Canceled):
			return

		case err != nil:
			h.logger.Error("failed to fetch question set",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			_ = h.send(newEdit(chatID, loadingMsgID, md(msgQuizUnavailable)))
			return

		case first == nil:
			_ = h.send(newEdit(chatID, loadingMsgID, md(msgNoQuestions)))
			return
		}

		_ = h.send(newEdit(chatID, loadingMsgID, loadedMessage(first.Total)))

		if err := h.sendQuestion(chatID, first); err != nil {
			h.handleError(ctx, userID, chatID, err)
		}
	}
}

func (h *Handler) sendQuestion(chatID int64, v *service.QuestionView) error {
	msg := newMessage(chatID, renderQuestion(v))
	msg.ReplyMarkup = buildQuestionKeyboard(v)
	return h.send(msg)
}
