package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handler struct {
	bot            *tgbotapi.BotAPI
	logger         *zap.Logger
	userService    UserService
	sessionService SessionService
	quizService    QuizService
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	userService UserService,
	sessionService SessionService,
	quizService QuizService,
) *Handler {
	return &Handler{
		bot:            bot,
		logger:         logger,
		userService:    userService,
		sessionService: sessionService,
		quizService:    quizService,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID

	created, err := h.userService.EnsureUser(ctx, from.ID, chatID)
	if err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	} else if created {
		h.logger.Info("new user", zap.Int64("user_id", from.ID))
	}

	if !update.Message.IsCommand() {
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	var fn HandlerFunc
	switch update.Message.Command() {
	case "start":
		fn = h.handleStart()
	case "video":
		fn = h.handleVideo(from.ID, update.Message.CommandArguments())
	case "quiz":
		fn = h.handleQuiz(from.ID)
	case "stop":
		fn = h.handleStop()
	case "help":
		fn = h.handleHelp()
	default:
		fn = func(ctx context.Context, chatID int64) error {
			return h.send(newPlainMessage(chatID, msgUnknownCommand))
		}
	}

	_ = h.withErrorHandling(from.ID, fn)(ctx, chatID)
}

// handleError logs err and tells the user something went wrong. Users who
// blocked the bot are deactivated instead.
func (h *Handler) handleError(ctx context.Context, userID, chatID int64, err error) {
	h.logger.Error("handle error",
		zap.Int64("chat_id", chatID),
		zap.Error(err),
	)

	if isBlocked(err) {
		if err := h.userService.Deactivate(ctx, userID); err != nil {
			h.logger.Error("failed to deactivate user",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
		return
	}

	h.sendError(chatID, msgInternalError)
}

func (h *Handler) sendError(chatID int64, text string) {
	_ = h.send(newPlainMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}
