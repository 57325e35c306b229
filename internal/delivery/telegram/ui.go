package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/knowledge-check-bot/internal/service"
)

// buildQuestionKeyboard builds keyboard for a quiz question: one button per
// option in a 2x2 grid and a hint button below.
func buildQuestionKeyboard(v *service.QuestionView) tgbotapi.InlineKeyboardMarkup {
	var (
		rows [][]tgbotapi.InlineKeyboardButton
		row  []tgbotapi.InlineKeyboardButton
	)

	for i := range v.Question.Options {
		callbackData := buildQuizAnswerCallback(v.Difficulty, v.Position, i)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(optionLabel(i), callbackData))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💡 Hint", buildHintCallback(v.Difficulty, v.Position)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildSummaryKeyboard builds keyboard for the results screen.
func buildSummaryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Try again", buildQuizStartCallback()),
		),
	)
}
