// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
	"github.com/aliskhannn/knowledge-check-bot/internal/service"
)

// Error messages.
const (
	msgNoVideoSelected  = "No video ID found. Please select a video with /video <id>."
	msgInvalidVideoID   = "That doesn't look like a video ID. Example: /video dQw4w9WgXcQ"
	msgQuizUnavailable  = "Couldn't load the knowledge check. Please try again later."
	msgNoQuestions      = "The backend returned no usable questions for this video."
	msgNoActiveQuiz     = "There is no knowledge check in progress. Send /quiz to start one."
	msgStaleQuestion    = "This question has already been answered."
	msgAlreadyLoading   = "Questions are still loading, hang on…"
	msgNothingToStop    = "Nothing to stop."
	msgStopped          = "Knowledge check stopped."
	msgInternalError    = "Something went wrong. Please try again later."
	msgUnknownCommand   = "Unknown command. Send /help to see what I can do."
	msgLoadingQuestions = "⏳ Loading questions… The backend can take a while, I'll keep trying."
)

const optionLetters = "ABCD"

// maxCallbackText is the longest text Telegram shows in a callback answer.
const maxCallbackText = 200

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

func code(s string) string {
	return "`" + strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(s) + "`"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

func welcomeMessage() string {
	var sb strings.Builder

	sb.WriteString(bold("Knowledge Check Bot"))
	sb.WriteString("\n\n")
	sb.WriteString(md("Test what you learned from a video with three rounds of questions: easy, medium and hard."))
	sb.WriteString("\n\n")
	sb.WriteString(helpMessage())

	return sb.String()
}

func helpMessage() string {
	lines := []string{
		md("/video <id> - choose the video to be quizzed on"),
		md("/quiz - start the knowledge check"),
		md("/stop - abandon the current knowledge check"),
		md("/help - show this message"),
	}
	return strings.Join(lines, "\n")
}

func videoSelectedMessage(videoID string) string {
	return md("🎬 Video selected: ") + code(videoID) + "\n\n" + md("Send /quiz to start the knowledge check.")
}

func currentVideoMessage(s *entities.Session) string {
	if !s.HasVideo() {
		return md(msgNoVideoSelected)
	}
	return md("🎬 Current video: ") + code(s.VideoID) + "\n\n" + md("Use /video <id> to choose another one.")
}

func difficultyTitle(d entities.Difficulty) string {
	switch d {
	case entities.DifficultyEasy:
		return "Easy"
	case entities.DifficultyMedium:
		return "Medium"
	case entities.DifficultyHard:
		return "Hard"
	default:
		return string(d)
	}
}

func optionLabel(i int) string {
	if i < 0 || i >= len(optionLetters) {
		return "?"
	}
	return optionLetters[i : i+1]
}

// renderQuestion formats a question with its lettered options.
func renderQuestion(v *service.QuestionView) string {
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("Question %d/%d", v.Number, v.Total)))
	sb.WriteString(md(" · "))
	sb.WriteString(italic(difficultyTitle(v.Difficulty)))
	sb.WriteString("\n\n")
	sb.WriteString(md(v.Question.Question))
	sb.WriteString("\n\n")

	for i, opt := range v.Question.Options {
		sb.WriteString(bold(optionLabel(i) + ")"))
		sb.WriteString(" ")
		sb.WriteString(md(opt))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// renderAnswered replaces an answered question with its feedback.
func renderAnswered(res *service.AnswerResult) string {
	var sb strings.Builder

	q := res.Answered
	sb.WriteString(md(q.Question))
	sb.WriteString("\n\n")

	if res.Correct {
		sb.WriteString(md("✅ Correct! "))
		sb.WriteString(bold(optionLabel(res.Selected) + ") " + q.CorrectOption()))
	} else {
		sb.WriteString(md(fmt.Sprintf("❌ You chose %s) %s.", optionLabel(res.Selected), q.Options[res.Selected])))
		sb.WriteString("\n")
		sb.WriteString(md("Correct answer: "))
		sb.WriteString(bold(optionLabel(q.CorrectIndex) + ") " + q.CorrectOption()))
	}

	sb.WriteString("\n\n")
	sb.WriteString(italic(q.Explanation))

	return sb.String()
}

// renderSummary formats the final per-tier score.
func renderSummary(sum *service.Summary) string {
	var sb strings.Builder

	sb.WriteString(bold("🏁 Knowledge check complete"))
	sb.WriteString("\n\n")

	for _, t := range sum.Tiers {
		sb.WriteString(md(fmt.Sprintf("%s: %d/%d", difficultyTitle(t.Difficulty), t.Correct, t.Total)))
		sb.WriteString("\n")
	}

	percent := 0.0
	if sum.Total > 0 {
		percent = float64(sum.Correct) / float64(sum.Total) * 100
	}

	sb.WriteString("\n")
	sb.WriteString(bold(fmt.Sprintf("Total: %d/%d (%.0f%%)", sum.Correct, sum.Total, percent)))

	return sb.String()
}

func loadedMessage(total int) string {
	return md(fmt.Sprintf("📚 Loaded %d questions. Good luck!", total))
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
