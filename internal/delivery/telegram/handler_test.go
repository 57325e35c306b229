package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
	"github.com/aliskhannn/knowledge-check-bot/internal/service"
)

const (
	testUserID int64 = 7
	testChatID int64 = 42
)

type apiCall struct {
	Method string
	Form   url.Values
}

// fakeTelegram records Bot API calls and answers them with minimal results.
type fakeTelegram struct {
	mu      sync.Mutex
	calls   []apiCall
	blocked bool
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	method := path.Base(r.URL.Path)

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Form: r.PostForm})
	blocked := f.blocked
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case method == "getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"test_bot"}}`))
	case method == "answerCallbackQuery":
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	case blocked:
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":99,"date":0,"chat":{"id":42,"type":"private"}}}`))
	}
}

func (f *fakeTelegram) byMethod(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

type fakeUsers struct {
	mu          sync.Mutex
	ensured     []int64
	deactivated []int64
}

func (f *fakeUsers) EnsureUser(_ context.Context, userID, _ int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, userID)
	return len(f.ensured) == 1, nil
}

func (f *fakeUsers) Deactivate(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, userID)
	return nil
}

type fakeSessions struct {
	videoID string
}

func (f *fakeSessions) SelectVideo(_ context.Context, userID int64, videoID string) (*entities.Session, error) {
	if videoID == "bad id" {
		return nil, service.ErrInvalidVideoID
	}
	f.videoID = videoID
	return entities.NewSession(userID, videoID), nil
}

func (f *fakeSessions) Current(_ context.Context, userID int64) (*entities.Session, error) {
	return &entities.Session{UserID: userID, VideoID: f.videoID}, nil
}

type fakeQuiz struct {
	started  []*entities.Session
	stopped  int
	running  bool
	loading  bool
	result   *service.AnswerResult
	err      error
	hint     string
	answered []questionRef
}

func (f *fakeQuiz) Start(_ context.Context, _ int64, session *entities.Session, _ service.ReadyFunc) error {
	if !session.HasVideo() {
		return service.ErrNoVideoSelected
	}
	f.started = append(f.started, session)
	return nil
}

func (f *fakeQuiz) Stop(int64) bool {
	f.stopped++
	return f.running
}

func (f *fakeQuiz) Loading(int64) bool { return f.loading }

func (f *fakeQuiz) Answer(_ int64, d entities.Difficulty, position, _ int) (*service.AnswerResult, error) {
	f.answered = append(f.answered, questionRef{Difficulty: d, Position: position})
	return f.result, f.err
}

func (f *fakeQuiz) Hint(int64, entities.Difficulty, int) (string, error) {
	return f.hint, f.err
}

type handlerFixture struct {
	handler  *Handler
	api      *fakeTelegram
	users    *fakeUsers
	sessions *fakeSessions
	quiz     *fakeQuiz
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	api := &fakeTelegram{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint("token", srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	f := &handlerFixture{
		api:      api,
		users:    &fakeUsers{},
		sessions: &fakeSessions{},
		quiz:     &fakeQuiz{},
	}
	f.handler = NewHandler(bot, zap.NewNop(), f.users, f.sessions, f.quiz)

	return f
}

func commandUpdate(text string) tgbotapi.Update {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}

	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 1,
			From:      &tgbotapi.User{ID: testUserID},
			Chat:      &tgbotapi.Chat{ID: testChatID},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
		},
	}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb1",
			From: &tgbotapi.User{ID: testUserID},
			Message: &tgbotapi.Message{
				MessageID: 5,
				Chat:      &tgbotapi.Chat{ID: testChatID},
			},
			Data: data,
		},
	}
}

func TestHandleQuizWithoutVideo(t *testing.T) {
	f := newHandlerFixture(t)

	f.handler.handleUpdate(context.Background(), commandUpdate("/quiz"))

	sent := f.api.byMethod("sendMessage")
	require.Len(t, sent, 1)
	assert.Equal(t, msgNoVideoSelected, sent[0].Form.Get("text"))
	assert.Empty(t, f.quiz.started)
	assert.Equal(t, []int64{testUserID}, f.users.ensured)
}

func TestHandleQuizStartsFetch(t *testing.T) {
	f := newHandlerFixture(t)
	f.sessions.videoID = "vid123"

	f.handler.handleUpdate(context.Background(), commandUpdate("/quiz"))

	sent := f.api.byMethod("sendMessage")
	require.Len(t, sent, 1)
	assert.Equal(t, msgLoadingQuestions, sent[0].Form.Get("text"))

	require.Len(t, f.quiz.started, 1)
	assert.Equal(t, "vid123", f.quiz.started[0].VideoID)
}

func TestHandleVideo(t *testing.T) {
	f := newHandlerFixture(t)

	f.handler.handleUpdate(context.Background(), commandUpdate("/video vid123"))

	assert.Equal(t, "vid123", f.sessions.videoID)
	assert.Equal(t, 1, f.quiz.stopped)

	sent := f.api.byMethod("sendMessage")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Form.Get("text"), "`vid123`")
	assert.Equal(t, tgbotapi.ModeMarkdownV2, sent[0].Form.Get("parse_mode"))
}

func TestHandleVideoShowsCurrent(t *testing.T) {
	f := newHandlerFixture(t)
	f.sessions.videoID = "vid123"

	f.handler.handleUpdate(context.Background(), commandUpdate("/video"))

	sent := f.api.byMethod("sendMessage")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Form.Get("text"), "Current video")
	assert.Zero(t, f.quiz.stopped)
}

func TestHandleStop(t *testing.T) {
	f := newHandlerFixture(t)

	f.handler.handleUpdate(context.Background(), commandUpdate("/stop"))
	f.quiz.running = true
	f.handler.handleUpdate(context.Background(), commandUpdate("/stop"))

	sent := f.api.byMethod("sendMessage")
	require.Len(t, sent, 2)
	assert.Equal(t, msgNothingToStop, sent[0].Form.Get("text"))
	assert.Equal(t, msgStopped, sent[1].Form.Get("text"))
}

func TestAnswerCallbackSendsNextQuestion(t *testing.T) {
	f := newHandlerFixture(t)
	next := sampleView()
	next.Position = 1
	f.quiz.result = &service.AnswerResult{
		Answered: sampleQuestion(),
		Selected: 0,
		Correct:  true,
		Next:     next,
	}

	f.handler.handleUpdate(context.Background(), callbackUpdate("quiz:easy:0:0"))

	require.Equal(t, []questionRef{{Difficulty: entities.DifficultyEasy, Position: 0}}, f.quiz.answered)

	edits := f.api.byMethod("editMessageText")
	require.Len(t, edits, 1)
	assert.Equal(t, "5", edits[0].Form.Get("message_id"))
	assert.Contains(t, edits[0].Form.Get("text"), "Correct")

	sent := f.api.byMethod("sendMessage")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Form.Get("reply_markup"), "quiz:medium:1:0")

	answers := f.api.byMethod("answerCallbackQuery")
	require.Len(t, answers, 1)
	assert.Equal(t, "✅ Correct", answers[0].Form.Get("text"))
}

func TestAnswerCallbackSendsSummary(t *testing.T) {
	f := newHandlerFixture(t)
	f.quiz.result = &service.AnswerResult{
		Answered: sampleQuestion(),
		Selected: 1,
		Summary: &service.Summary{
			Tiers:   []service.TierScore{{Difficulty: entities.DifficultyHard, Correct: 0, Total: 1}},
			Correct: 0,
			Total:   1,
		},
	}

	f.handler.handleUpdate(context.Background(), callbackUpdate("quiz:hard:0:1"))

	sent := f.api.byMethod("sendMessage")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Form.Get("text"), "Knowledge check complete")
	assert.Contains(t, sent[0].Form.Get("reply_markup"), "quiz:start")

	answers := f.api.byMethod("answerCallbackQuery")
	require.Len(t, answers, 1)
	assert.Equal(t, "❌ Incorrect", answers[0].Form.Get("text"))
}

func TestAnswerCallbackStale(t *testing.T) {
	f := newHandlerFixture(t)
	f.quiz.err = service.ErrStaleAnswer

	f.handler.handleUpdate(context.Background(), callbackUpdate("quiz:easy:0:0"))

	assert.Empty(t, f.api.byMethod("editMessageText"))
	answers := f.api.byMethod("answerCallbackQuery")
	require.Len(t, answers, 1)
	assert.Equal(t, msgStaleQuestion, answers[0].Form.Get("text"))
}

func TestAnswerCallbackWhileLoading(t *testing.T) {
	f := newHandlerFixture(t)
	f.quiz.err = service.ErrRunNotFound
	f.quiz.loading = true

	f.handler.handleUpdate(context.Background(), callbackUpdate("quiz:easy:0:0"))

	answers := f.api.byMethod("answerCallbackQuery")
	require.Len(t, answers, 1)
	assert.Equal(t, msgAlreadyLoading, answers[0].Form.Get("text"))
}

func TestMalformedCallbackIsIgnored(t *testing.T) {
	f := newHandlerFixture(t)

	f.handler.handleUpdate(context.Background(), callbackUpdate("quiz:extreme:0:0"))

	assert.Empty(t, f.quiz.answered)
	assert.Len(t, f.api.byMethod("answerCallbackQuery"), 1)
}

func TestHintCallbackShowsAlert(t *testing.T) {
	f := newHandlerFixture(t)
	f.quiz.hint = "Think about locks."

	f.handler.handleUpdate(context.Background(), callbackUpdate("hint:easy:0"))

	answers := f.api.byMethod("answerCallbackQuery")
	require.Len(t, answers, 1)
	assert.Equal(t, "💡 Think about locks.", answers[0].Form.Get("text"))
	assert.Equal(t, "true", answers[0].Form.Get("show_alert"))
}

func TestBlockedUserIsDeactivated(t *testing.T) {
	f := newHandlerFixture(t)
	f.api.blocked = true

	f.handler.handleUpdate(context.Background(), commandUpdate("/help"))

	assert.Equal(t, []int64{testUserID}, f.users.deactivated)
}

func TestOnQuizReady(t *testing.T) {
	t.Run("first question", func(t *testing.T) {
		f := newHandlerFixture(t)

		f.handler.onQuizReady(context.Background(), testUserID, testChatID, 99)(sampleView(), nil)

		edits := f.api.byMethod("editMessageText")
		require.Len(t, edits, 1)
		assert.Equal(t, "99", edits[0].Form.Get("message_id"))
		assert.Contains(t, edits[0].Form.Get("text"), "Loaded 9 questions")

		sent := f.api.byMethod("sendMessage")
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].Form.Get("text"), "Question 4/9")
	})

	t.Run("no questions", func(t *testing.T) {
		f := newHandlerFixture(t)

		f.handler.onQuizReady(context.Background(), testUserID, testChatID, 99)(nil, nil)

		edits := f.api.byMethod("editMessageText")
		require.Len(t, edits, 1)
		assert.Equal(t, md(msgNoQuestions), edits[0].Form.Get("text"))
		assert.Empty(t, f.api.byMethod("sendMessage"))
	})

	t.Run("cancelled", func(t *testing.T) {
		f := newHandlerFixture(t)

		f.handler.onQuizReady(context.Background(), testUserID, testChatID, 99)(nil, context.Canceled)

		assert.Empty(t, f.api.byMethod("editMessageText"))
		assert.Empty(t, f.api.byMethod("sendMessage"))
	})
}
