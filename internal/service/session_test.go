package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/domain/entities"
)

type memorySessions struct {
	sessions map[int64]*entities.Session
	err      error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[int64]*entities.Session)}
}

func (m *memorySessions) Get(_ context.Context, userID int64) (*entities.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[userID]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return s, nil
}

func (m *memorySessions) Upsert(_ context.Context, s *entities.Session) error {
	if m.err != nil {
		return m.err
	}
	m.sessions[s.UserID] = s
	return nil
}

func (m *memorySessions) Delete(_ context.Context, userID int64) error {
	delete(m.sessions, userID)
	return m.err
}

func TestSessionService_SelectAndCurrent(t *testing.T) {
	svc := NewSessionService(newMemorySessions(), zap.NewNop())
	ctx := context.Background()

	empty, err := svc.Current(ctx, 1)
	require.NoError(t, err)
	assert.False(t, empty.HasVideo())
	assert.Equal(t, int64(1), empty.UserID)

	_, err = svc.SelectVideo(ctx, 1, "  dQw4w9WgXcQ ")
	require.NoError(t, err)

	current, err := svc.Current(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", current.VideoID)

	require.NoError(t, svc.Clear(ctx, 1))
	current, err = svc.Current(ctx, 1)
	require.NoError(t, err)
	assert.False(t, current.HasVideo())
}

func TestSessionService_RejectsInvalidVideoID(t *testing.T) {
	svc := NewSessionService(newMemorySessions(), zap.NewNop())

	for _, id := range []string{"", "   ", "two words", strings.Repeat("v", 65), "tab\tid"} {
		_, err := svc.SelectVideo(context.Background(), 1, id)
		assert.ErrorIs(t, err, ErrInvalidVideoID, id)
	}
}

func TestSessionService_StoreFailure(t *testing.T) {
	repo := newMemorySessions()
	repo.err = errors.New("db down")
	svc := NewSessionService(repo, zap.NewNop())

	_, err := svc.Current(context.Background(), 1)
	assert.ErrorIs(t, err, repo.err)

	_, err = svc.SelectVideo(context.Background(), 1, "vid")
	assert.ErrorIs(t, err, repo.err)
}

type memoryUsers struct {
	users map[int64]*entities.User
}

func (m *memoryUsers) Save(_ context.Context, u *entities.User) (bool, error) {
	_, exists := m.users[u.ID]
	m.users[u.ID] = u
	return !exists, nil
}

func (m *memoryUsers) SetActive(_ context.Context, userID int64, active bool) error {
	u, ok := m.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.IsActive = active
	return nil
}

func TestUserService_EnsureUser(t *testing.T) {
	repo := &memoryUsers{users: make(map[int64]*entities.User)}
	svc := NewUserService(repo)
	ctx := context.Background()

	created, err := svc.EnsureUser(ctx, 5, 500)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, svc.Deactivate(ctx, 5))
	assert.False(t, repo.users[5].IsActive)

	created, err = svc.EnsureUser(ctx, 5, 501)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, repo.users[5].IsActive)
	assert.Equal(t, int64(501), repo.users[5].ChatID)
}
