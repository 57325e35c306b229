package entities

import (
	"errors"
	"time"
)

// Session is the per-user context a knowledge check runs in.
// VideoID is the currently selected video; empty means none was chosen.
type Session struct {
	UserID    int64
	VideoID   string
	UpdatedAt time.Time
}

// NewSession creates a session pointing at videoID.
func NewSession(userID int64, videoID string) *Session {
	return &Session{
		UserID:    userID,
		VideoID:   videoID,
		UpdatedAt: time.Now(),
	}
}

// HasVideo reports whether a video has been selected.
func (s *Session) HasVideo() bool {
	return s != nil && s.VideoID != ""
}

// ErrSessionNotFound is returned by session stores when a user has no session yet.
var ErrSessionNotFound = errors.New("session not found")
