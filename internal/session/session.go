// Package session wraps gin-contrib/sessions with a typed payload: a
// cached user snapshot plus the time of the last authenticated action.
// The snapshot is only a cache; middleware re-validates it against the
// users table on every request.
package session

import (
	"encoding/gob"
	"time"
	"tsubame/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Name is the session cookie name.
const Name = "tsubame_session"

const (
	userKey       = "user"
	lastActionKey = "last_action_time"
)

// UserSnapshot is the denormalized user record carried in the cookie.
type UserSnapshot struct {
	ID        uint
	Name      string
	Email     string
	CreatedAt time.Time
}

func init() {
	// The cookie store gob-encodes session values.
	gob.Register(&UserSnapshot{})
}

// NewStore builds the cookie-backed store used by the sessions middleware.
func NewStore(secret string) sessions.Store {
	return cookie.NewStore([]byte(secret))
}

// Snapshot builds the cookie payload from a full user record.
func Snapshot(u *models.User) *UserSnapshot {
	return &UserSnapshot{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// User returns the cached snapshot, or nil when the session has none.
func User(c *gin.Context) *UserSnapshot {
	s := sessions.Default(c)
	snap, ok := s.Get(userKey).(*UserSnapshot)
	if !ok {
		return nil
	}
	return snap
}

// LastAction returns the recorded time of the last authenticated action.
func LastAction(c *gin.Context) (time.Time, bool) {
	s := sessions.Default(c)
	unix, ok := s.Get(lastActionKey).(int64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

// SetUser stores a fresh snapshot and stamps the last action time.
// Save re-serializes the cookie, so the response always carries a
// Set-Cookie header; skipping it desynchronizes server and client.
func SetUser(c *gin.Context, u *models.User) error {
	s := sessions.Default(c)
	s.Set(userKey, Snapshot(u))
	s.Set(lastActionKey, time.Now().Unix())
	return s.Save()
}

// Clear destroys the session and re-emits the (now empty) cookie.
func Clear(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	return s.Save()
}
