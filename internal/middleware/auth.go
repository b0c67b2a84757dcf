package middleware

import (
	"errors"
	"net/http"
	"time"
	"tsubame/internal/apperror"
	"tsubame/internal/models"
	"tsubame/internal/repository"
	"tsubame/internal/session"

	"github.com/gin-gonic/gin"
)

// Context keys set by LoadUser.
const (
	CheckUserKey      = "user"
	SessionExpiredKey = "session_expired"
)

// LoadUser resolves the session on every request. The cookie snapshot is
// never trusted as-is: the user row is re-read so edits and deletions
// after the cookie was issued take effect immediately. A session idle for
// longer than idleTimeout is destroyed (zero disables the check). Every
// session touch ends in a Save, so the Set-Cookie header is re-emitted
// whether or not anything changed.
func LoadUser(users *repository.UserRepository, idleTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := session.User(c)
		if snap == nil {
			c.Next()
			return
		}

		if idleTimeout > 0 {
			if last, ok := session.LastAction(c); ok && time.Since(last) > idleTimeout {
				session.Clear(c)
				c.Set(SessionExpiredKey, true)
				c.Next()
				return
			}
		}

		user, err := users.FindByID(snap.ID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				// The account is gone; the stale cookie goes with it.
				session.Clear(c)
			}
			c.Next()
			return
		}

		session.SetUser(c, user)
		c.Set(CheckUserKey, user)
		c.Next()
	}
}

// AuthRequired redirects to /login when LoadUser resolved no user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			target := "/login"
			if expired, ok := c.Get(SessionExpiredKey); ok && expired == true {
				target = "/login?expired=1"
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the resolved user for this request, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CurrentUserID returns the resolved user's id, or nil for anonymous
// viewers. Repositories take the nil form for viewer-dependent reads.
func CurrentUserID(c *gin.Context) *uint {
	user, ok := CurrentUser(c)
	if !ok {
		return nil
	}
	id := user.ID
	return &id
}
