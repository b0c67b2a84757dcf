package handlers

import (
	"errors"
	"net/http"
	"tsubame/internal/apperror"
	"tsubame/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, exists := middleware.CurrentUser(c); exists {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError renders the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// statusFor maps repository errors to HTTP statuses. Forbidden is kept
// distinct from NotFound and surfaced with its own message.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrInvalidCredentials), errors.Is(err, apperror.ErrUnauthenticated), errors.Is(err, apperror.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RenderAppError maps a typed error to the error page.
func RenderAppError(c *gin.Context, err error) {
	code := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "something went wrong"
	}
	RenderError(c, code, message)
}

// JSONError maps a typed error to a JSON body for fetch-driven endpoints.
func JSONError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
