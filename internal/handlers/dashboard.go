package handlers

import (
	"net/http"
	"tsubame/internal/auth"
	"tsubame/internal/middleware"
	"tsubame/internal/repository"
	"tsubame/internal/session"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	users     *repository.UserRepository
	posts     *repository.PostRepository
	favorites *repository.FavoriteRepository
}

func NewDashboardHandler(users *repository.UserRepository, posts *repository.PostRepository, favorites *repository.FavoriteRepository) *DashboardHandler {
	return &DashboardHandler{users: users, posts: posts, favorites: favorites}
}

// Overview shows the signed-in user's post and favorite counts.
func (h *DashboardHandler) Overview(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	postCount, err := h.posts.CountByAuthor(user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	favoriteCount, err := h.favorites.CountByUser(user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}

	Render(c, http.StatusOK, "dashboard/overview.html", gin.H{
		"User":          user,
		"PostCount":     postCount,
		"FavoriteCount": favoriteCount,
		"Title":         "Dashboard",
	})
}

func (h *DashboardHandler) ShowSettings(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	Render(c, http.StatusOK, "dashboard/settings.html", gin.H{"User": user})
}

// UpdateSettings applies profile edits and an optional password change.
// A password change requires the current password.
func (h *DashboardHandler) UpdateSettings(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	name := c.PostForm("name")
	email := c.PostForm("email")
	currentPassword := c.PostForm("current_password")
	newPassword := c.PostForm("new_password")

	updated, err := h.users.UpdateProfile(user.ID, name, email)
	if err != nil {
		Render(c, statusFor(err), "dashboard/settings.html", gin.H{"Error": err.Error(), "User": user})
		return
	}

	if newPassword != "" {
		if !auth.CheckPasswordHash(currentPassword, updated.Password) {
			Render(c, http.StatusBadRequest, "dashboard/settings.html", gin.H{"Error": "current password is incorrect", "User": updated})
			return
		}
		if len(newPassword) < 6 {
			Render(c, http.StatusBadRequest, "dashboard/settings.html", gin.H{"Error": "new password must be at least 6 characters", "User": updated})
			return
		}
		hash, err := auth.HashPassword(newPassword)
		if err != nil {
			Render(c, http.StatusInternalServerError, "dashboard/settings.html", gin.H{"Error": "something went wrong", "User": updated})
			return
		}
		if err := h.users.UpdatePassword(updated.ID, hash); err != nil {
			RenderAppError(c, err)
			return
		}
	}

	// Refresh the session snapshot so the cookie reflects the edits now,
	// not on the next request.
	if err := session.SetUser(c, updated); err != nil {
		RenderAppError(c, err)
		return
	}

	Render(c, http.StatusOK, "dashboard/settings.html", gin.H{"Success": "profile updated", "User": updated})
}
