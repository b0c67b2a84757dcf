package handlers

import (
	"net/http"
	"tsubame/internal/middleware"
	"tsubame/internal/repository"
	"tsubame/internal/utils"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	favorites *repository.FavoriteRepository
}

func NewFavoriteHandler(favorites *repository.FavoriteRepository) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// Toggle flips the viewer's favorite on a post and returns the new state
// as JSON for the fetch-driven favorite button.
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	postID := utils.StringToUint(c.Param("id"))
	if postID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	added, err := h.favorites.Toggle(postID, user.ID)
	if err != nil {
		JSONError(c, err)
		return
	}

	count, err := h.favorites.CountFavorites(postID)
	if err != nil {
		JSONError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"added":         added,
		"favoriteCount": count,
	})
}

// Status returns the viewer's favorite state and the total count for a
// post. Works for anonymous viewers, who are never favoriters.
func (h *FavoriteHandler) Status(c *gin.Context) {
	postID := utils.StringToUint(c.Param("id"))
	if postID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	isFavorite, err := h.favorites.IsFavorite(postID, middleware.CurrentUserID(c))
	if err != nil {
		JSONError(c, err)
		return
	}
	count, err := h.favorites.CountFavorites(postID)
	if err != nil {
		JSONError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isFavorite":    isFavorite,
		"favoriteCount": count,
	})
}
