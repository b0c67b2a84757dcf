package handlers

import (
	"math"
	"net/http"
	"tsubame/internal/middleware"
	"tsubame/internal/repository"
	"tsubame/internal/utils"

	"github.com/gin-gonic/gin"
)

const profilePageSize = 10

type ProfileHandler struct {
	users     *repository.UserRepository
	posts     *repository.PostRepository
	favorites *repository.FavoriteRepository
}

func NewProfileHandler(users *repository.UserRepository, posts *repository.PostRepository, favorites *repository.FavoriteRepository) *ProfileHandler {
	return &ProfileHandler{users: users, posts: posts, favorites: favorites}
}

func pageParam(c *gin.Context) (page, offset int) {
	page = utils.StringToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * profilePageSize
}

func totalPages(total int64) int {
	pages := int(math.Ceil(float64(total) / float64(profilePageSize)))
	if pages == 0 {
		pages = 1
	}
	return pages
}

// Show renders a user's profile with their top-level posts, paginated.
func (h *ProfileHandler) Show(c *gin.Context) {
	profileUser, err := h.users.FindByName(c.Param("name"))
	if err != nil {
		RenderAppError(c, err)
		return
	}

	page, offset := pageParam(c)
	total, err := h.posts.CountByAuthor(profileUser.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	posts, err := h.posts.FindByAuthor(profileUser.ID, offset, profilePageSize)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	posts, err = h.favorites.EnrichWithFavoriteData(posts, middleware.CurrentUserID(c))
	if err != nil {
		RenderAppError(c, err)
		return
	}
	posts, err = h.posts.FillReplyCounts(posts)
	if err != nil {
		RenderAppError(c, err)
		return
	}

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"ProfileUser": profileUser,
		"Posts":       posts,
		"CurrentPage": page,
		"TotalPages":  totalPages(total),
		"Title":       profileUser.Name,
	})
}

// Favorites renders a user's favorited posts, paginated, newest first.
func (h *ProfileHandler) Favorites(c *gin.Context) {
	profileUser, err := h.users.FindByName(c.Param("name"))
	if err != nil {
		RenderAppError(c, err)
		return
	}

	page, offset := pageParam(c)
	total, err := h.favorites.CountByUser(profileUser.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	favorites, err := h.favorites.FindByUser(profileUser.ID, offset, profilePageSize)
	if err != nil {
		RenderAppError(c, err)
		return
	}

	Render(c, http.StatusOK, "user/favorites.html", gin.H{
		"ProfileUser": profileUser,
		"Favorites":   favorites,
		"CurrentPage": page,
		"TotalPages":  totalPages(total),
		"Title":       profileUser.Name + "'s favorites",
	})
}
