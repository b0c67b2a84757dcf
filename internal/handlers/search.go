package handlers

import (
	"net/http"
	"strings"
	"tsubame/internal/middleware"
	"tsubame/internal/repository"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	posts     *repository.PostRepository
	favorites *repository.FavoriteRepository
}

func NewSearchHandler(posts *repository.PostRepository, favorites *repository.FavoriteRepository) *SearchHandler {
	return &SearchHandler{posts: posts, favorites: favorites}
}

// Search renders paginated, case-insensitive substring matches over post
// titles and content.
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		Render(c, http.StatusOK, "search.html", gin.H{"Query": "", "Title": "Search"})
		return
	}

	page, offset := pageParam(c)
	total, err := h.posts.CountSearch(query)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	posts, err := h.posts.Search(query, offset, profilePageSize)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	posts, err = h.favorites.EnrichWithFavoriteData(posts, middleware.CurrentUserID(c))
	if err != nil {
		RenderAppError(c, err)
		return
	}

	Render(c, http.StatusOK, "search.html", gin.H{
		"Query":       query,
		"Posts":       posts,
		"Total":       total,
		"CurrentPage": page,
		"TotalPages":  totalPages(total),
		"Title":       "Search: " + query,
	})
}
