package handlers

import (
	"fmt"
	"net/http"
	"tsubame/internal/middleware"
	"tsubame/internal/models"
	"tsubame/internal/repository"
	"tsubame/internal/utils"

	"github.com/gin-gonic/gin"
)

// feedPageSize is the infinite-scroll window size.
const feedPageSize = 20

type PostHandler struct {
	posts     *repository.PostRepository
	favorites *repository.FavoriteRepository
}

func NewPostHandler(posts *repository.PostRepository, favorites *repository.FavoriteRepository) *PostHandler {
	return &PostHandler{posts: posts, favorites: favorites}
}

// Feed renders the first page of the infinite-scroll feed.
func (h *PostHandler) Feed(c *gin.Context) {
	posts, hasNext, err := h.feedPage(c, nil)
	if err != nil {
		RenderAppError(c, err)
		return
	}

	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Posts":       posts,
		"HasNextPage": hasNext,
		"Title":       "Home",
	})
}

// FeedData serves JSON continuations for the infinite scroll. The client
// passes the last id it has seen; keyset pagination keeps pages stable
// under concurrent inserts.
func (h *PostHandler) FeedData(c *gin.Context) {
	var cursor *uint
	if lastID := utils.StringToUint(c.Query("last_id")); lastID > 0 {
		cursor = &lastID
	}

	posts, hasNext, err := h.feedPage(c, cursor)
	if err != nil {
		JSONError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"hasNextPage": hasNext,
	})
}

func (h *PostHandler) feedPage(c *gin.Context, cursor *uint) ([]models.Post, bool, error) {
	posts, err := h.posts.FindInfiniteScroll(feedPageSize, cursor)
	if err != nil {
		return nil, false, err
	}
	posts, err = h.favorites.EnrichWithFavoriteData(posts, middleware.CurrentUserID(c))
	if err != nil {
		return nil, false, err
	}
	posts, err = h.posts.FillReplyCounts(posts)
	if err != nil {
		return nil, false, err
	}
	return posts, len(posts) == feedPageSize, nil
}

// Detail renders a post with its replies, all enriched for the viewer.
func (h *PostHandler) Detail(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))
	post, err := h.posts.FindWithRepliesAndAuthor(id)
	if err != nil {
		RenderAppError(c, err)
		return
	}

	viewerID := middleware.CurrentUserID(c)
	enriched, err := h.favorites.EnrichWithFavoriteData(append([]models.Post{*post}, post.Replies...), viewerID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	*post = enriched[0]
	post.Replies = enriched[1:]

	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Post":        post,
		"ContentHTML": utils.RenderMarkdown(post.Content),
		"Title":       post.Title,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/create.html", nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	title := c.PostForm("title")
	content := c.PostForm("content")

	post, err := h.posts.Create(title, content, user.ID)
	if err != nil {
		Render(c, statusFor(err), "post/create.html", gin.H{
			"Error":   err.Error(),
			"Title":   title,
			"Content": content,
		})
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

func (h *PostHandler) CreateReply(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	parentID := utils.StringToUint(c.Param("id"))
	title := c.PostForm("title")
	content := c.PostForm("content")

	if _, err := h.posts.CreateReply(title, content, user.ID, parentID); err != nil {
		RenderAppError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", parentID))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	post, err := h.posts.FindByID(id)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	if post.AuthorID != user.ID {
		RenderError(c, http.StatusForbidden, "you are not allowed to edit this post")
		return
	}

	Render(c, http.StatusOK, "post/edit.html", gin.H{"Post": post})
}

func (h *PostHandler) Update(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))
	title := c.PostForm("title")
	content := c.PostForm("content")

	post, err := h.posts.Update(id, title, content, user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

func (h *PostHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	if err := h.posts.Delete(id, user.ID); err != nil {
		RenderAppError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
