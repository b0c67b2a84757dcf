package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"tsubame/internal/db"
	"tsubame/internal/middleware"
	"tsubame/internal/models"
	"tsubame/internal/repository"
	"tsubame/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestApp wires the JSON endpoints the way the router does, minus the
// HTML routes so no templates are needed.
func newTestApp(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	users := repository.NewUserRepository(gdb)
	posts := repository.NewPostRepository(gdb)
	favorites := repository.NewFavoriteRepository(gdb)

	r := gin.New()
	r.Use(sessions.Sessions(session.Name, session.NewStore("test-secret")))
	r.Use(middleware.LoadUser(users, 0))

	r.POST("/test-login", func(c *gin.Context) {
		user, err := users.FindByEmail(c.Query("email"))
		if err != nil {
			c.Status(http.StatusUnauthorized)
			return
		}
		require.NoError(t, session.SetUser(c, user))
		c.Status(http.StatusOK)
	})

	favoriteHandler := NewFavoriteHandler(favorites)
	postHandler := NewPostHandler(posts, favorites)
	r.POST("/favorite/:id", favoriteHandler.Toggle)
	r.GET("/favorite/:id/status", favoriteHandler.Status)
	r.GET("/api/posts", postHandler.FeedData)

	return r, gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", Password: "hash"}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func seedPost(t *testing.T, gdb *gorm.DB, authorID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Content: "content", AuthorID: authorID}
	require.NoError(t, gdb.Create(post).Error)
	return post
}

func loginAs(t *testing.T, r *gin.Engine, email string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test-login?email="+email, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func do(r *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestToggleRequiresLogin(t *testing.T) {
	r, gdb := newTestApp(t)
	alice := seedUser(t, gdb, "alice")
	post := seedPost(t, gdb, alice.ID, "a post")

	w := do(r, http.MethodPost, fmt.Sprintf("/favorite/%d", post.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToggleRoundTrip(t *testing.T) {
	r, gdb := newTestApp(t)
	alice := seedUser(t, gdb, "alice")
	post := seedPost(t, gdb, alice.ID, "a post")
	cookies := loginAs(t, r, "alice@example.com")

	var resp struct {
		Success       bool  `json:"success"`
		Added         bool  `json:"added"`
		FavoriteCount int64 `json:"favoriteCount"`
	}

	w := do(r, http.MethodPost, fmt.Sprintf("/favorite/%d", post.ID), cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Added)
	assert.EqualValues(t, 1, resp.FavoriteCount)

	w = do(r, http.MethodPost, fmt.Sprintf("/favorite/%d", post.ID), cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Added)
	assert.EqualValues(t, 0, resp.FavoriteCount)
}

func TestToggleUnknownPostIs404(t *testing.T) {
	r, gdb := newTestApp(t)
	seedUser(t, gdb, "alice")
	cookies := loginAs(t, r, "alice@example.com")

	w := do(r, http.MethodPost, "/favorite/9999", cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusAnonymous(t *testing.T) {
	r, gdb := newTestApp(t)
	alice := seedUser(t, gdb, "alice")
	post := seedPost(t, gdb, alice.ID, "a post")

	cookies := loginAs(t, r, "alice@example.com")
	do(r, http.MethodPost, fmt.Sprintf("/favorite/%d", post.ID), cookies)

	// Anonymous viewer sees the count but never a favorite of their own
	w := do(r, http.MethodGet, fmt.Sprintf("/favorite/%d/status", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		IsFavorite    bool  `json:"isFavorite"`
		FavoriteCount int64 `json:"favoriteCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsFavorite)
	assert.EqualValues(t, 1, resp.FavoriteCount)
}

func TestFeedDataKeysetPagination(t *testing.T) {
	r, gdb := newTestApp(t)
	alice := seedUser(t, gdb, "alice")
	for i := 0; i < 25; i++ {
		seedPost(t, gdb, alice.ID, fmt.Sprintf("post %d", i))
	}

	var resp struct {
		Posts       []models.Post `json:"posts"`
		HasNextPage bool          `json:"hasNextPage"`
	}

	w := do(r, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 20)
	assert.True(t, resp.HasNextPage)

	lastID := resp.Posts[len(resp.Posts)-1].ID
	w = do(r, http.MethodGet, fmt.Sprintf("/api/posts?last_id=%d", lastID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 5)
	assert.False(t, resp.HasNextPage)
}
