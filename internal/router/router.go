package router

import (
	"time"
	"tsubame/internal/auth"
	"tsubame/internal/handlers"
	"tsubame/internal/middleware"
	"tsubame/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes wires repositories, handlers and middleware onto the
// engine. The storage handle is injected here so tests can run the whole
// router against an in-memory database.
func RegisterRoutes(r *gin.Engine, gdb *gorm.DB, idleTimeout time.Duration) {
	users := repository.NewUserRepository(gdb)
	posts := repository.NewPostRepository(gdb)
	favorites := repository.NewFavoriteRepository(gdb)
	authenticator := auth.NewAuthenticator(users)

	r.Use(middleware.LoadUser(users, idleTimeout))

	authHandler := handlers.NewAuthHandler(users, authenticator)
	postHandler := handlers.NewPostHandler(posts, favorites)
	favoriteHandler := handlers.NewFavoriteHandler(favorites)
	profileHandler := handlers.NewProfileHandler(users, posts, favorites)
	dashboardHandler := handlers.NewDashboardHandler(users, posts, favorites)
	searchHandler := handlers.NewSearchHandler(posts, favorites)

	// Public routes
	r.GET("/", postHandler.Feed)                     // infinite-scroll feed
	r.GET("/api/posts", postHandler.FeedData)        // JSON continuation for the feed
	r.GET("/posts/:id", postHandler.Detail)          // post with replies
	r.GET("/search", searchHandler.Search)           // search page
	r.GET("/u/:name", profileHandler.Show)           // user profile
	r.GET("/u/:name/favorites", profileHandler.Favorites)
	r.GET("/favorite/:id/status", favoriteHandler.Status)

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/submit", postHandler.ShowCreate)
		authorized.POST("/submit", postHandler.Create)
		authorized.POST("/posts/:id/reply", postHandler.CreateReply)
		authorized.GET("/posts/:id/edit", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit", postHandler.Update)
		authorized.POST("/posts/:id/delete", postHandler.Delete)
		authorized.POST("/favorite/:id", favoriteHandler.Toggle)
	}

	// Dashboard routes
	dashboard := r.Group("/dashboard")
	dashboard.Use(middleware.AuthRequired())
	{
		dashboard.GET("", dashboardHandler.Overview)
		dashboard.GET("/settings", dashboardHandler.ShowSettings)
		dashboard.POST("/settings", dashboardHandler.UpdateSettings)
	}
}
