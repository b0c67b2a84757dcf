package main

import (
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"
	"tsubame/internal/config"
	"tsubame/internal/db"
	"tsubame/internal/router"
	"tsubame/internal/session"
	"tsubame/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	r := gin.Default()

	// Setup Sessions
	store := session.NewStore(cfg.SessionSecret)
	r.Use(sessions.Sessions(session.Name, store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets
	r.Static("/static", "./web/static")

	router.RegisterRoutes(r, gdb, cfg.IdleTimeout)

	log.Printf("Tsubame server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"timeAgo": func(t interface{}) string {
			timeVal, ok := t.(time.Time)
			if !ok {
				return ""
			}
			return formatTimeAgo(timeVal)
		},
		"markdown": func(s string) template.HTML {
			return utils.RenderMarkdown(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)

	r.AddFromFilesFuncs("post/list.html", funcMap, assemble(templatesDir+"/views/post/list.html")...)
	r.AddFromFilesFuncs("post/detail.html", funcMap, assemble(templatesDir+"/views/post/detail.html")...)
	r.AddFromFilesFuncs("post/create.html", funcMap, assemble(templatesDir+"/views/post/create.html")...)
	r.AddFromFilesFuncs("post/edit.html", funcMap, assemble(templatesDir+"/views/post/edit.html")...)

	r.AddFromFilesFuncs("user/profile.html", funcMap, assemble(templatesDir+"/views/user/profile.html")...)
	r.AddFromFilesFuncs("user/favorites.html", funcMap, assemble(templatesDir+"/views/user/favorites.html")...)

	r.AddFromFilesFuncs("dashboard/overview.html", funcMap, assemble(templatesDir+"/views/dashboard/overview.html")...)
	r.AddFromFilesFuncs("dashboard/settings.html", funcMap, assemble(templatesDir+"/views/dashboard/settings.html")...)

	r.AddFromFilesFuncs("search.html", funcMap, assemble(templatesDir+"/views/search.html")...)
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}

func formatTimeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	default:
		return plural(seconds/31536000, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
