package handlers

import (
	"net/http"
	"tsubame/internal/auth"
	"tsubame/internal/repository"
	"tsubame/internal/session"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users         *repository.UserRepository
	authenticator *auth.Authenticator
}

func NewAuthHandler(users *repository.UserRepository, authenticator *auth.Authenticator) *AuthHandler {
	return &AuthHandler{users: users, authenticator: authenticator}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")

	if len(password) < 6 {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "password must be at least 6 characters"})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		Render(c, http.StatusInternalServerError, "auth/register.html", gin.H{"Error": "something went wrong"})
		return
	}

	if _, err := h.users.Create(name, email, hash); err != nil {
		Render(c, statusFor(err), "auth/register.html", gin.H{"Error": err.Error()})
		return
	}

	Render(c, http.StatusOK, "auth/login.html", gin.H{"Success": "account created, please log in"})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	data := gin.H{}
	if c.Query("expired") != "" {
		data["Error"] = "your session expired, please log in again"
	}
	Render(c, http.StatusOK, "auth/login.html", data)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.authenticator.Authenticate(email, password)
	if err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "invalid email or password"})
		return
	}

	if err := session.SetUser(c, user); err != nil {
		Render(c, http.StatusInternalServerError, "auth/login.html", gin.H{"Error": "something went wrong"})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session.Clear(c)
	c.Redirect(http.StatusFound, "/")
}
