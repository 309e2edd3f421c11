package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumbledor90/lumi-auctions-webapp/internal/auctionerrors"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/auth"
	model "github.com/dumbledor90/lumi-auctions-webapp/internal/models"
	"github.com/dumbledor90/lumi-auctions-webapp/services/auction/helpers"
	"github.com/dumbledor90/lumi-auctions-webapp/utils"
)

type UserServiceInterface interface {
	Register(ctx context.Context, username, email, password, confirmation string) (model.User, error)
	Login(ctx context.Context, username, password string) (model.User, error)
}

// AuthHandler serves the login, logout, and registration pages and issues
// session cookies.
type AuthHandler struct {
	service       UserServiceInterface
	sessionSecret []byte
	sessionTTL    time.Duration
}

func NewAuthHandler(service UserServiceInterface, sessionSecret []byte, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		service:       service,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}
}

// startSession mints a session token for the user and attaches the cookie.
func (h *AuthHandler) startSession(c *gin.Context, u model.User) error {
	token, err := auth.GenerateToken(u.UserID, u.Username, h.sessionSecret, h.sessionTTL)
	if err != nil {
		return err
	}
	helpers.SetSessionCookie(c, token, h.sessionTTL)
	return nil
}

// ShowLoginHandler handles GET /login
func (h *AuthHandler) ShowLoginHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// LoginHandler handles POST /login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginForm
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{"Message": "Invalid username and/or password."})
		return
	}

	u, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrInvalidCredentials) {
			c.HTML(http.StatusOK, "login.html", gin.H{
				"Message":  "Invalid username and/or password.",
				"Username": req.Username,
			})
			return
		}
		helpers.RenderError(c, "LoginHandler", err)
		return
	}

	if err := h.startSession(c, u); err != nil {
		helpers.RenderError(c, "LoginHandler", err)
		return
	}

	helpers.LogSuccess("LoginHandler", "user logged in", map[string]any{
		"user_id":  u.UserID,
		"username": u.Username,
	})
	c.Redirect(http.StatusSeeOther, "/")
}

// LogoutHandler handles GET /logout
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	helpers.ClearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowRegisterHandler handles GET /register
func (h *AuthHandler) ShowRegisterHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

// RegisterHandler handles POST /register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterForm
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusOK, "register.html", gin.H{"Message": "Invalid form submission."})
		return
	}

	u, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Confirmation)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUsernameTaken) {
			c.HTML(http.StatusOK, "register.html", gin.H{
				"Message":  "Username already taken.",
				"Username": req.Username,
				"Email":    req.Email,
			})
			return
		}
		if fieldErrs, ok := auctionerrors.AsFieldErrors(err); ok {
			message := ""
			if _, mismatched := fieldErrs["confirmation"]; mismatched {
				message = "Passwords must match."
			}
			c.HTML(http.StatusOK, "register.html", gin.H{
				"Message":  message,
				"Errors":   fieldErrs,
				"Username": req.Username,
				"Email":    req.Email,
			})
			return
		}
		helpers.RenderError(c, "RegisterHandler", err)
		return
	}

	// A freshly registered user is logged in right away.
	if err := h.startSession(c, u); err != nil {
		helpers.RenderError(c, "RegisterHandler", err)
		return
	}

	utils.Info("RegisterHandler: user registered", map[string]any{
		"user_id":  u.UserID,
		"username": u.Username,
	})
	c.Redirect(http.StatusSeeOther, "/")
}
