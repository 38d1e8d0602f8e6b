package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/middleware"
	"github.com/vnkhanh/bizsim-server/services"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	res, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password, loginMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeSession(c, res)
}

// POST /api/auth/google
func (h *Handlers) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idToken is required"})
		return
	}

	res, err := h.svc.Auth.GoogleLogin(c.Request.Context(), req.IDToken, loginMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeSession(c, res)
}

// POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.svc.Auth.Logout(c.Request.Context(), middleware.TokenFromRequest(c)); err != nil {
		respondError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.opts.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *Handlers) writeSession(c *gin.Context, res *services.LoginResult) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, res.Token, int(h.opts.SessionTTL.Seconds()), "/", "", h.opts.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"token":     res.Token,
		"expiresAt": res.Session.ExpiresAt,
		"user":      res.User,
	})
}

func loginMeta(c *gin.Context) services.LoginMeta {
	return services.LoginMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
