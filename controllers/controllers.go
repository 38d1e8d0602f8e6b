// Package controllers chứa gin handler: bind request, gọi service, map lỗi sang HTTP.
package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/middleware"
	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/services"
)

// HealthCheck là một phụ thuộc cần ping trong /health (database, redis...).
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Options struct {
	CookieSecure bool
	SessionTTL   time.Duration
	HealthChecks []HealthCheck
}

type Handlers struct {
	svc  *services.Services
	log  *slog.Logger
	opts Options
}

func New(svc *services.Services, log *slog.Logger, opts Options) *Handlers {
	return &Handlers{svc: svc, log: log, opts: opts}
}

// respondError: *services.Error trả message của nó, lỗi khác trả 500 "Server error"
// và được gắn vào context để RequestLogger ghi lại.
func respondError(c *gin.Context, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		c.JSON(se.Status(), gin.H{"error": se.Message})
		return
	}
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}
