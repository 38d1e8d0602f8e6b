package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/services"
)

const (
	CtxUser       = "user"
	SessionCookie = "session_token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// TokenFromRequest lấy token từ cookie session_token, sau đó tới Authorization: Bearer <token>.
func TokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// AuthJWT xác minh token + phiên phía server, lấy user và inject vào context.
func AuthJWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			var se *services.Error
			if errors.As(err, &se) {
				c.AbortWithStatusJSON(se.Status(), gin.H{"error": se.Message})
				return
			}
			c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		c.Set(CtxUser, user)
		c.Next()
	}
}

// RequireAdmin chặn các route chỉ dành cho admin
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if u.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": services.ErrAdminRequired.Message})
			return
		}
		c.Next()
	}
}

// CurrentUser trả về user do AuthJWT nạp, nil nếu route không qua AuthJWT.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
