package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-access-api/internal/core/auth"
	"user-access-api/internal/domain"
	resp "user-access-api/internal/transport/http/response"
)

const (
	keyActor     = "actor"
	keyAuthError = "auth_error"
)

// Identify 软校验：有令牌就解析，没有或无效都放行，交给 RequireAuth 决定
// cookie 优先，其次 Authorization: Bearer
func Identify(j *auth.JWTer, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := tokenFrom(c, cookieName)
		if tok == "" {
			c.Next()
			return
		}
		claims, err := j.Verify(tok)
		if err != nil {
			c.Set(keyAuthError, err)
			c.Next()
			return
		}
		c.Set(keyActor, claims.Identity())
		c.Next()
	}
}

func tokenFrom(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	ah := c.GetHeader("Authorization")
	if strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	}
	return ""
}

// Actor 当前请求的调用方，未登录为 nil
func Actor(c *gin.Context) *domain.Identity {
	if v, ok := c.Get(keyActor); ok {
		if id, ok := v.(*domain.Identity); ok {
			return id
		}
	}
	return nil
}

// RequireAuth 无令牌 401 Authentication required，令牌无效 401 Authentication failed
func RequireAuth(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Actor(c) != nil {
			c.Next()
			return
		}
		if _, bad := c.Get(keyAuthError); bad {
			resp.Fail(c, l, domain.ErrInvalidToken)
			return
		}
		resp.Fail(c, l, domain.ErrAuthenticationRequired)
	}
}

// RequireRole 必须放在 RequireAuth 之后
func RequireRole(l *zap.Logger, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a := Actor(c); a == nil || a.Role != role {
			resp.Fail(c, l, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}
