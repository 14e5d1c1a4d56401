package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"user-access-api/internal/ratelimit"
	resp "user-access-api/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速（管理端）
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		resp.Abort(c, http.StatusTooManyRequests, "")
	}
}

// RateGate 角色分级限流 + 机器人/攻击拦截；需要在 Identify 之后
func RateGate(g *ratelimit.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := ratelimit.Input{
			Role:      "",
			Subject:   c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			RawQuery:  c.Request.URL.RawQuery,
		}
		if a := Actor(c); a != nil {
			in.Role = a.Role
			in.Subject = strconv.FormatUint(uint64(a.ID), 10)
		}

		v := g.Check(c.Request.Context(), in)
		switch v.Outcome {
		case ratelimit.OutcomeBot, ratelimit.OutcomeShield:
			resp.Abort(c, http.StatusForbidden, v.Message)
			return
		case ratelimit.OutcomeRate:
			if v.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(v.RetryAfter.Seconds()))))
			}
			resp.Abort(c, http.StatusTooManyRequests, v.Message)
			return
		}
		c.Next()
	}
}
