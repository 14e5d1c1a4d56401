package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "user-access-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；声明长度超限直接 413，其余在绑定时由 MaxBytesReader 报错
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.CodeTooLarge, "")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
