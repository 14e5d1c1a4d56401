package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type respWriter struct {
	gin.ResponseWriter
	status int
	size   int
}

func (w *respWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *respWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = 200
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// AccessLog 每个请求一条摘要；5xx 记 error，其余 info；探活和指标路径不记
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	quiet := map[string]struct{}{"/health": {}, "/metrics": {}}

	// 敏感字段 key（query/form/body 中统一按 key）
	sensitiveKeys := map[string]struct{}{
		"password": {}, "pwd": {}, "token": {}, "authorization": {},
		"secret": {}, "client_secret": {}, "access_token": {},
	}

	mask := func(kv map[string][]string) map[string][]string {
		out := map[string][]string{}
		for k, v := range kv {
			lk := strings.ToLower(k)
			if _, ok := sensitiveKeys[lk]; ok {
				out[k] = []string{"****"}
			} else {
				out[k] = v
			}
		}
		return out
	}

	return func(c *gin.Context) {
		start := time.Now()
		w := &respWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if _, ok := quiet[c.FullPath()]; ok {
			return
		}
		q := mask(c.Request.URL.Query())
		status := c.Writer.Status()
		if w.status != 0 {
			status = w.status
		}
		uid := uint(0)
		if a := Actor(c); a != nil {
			uid = a.ID
		}
		lvl := zap.InfoLevel
		if status >= 500 {
			lvl = zap.ErrorLevel
		}
		// 打印摘要：method/path/status/latency/ip/ua/query/size
		l.Log(lvl, "HTTP",
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Uint("user_id", uid),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Any("query", q),
			zap.Int("size", w.size),
		)
	}
}
