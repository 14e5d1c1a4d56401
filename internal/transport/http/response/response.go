package response

import (
	"github.com/gin-gonic/gin"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Resp 错误信封
type Resp struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{Code: code, Message: msg}
}

// Abort 中间件里直接结束请求
func Abort(c *gin.Context, code int, customMsg string) {
	c.AbortWithStatusJSON(code, Error(code, customMsg))
}

// OK 成功响应：{"message": ..., <payload>}
func OK(c *gin.Context, message string, payload gin.H) {
	c.JSON(CodeOK, body(message, payload))
}

func Created(c *gin.Context, message string, payload gin.H) {
	c.JSON(CodeCreated, body(message, payload))
}

func body(message string, payload gin.H) gin.H {
	out := gin.H{"message": message}
	for k, v := range payload {
		out[k] = v
	}
	return out
}
