package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"user-access-api/internal/domain"
)

func init() {
	// 字段错误里用 json 名而不是 Go 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		// bcrypt 只接受 72 字节以内的密码，max 按字符计数拦不住多字节输入
		_ = v.RegisterValidation("maxbytes", maxBytes)
	}
}

func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

func jsonFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Resolve 错误 -> 状态码 + 信封；未知错误返回 500 且不暴露原因
func Resolve(err error) (int, Resp) {
	var ve validator.ValidationErrors
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &ve):
		out := Error(CodeBadRequest, "Validation failed")
		for _, fe := range ve {
			out.Errors = append(out.Errors, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return CodeBadRequest, out
	case errors.As(err, &mbe):
		return CodeTooLarge, Error(CodeTooLarge, "")
	case errors.As(err, &se), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return CodeBadRequest, Error(CodeBadRequest, "Malformed JSON body")
	case errors.As(err, &te):
		out := Error(CodeBadRequest, "Validation failed")
		out.Errors = []FieldError{{Field: te.Field, Message: fmt.Sprintf("%s must be a %s", te.Field, te.Type)}}
		return CodeBadRequest, out
	case errors.Is(err, domain.ErrValidation):
		return CodeBadRequest, Error(CodeBadRequest, capitalize(err.Error()))
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return CodeUnauthorized, Error(CodeUnauthorized, "Authentication required")
	case errors.Is(err, domain.ErrInvalidToken):
		return CodeUnauthorized, Error(CodeUnauthorized, "Authentication failed")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return CodeUnauthorized, Error(CodeUnauthorized, "Invalid email or password")
	case errors.Is(err, domain.ErrNotOwnerOrAdmin):
		return CodeForbidden, Error(CodeForbidden, "You can only modify your own profile unless you are an admin")
	case errors.Is(err, domain.ErrRoleChangeNeedAdmin):
		return CodeForbidden, Error(CodeForbidden, "Only admins can change user roles")
	case errors.Is(err, domain.ErrForbidden):
		return CodeForbidden, Error(CodeForbidden, "")
	case errors.Is(err, domain.ErrNotFound):
		return CodeNotFound, Error(CodeNotFound, "User not found")
	case errors.Is(err, domain.ErrEmailConflict):
		return CodeConflict, Error(CodeConflict, "Email already in use")
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout, Error(CodeTimeout, "")
	}
	return CodeServerError, Error(CodeServerError, "")
}

// Fail 写错误响应；只有 500 才打 error 日志
func Fail(c *gin.Context, l *zap.Logger, err error) {
	code, out := Resolve(err)
	if code == CodeServerError && l != nil {
		l.Error("unhandled error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(code, out)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
