package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-access-api/internal/domain"
	resp "user-access-api/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// Action 一行注册一个接口：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string
	Binder  Binder
	Status  int    // 默认 200
	Message string // 成功时的 message
	// Key 非空时响应为 {message, <Key>: out}；为空时 out 必须是 gin.H，直接合并
	Key     string
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 绑定 -> 执行 -> 统一错误映射
func RegisterAction[I any, O any](g gin.IRoutes, l *zap.Logger, a Action[I, O], mw ...gin.HandlerFunc) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			resp.Fail(c, l, bindErr)
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, l, err)
			return
		}

		payload := gin.H{}
		if a.Key != "" {
			payload[a.Key] = out
		} else if m, ok := any(out).(gin.H); ok {
			payload = m
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		if status == http.StatusCreated {
			resp.Created(c, a.Message, payload)
			return
		}
		resp.OK(c, a.Message, payload)
	}

	handlers := append(append([]gin.HandlerFunc{}, mw...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		g.GET(a.Path, handlers...)
	case http.MethodPut:
		g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		g.DELETE(a.Path, handlers...)
	default: // 默认 POST
		g.POST(a.Path, handlers...)
	}
}

// paramID 路径里的 :id，必须是正整数
func paramID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

var errInvalidID = domainValidation("invalid user id")

func domainValidation(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return domain.ErrValidation }
