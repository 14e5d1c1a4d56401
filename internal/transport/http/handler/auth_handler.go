package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-access-api/internal/domain"
	"user-access-api/internal/service"
	mdw "user-access-api/internal/transport/http/middleware"
)

// CookieOptions 令牌 cookie；Secure 只在生产环境打开
type CookieOptions struct {
	Name   string
	MaxAge int // 秒
	Domain string
	Secure bool
}

type AuthHandler struct {
	auth   *service.AuthService
	users  *service.UserService
	cookie CookieOptions
	log    *zap.Logger
}

func NewAuthHandler(a *service.AuthService, users *service.UserService, co CookieOptions, l *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: a, users: users, cookie: co, log: l}
}

type loginReq struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) Mount(g *gin.RouterGroup) {
	RegisterAction(g, h.log, Action[loginReq, *domain.User]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  BindJSON,
		Message: "Login successful",
		Key:     "user",
		Handler: func(c *gin.Context, in *loginReq) (*domain.User, error) {
			tok, u, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return nil, err
			}
			h.setCookie(c, tok, h.cookie.MaxAge)
			return u, nil
		},
	})

	RegisterAction(g, h.log, Action[struct{}, gin.H]{
		Method:  http.MethodPost,
		Path:    "/logout",
		Binder:  BindNone,
		Message: "Logged out",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			h.setCookie(c, "", -1)
			return gin.H{}, nil
		},
	})

	RegisterAction(g, h.log, Action[struct{}, *domain.User]{
		Method:  http.MethodGet,
		Path:    "/me",
		Binder:  BindNone,
		Message: "User retrieved successfully",
		Key:     "user",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.users.Get(c.Request.Context(), mdw.Actor(c).ID)
		},
	}, mdw.RequireAuth(h.log))
}
