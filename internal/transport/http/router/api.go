package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-access-api/internal/core/auth"
	"user-access-api/internal/core/config"
	"user-access-api/internal/core/server"
	"user-access-api/internal/ratelimit"
	"user-access-api/internal/service"
	"user-access-api/internal/transport/http/handler"
	mdw "user-access-api/internal/transport/http/middleware"
)

// Deps 两个引擎共用的依赖
type Deps struct {
	Log   *zap.Logger
	Cfg   *config.Config
	JWT   *auth.JWTer
	Users *service.UserService
	Auth  *service.AuthService
	Gate  *ratelimit.Gate // 只有用户端用
}

func mode(cfg *config.Config) string {
	if gin.Mode() == gin.TestMode {
		return gin.TestMode
	}
	if cfg.IsProduction() {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}

// common 请求 id、指标、访问日志、恢复、超时、并发、包体上限
func common(r *gin.Engine, d Deps) {
	h := d.Cfg.App.HTTP
	r.Use(
		mdw.RequestID(),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		mdw.Recovery(d.Log),
	)
	// 0 表示不限制
	if h.RequestTimeoutSec > 0 {
		r.Use(mdw.Timeout(time.Duration(h.RequestTimeoutSec) * time.Second))
	}
	if h.MaxConcurrency > 0 {
		r.Use(mdw.ConcurrencyLimit(h.MaxConcurrency))
	}
	if h.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(h.MaxBodyBytes))
	}

	// 健康检查、指标不过限流
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewRouter(server.Options{
		Name:         d.Cfg.App.Name,
		Mode:         mode(d.Cfg),
		AllowOrigins: d.Cfg.CORS.AllowOrigins,
	})
	common(r, d)

	// 先解析身份（限流按角色分级），再过限流网关
	api := r.Group("", mdw.Identify(d.JWT, d.Cfg.Cookie.Name), mdw.RateGate(d.Gate))

	handler.NewUserHandler(d.Users, d.Log).Mount(api)
	handler.NewAuthHandler(d.Auth, d.Users, handler.CookieOptions{
		Name:   d.Cfg.Cookie.Name,
		MaxAge: d.Cfg.Cookie.MaxAgeMin * 60,
		Domain: d.Cfg.Cookie.Domain,
		Secure: d.Cfg.IsProduction(),
	}, d.Log).Mount(api.Group("/auth"))

	return r
}
