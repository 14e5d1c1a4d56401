package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"user-access-api/internal/core/server"
	"user-access-api/internal/domain"
	"user-access-api/internal/transport/http/handler"
	mdw "user-access-api/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	r := server.NewRouter(server.Options{
		Name:         d.Cfg.App.Name + "-admin",
		Mode:         mode(d.Cfg),
		AllowOrigins: d.Cfg.CORS.AllowOrigins,
	})
	r.Use(mdw.RateLimit(rate.Limit(d.Cfg.App.Admin.RPS), d.Cfg.App.Admin.Burst))
	common(r, d)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1",
		mdw.Identify(d.JWT, d.Cfg.Cookie.Name),
		mdw.RequireAuth(d.Log),
		mdw.RequireRole(d.Log, domain.RoleAdmin),
	)
	handler.NewAdminHandler(d.Users, d.Log).Mount(admin)

	return r
}
