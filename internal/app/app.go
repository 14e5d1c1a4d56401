// Package app 两个入口共用的装配
package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-access-api/internal/core/auth"
	"user-access-api/internal/core/cache"
	"user-access-api/internal/core/config"
	"user-access-api/internal/core/database"
	"user-access-api/internal/ratelimit"
	"user-access-api/internal/repo"
	"user-access-api/internal/service"
	"user-access-api/internal/transport/http/router"
)

type App struct {
	Deps    router.Deps
	DB      *gorm.DB
	cleanup []func()
}

// New 连接 DB（失败直接返回）、可选 Redis，组装服务
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		return nil, err
	}
	a := &App{DB: db}
	a.cleanup = append(a.cleanup, func() { _ = database.Close(db) })
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	userRepo := repo.NewUserRepo(db)
	if cfg.DB.AutoMigrate {
		if err := userRepo.Migrate(); err != nil {
			a.Close()
			return nil, err
		}
		l.Info("automigrate done")
	}

	// Redis 可选：连不上就退化成无缓存 + 内存窗口
	c := cache.New(nil)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			l.Warn("redis unavailable, running without cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			c = cache.New(rdb)
			a.cleanup = append(a.cleanup, func() { _ = rdb.Close() })
			l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.TTLMin) * time.Minute,
	}
	users := service.NewUserService(userRepo, c, l)

	a.Deps = router.Deps{
		Log:   l,
		Cfg:   cfg,
		JWT:   jwter,
		Users: users,
		Auth:  service.NewAuthService(userRepo, jwter, l),
		Gate:  NewGate(cfg, c, l),
	}
	return a, nil
}

// NewGate 生产环境才启用；backend=redis 且 Redis 可用时多实例共享窗口
func NewGate(cfg *config.Config, c *cache.Cache, l *zap.Logger) *ratelimit.Gate {
	var w ratelimit.Window = ratelimit.NewMemoryWindow()
	if cfg.RateLimit.Backend == "redis" {
		if c != nil && c.RDB != nil {
			w = ratelimit.NewRedisWindow(c.RDB)
		} else {
			l.Warn("ratelimit backend redis requested but redis is not configured, using memory")
		}
	}
	return ratelimit.NewGate(ratelimit.Options{
		Enabled: cfg.IsProduction(),
		Rule:    cfg.RateLimit.Rule,
		Window:  cfg.RateLimit.Window(),
		Ceilings: ratelimit.Ceilings{
			Guest: cfg.RateLimit.Guest,
			User:  cfg.RateLimit.User,
			Admin: cfg.RateLimit.Admin,
		},
		AllowAgents: cfg.RateLimit.AllowAgents,
		Decider:     ratelimit.NewEngine(w),
		Logger:      l,
	})
}

// Bootstrap 配了 bootstrap.email/password 才创建初始管理员，幂等
func (a *App) Bootstrap(ctx context.Context) error {
	b := a.Deps.Cfg.Bootstrap
	if b.Email == "" || b.Password == "" {
		return nil
	}
	created, err := a.Deps.Users.EnsureAdmin(ctx, b.Email, b.Name, b.Password)
	if err != nil {
		return err
	}
	if created {
		a.Deps.Log.Info("bootstrap admin created", zap.String("email", b.Email))
	}
	return nil
}

func (a *App) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}
