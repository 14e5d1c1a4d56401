package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"user-access-api/internal/app"
	"user-access-api/internal/core/config"
	"user-access-api/internal/core/logger"
	"user-access-api/internal/core/server"
	"user-access-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	// 依赖（DB 失败直接 Fatal）
	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("init failed", zap.Error(err))
	}
	defer a.Close()

	// 路由（用户端）
	r := router.NewAPIEngine(a.Deps)

	// HTTP Server
	h := cfg.App.HTTP
	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
		logger.ToStdLogger(log, zapcore.WarnLevel),
	)

	// 启动日志
	host4human := h.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(h.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.Bool("rate_gate", a.Deps.Gate.Enabled()),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
	)

	server.Serve(srv, log, "user api", 10*time.Second)
}
