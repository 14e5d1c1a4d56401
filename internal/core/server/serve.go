package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Serve 异步启动，收到 SIGINT/SIGTERM 后优雅关闭；启动失败直接 Fatal
func Serve(srv *http.Server, l *zap.Logger, name string, grace time.Duration) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal(name+" start FAILED", zap.Error(err))
		}
	}()
	l.Info(name+" started SUCCESS", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Warn(name+" shutdown", zap.Error(err))
	}
	l.Info(name + " stopped gracefully")
}
