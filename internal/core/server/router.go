package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	Name string
	Mode string // gin.DebugMode | gin.ReleaseMode | gin.TestMode
	// AllowOrigins 为空时放开所有来源但不带凭据
	AllowOrigins []string
}

func NewRouter(o Options) *gin.Engine {
	if o.Mode != "" {
		gin.SetMode(o.Mode)
	}
	r := gin.New()
	r.Use(cors.New(corsConfig(o.AllowOrigins)))
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	// cookie 鉴权需要带凭据，且不能配 *
	c.AllowOrigins = origins
	c.AllowCredentials = true
	c.MaxAge = 12 * time.Hour
	return c
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration, errLog *log.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20, // 1MB
		ErrorLog:          errLog,
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
