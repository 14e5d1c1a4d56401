package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvProduction = "production"

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxBodyBytes      int64
	MaxConcurrency    int64
}

type AdminHTTP struct {
	Host string
	Port int
	// 后台全局令牌桶
	RPS   float64
	Burst int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type FileRotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  FileRotate
}

type JWT struct {
	Secret string
	Issuer string
	TTLMin int
}

type Cookie struct {
	Name      string
	MaxAgeMin int
	Domain    string
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type RateLimit struct {
	Rule      string
	WindowSec int
	Backend   string // redis | memory
	Guest     int
	User      int
	Admin     int
	// 额外放行的客户端标识（追加到内置列表）
	AllowAgents []string `mapstructure:"allow_agents"`
}

type CORS struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type Bootstrap struct {
	Email    string
	Name     string
	Password string
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	Cookie    Cookie
	DB        DB
	Redis     Redis     `mapstructure:"redis"`
	RateLimit RateLimit `mapstructure:"ratelimit"`
	CORS      CORS      `mapstructure:"cors"`
	Bootstrap Bootstrap
}

// IsProduction 部署模式唯一判断入口；限流网关和 cookie secure 都从这里取
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.App.Env), EnvProduction)
}

func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == defaultSecret) {
		return errors.New("jwt.secret must be set in production")
	}
	if c.JWT.TTLMin <= 0 {
		return errors.New("jwt.ttlmin must be positive")
	}
	if c.RateLimit.WindowSec <= 0 {
		return errors.New("ratelimit.windowsec must be positive")
	}
	return nil
}

func (r RateLimit) Window() time.Duration { return time.Duration(r.WindowSec) * time.Second }

const defaultSecret = "dev-secret-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "user-access-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.maxbodybytes", 1<<20)
	v.SetDefault("app.http.maxconcurrency", 300)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("app.admin.rps", 200)
	v.SetDefault("app.admin.burst", 400)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", defaultSecret)
	v.SetDefault("jwt.issuer", "user-access-api")
	v.SetDefault("jwt.ttlmin", 24*60) // 令牌 1 天

	v.SetDefault("cookie.name", "token")
	v.SetDefault("cookie.maxagemin", 15) // cookie 只活 15 分钟
	v.SetDefault("cookie.domain", "")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:users.db?_pragma=busy_timeout(5000)")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ratelimit.rule", "api")
	v.SetDefault("ratelimit.windowsec", 60)
	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.guest", 5)
	v.SetDefault("ratelimit.user", 10)
	v.SetDefault("ratelimit.admin", 20)
	v.SetDefault("ratelimit.allow_agents", []string{})

	v.SetDefault("cors.allow_origins", []string{})

	v.SetDefault("bootstrap.email", "")
	v.SetDefault("bootstrap.name", "admin")
	v.SetDefault("bootstrap.password", "")
}

// 常见的无前缀环境变量名
var aliases = map[string][]string{
	"app.env":    {"APP_ENV", "ENV"},
	"jwt.secret": {"JWT_SECRET"},
	"db.dsn":     {"DATABASE_URL"},
	"log.level":  {"LOG_LEVEL"},
	"redis.addr": {"REDIS_ADDR"},
}

// Load 读取 YAML（可选）+ APP_ 前缀环境变量；文件不存在时只用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range aliases {
		// BindEnv 的第一个名字优先
		_ = v.BindEnv(append([]string{key, "APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)...)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
