package ratelimit

import (
	"context"
	"fmt"
	"time"
)

type Outcome string

const (
	OutcomeAllow  Outcome = "allow"
	OutcomeBot    Outcome = "bot"
	OutcomeShield Outcome = "shield"
	OutcomeRate   Outcome = "rate"
	// 下面两个只出现在指标里
	OutcomeError     Outcome = "error"
	OutcomeAllowList Outcome = "allowlist"
)

// Request 交给决策服务的一次判定
type Request struct {
	Rule      string
	Role      string
	Subject   string // 已登录为用户 id，否则为客户端 IP
	UserAgent string
	Method    string
	Path      string
	RawQuery  string
	Ceiling   int
	Window    time.Duration
}

func (r Request) Key() string { return Key(r.Rule, r.Role, r.Subject) }

// Key 窗口键：rl:<rule>:<role>:<subject>
func Key(rule, role, subject string) string {
	return fmt.Sprintf("rl:%s:%s:%s", rule, role, subject)
}

type Decision struct {
	Outcome    Outcome
	RetryAfter time.Duration
}

// Decider 滑动窗口 + 机器人/攻击特征判定
type Decider interface {
	Decide(ctx context.Context, req Request) (Decision, error)
}

// Window 滑动窗口存储；err 只表示存储本身故障
type Window interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (ok bool, retryAfter time.Duration, err error)
}

// Engine 默认的 Decider：先分类，再计数
type Engine struct {
	window Window
}

func NewEngine(w Window) *Engine { return &Engine{window: w} }

func (e *Engine) Decide(ctx context.Context, req Request) (Decision, error) {
	if IsBot(req.UserAgent) {
		return Decision{Outcome: OutcomeBot}, nil
	}
	if IsShielded(req.Method, req.Path, req.RawQuery) {
		return Decision{Outcome: OutcomeShield}, nil
	}
	ok, retry, err := e.window.Allow(ctx, req.Key(), req.Ceiling, req.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("window %s: %w", req.Key(), err)
	}
	if !ok {
		return Decision{Outcome: OutcomeRate, RetryAfter: retry}, nil
	}
	return Decision{Outcome: OutcomeAllow}, nil
}
