package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-access-api/internal/domain"
)

// Ceilings 每个角色在一个窗口内的上限
type Ceilings struct {
	Guest int
	User  int
	Admin int
}

// For 未知角色按 guest 处理
func (c Ceilings) For(role string) int {
	switch role {
	case domain.RoleAdmin:
		return c.Admin
	case domain.RoleUser:
		return c.User
	}
	return c.Guest
}

type Options struct {
	// Enabled 只在生产环境为 true，否则 Check 恒放行
	Enabled     bool
	Rule        string
	Window      time.Duration
	Ceilings    Ceilings
	AllowAgents []string
	Decider     Decider
	Logger      *zap.Logger
}

// Input 从请求里取出的字段
type Input struct {
	Role      string
	Subject   string
	UserAgent string
	Method    string
	Path      string
	RawQuery  string
}

type Verdict struct {
	Outcome    Outcome
	Message    string
	RetryAfter time.Duration
}

func (v Verdict) Denied() bool {
	return v.Outcome == OutcomeBot || v.Outcome == OutcomeShield || v.Outcome == OutcomeRate
}

type Gate struct {
	enabled  bool
	rule     string
	window   time.Duration
	ceilings Ceilings
	agents   []string
	decider  Decider
	log      *zap.Logger
}

func NewGate(o Options) *Gate {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Rule == "" {
		o.Rule = "api"
	}
	if o.Window <= 0 {
		o.Window = time.Minute
	}
	agents := append([]string(nil), DefaultAllowAgents...)
	for _, a := range o.AllowAgents {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			agents = append(agents, a)
		}
	}
	return &Gate{
		enabled:  o.Enabled,
		rule:     o.Rule,
		window:   o.Window,
		ceilings: o.Ceilings,
		agents:   agents,
		decider:  o.Decider,
		log:      o.Logger.Named("ratelimit"),
	}
}

func (g *Gate) Enabled() bool { return g.enabled }

// Check 决策服务出错时放行（fail-open），只记日志和指标
func (g *Gate) Check(ctx context.Context, in Input) Verdict {
	if !g.enabled || g.decider == nil {
		return Verdict{Outcome: OutcomeAllow}
	}
	role := in.Role
	if role != domain.RoleUser && role != domain.RoleAdmin {
		role = domain.RoleGuest
	}
	if AllowListed(in.UserAgent, g.agents) {
		decisionsTotal.WithLabelValues(string(OutcomeAllowList), role).Inc()
		return Verdict{Outcome: OutcomeAllow}
	}

	ceiling := g.ceilings.For(role)
	d, err := g.decider.Decide(ctx, Request{
		Rule:      g.rule,
		Role:      role,
		Subject:   in.Subject,
		UserAgent: in.UserAgent,
		Method:    in.Method,
		Path:      in.Path,
		RawQuery:  in.RawQuery,
		Ceiling:   ceiling,
		Window:    g.window,
	})
	if err != nil {
		decisionsTotal.WithLabelValues(string(OutcomeError), role).Inc()
		g.log.Error("decision failed, allowing request",
			zap.String("role", role), zap.String("subject", in.Subject), zap.Error(err))
		return Verdict{Outcome: OutcomeAllow}
	}
	decisionsTotal.WithLabelValues(string(d.Outcome), role).Inc()

	v := Verdict{Outcome: d.Outcome, RetryAfter: d.RetryAfter}
	switch d.Outcome {
	case OutcomeBot:
		v.Message = "Automated traffic is not allowed"
	case OutcomeShield:
		v.Message = "Request blocked"
	case OutcomeRate:
		v.Message = RateMessage(role, ceiling, g.window)
	}
	if v.Denied() {
		g.log.Info("request denied",
			zap.String("outcome", string(d.Outcome)), zap.String("role", role), zap.String("subject", in.Subject))
	}
	return v
}

// RateMessage 例："Too many requests. Guests are limited to 5 requests per minute."
func RateMessage(role string, ceiling int, window time.Duration) string {
	who := "Guests"
	switch role {
	case domain.RoleUser:
		who = "Users"
	case domain.RoleAdmin:
		who = "Admins"
	}
	per := "minute"
	if window != time.Minute {
		per = window.String()
	}
	return fmt.Sprintf("Too many requests. %s are limited to %d requests per %s.", who, ceiling, per)
}
