package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-access-api/internal/domain"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"

type recordingDecider struct {
	reqs []Request
	err  error
	out  Decision
}

func (d *recordingDecider) Decide(_ context.Context, req Request) (Decision, error) {
	d.reqs = append(d.reqs, req)
	return d.out, d.err
}

func newGate(t *testing.T, enabled bool, d Decider) *Gate {
	return NewGate(Options{
		Enabled:  enabled,
		Rule:     "api",
		Window:   time.Minute,
		Ceilings: Ceilings{Guest: 5, User: 10, Admin: 20},
		Decider:  d,
		Logger:   zaptest.NewLogger(t),
	})
}

func TestGate_DisabledOutsideProduction(t *testing.T) {
	d := &recordingDecider{out: Decision{Outcome: OutcomeRate}}
	v := newGate(t, false, d).Check(context.Background(), Input{UserAgent: ""})
	assert.False(t, v.Denied())
	assert.Empty(t, d.reqs)
}

func TestGate_AllowListSkipsDecider(t *testing.T) {
	d := &recordingDecider{out: Decision{Outcome: OutcomeRate}}
	v := newGate(t, true, d).Check(context.Background(), Input{UserAgent: "PostmanRuntime/7.36"})
	assert.False(t, v.Denied())
	assert.Empty(t, d.reqs)
}

func TestGate_ExtraAllowAgents(t *testing.T) {
	d := &recordingDecider{out: Decision{Outcome: OutcomeRate}}
	g := NewGate(Options{Enabled: true, Decider: d, AllowAgents: []string{" Smoke-Runner "}})
	assert.False(t, g.Check(context.Background(), Input{UserAgent: "smoke-runner/1.0"}).Denied())
}

func TestGate_CeilingPerRole(t *testing.T) {
	d := &recordingDecider{out: Decision{Outcome: OutcomeAllow}}
	g := newGate(t, true, d)
	ctx := context.Background()

	g.Check(ctx, Input{Role: "", Subject: "1.2.3.4", UserAgent: browserUA})
	g.Check(ctx, Input{Role: domain.RoleUser, Subject: "7", UserAgent: browserUA})
	g.Check(ctx, Input{Role: domain.RoleAdmin, Subject: "1", UserAgent: browserUA})
	g.Check(ctx, Input{Role: "superuser", Subject: "9", UserAgent: browserUA})

	require.Len(t, d.reqs, 4)
	assert.Equal(t, 5, d.reqs[0].Ceiling)
	assert.Equal(t, "rl:api:guest:1.2.3.4", d.reqs[0].Key())
	assert.Equal(t, 10, d.reqs[1].Ceiling)
	assert.Equal(t, "rl:api:user:7", d.reqs[1].Key())
	assert.Equal(t, 20, d.reqs[2].Ceiling)
	assert.Equal(t, 5, d.reqs[3].Ceiling)
	assert.Equal(t, domain.RoleGuest, d.reqs[3].Role)
}

func TestGate_FailOpen(t *testing.T) {
	d := &recordingDecider{err: errors.New("redis: connection refused")}
	v := newGate(t, true, d).Check(context.Background(), Input{Subject: "1.2.3.4", UserAgent: browserUA})
	assert.Equal(t, OutcomeAllow, v.Outcome)
	assert.False(t, v.Denied())
}

func TestGate_RateMessage(t *testing.T) {
	d := &recordingDecider{out: Decision{Outcome: OutcomeRate, RetryAfter: 12 * time.Second}}
	v := newGate(t, true, d).Check(context.Background(), Input{Subject: "1.2.3.4", UserAgent: browserUA})
	require.True(t, v.Denied())
	assert.Equal(t, "Too many requests. Guests are limited to 5 requests per minute.", v.Message)
	assert.Equal(t, 12*time.Second, v.RetryAfter)
}

func TestEngine_GuestSixthRequestLimited(t *testing.T) {
	g := newGate(t, true, NewEngine(NewMemoryWindow()))
	ctx := context.Background()
	in := Input{Subject: "10.0.0.1", UserAgent: browserUA, Method: "GET", Path: "/users"}

	for i := 0; i < 5; i++ {
		assert.False(t, g.Check(ctx, in).Denied(), "request %d", i+1)
	}
	v := g.Check(ctx, in)
	assert.Equal(t, OutcomeRate, v.Outcome)

	// 另一个访客有自己的窗口
	in.Subject = "10.0.0.2"
	assert.False(t, g.Check(ctx, in).Denied())
}

func TestEngine_Classifiers(t *testing.T) {
	e := NewEngine(NewMemoryWindow())
	ctx := context.Background()

	d, err := e.Decide(ctx, Request{UserAgent: "Googlebot/2.1", Ceiling: 5, Window: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, OutcomeBot, d.Outcome)

	d, err = e.Decide(ctx, Request{UserAgent: browserUA, Method: "GET", Path: "/../etc/passwd", Ceiling: 5, Window: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, OutcomeShield, d.Outcome)
}

type brokenWindow struct{}

func (brokenWindow) Allow(context.Context, string, int, time.Duration) (bool, time.Duration, error) {
	return false, 0, errors.New("down")
}

func TestEngine_WindowErrorPropagates(t *testing.T) {
	_, err := NewEngine(brokenWindow{}).Decide(context.Background(), Request{UserAgent: browserUA, Ceiling: 5, Window: time.Minute})
	assert.Error(t, err)
}
