package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"user-access-api/internal/core/config"
	"user-access-api/internal/domain"
	"user-access-api/pkg/utils"
)

func testConfig(t *testing.T) *config.Config {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := config.Load(t.TempDir() + "/missing.yaml")
	require.NoError(t, err)
	cfg.DB.DSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg.DB.MaxOpenConns = 1
	cfg.DB.LogLevel = "silent"
	return cfg
}

func TestNew_AndBootstrap(t *testing.T) {
	utils.PasswordCost = bcrypt.MinCost
	cfg := testConfig(t)
	cfg.Bootstrap.Email = "Root@Example.com"
	cfg.Bootstrap.Password = "secret123"

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Deps.Gate.Enabled())

	ctx := context.Background()
	require.NoError(t, a.Bootstrap(ctx))
	require.NoError(t, a.Bootstrap(ctx))

	users, total, err := a.Deps.Users.Search(ctx, "root", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
	assert.Equal(t, "root@example.com", users[0].Email)
}

func TestNew_UnreachableRedisDegrades(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.RateLimit.Backend = "redis"
	cfg.App.Env = config.EnvProduction
	cfg.JWT.Secret = "prod-secret"

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()
	assert.True(t, a.Deps.Gate.Enabled())
}
