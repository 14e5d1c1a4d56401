package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-access-api/internal/core/auth"
	"user-access-api/internal/domain"
	"user-access-api/pkg/utils"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := utils.HashPassword("secret1")
	require.NoError(t, err)

	repo := new(mockRepo)
	repo.On("FindByEmail", ctx, "ann@x.io").Return(&domain.User{ID: 5, Email: "ann@x.io", Role: domain.RoleAdmin, PasswordHash: hash}, nil)
	repo.On("FindByEmail", ctx, "nobody@x.io").Return(nil, domain.ErrNotFound)

	j := &auth.JWTer{Secret: []byte("s3cret"), Issuer: "test", TTL: time.Minute}
	svc := NewAuthService(repo, j, nil)

	tok, u, err := svc.Login(ctx, " ANN@x.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, uint(5), u.ID)

	claims, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Identity().Role)

	_, _, err = svc.Login(ctx, "ann@x.io", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@x.io", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
