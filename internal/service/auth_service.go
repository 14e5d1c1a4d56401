package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"user-access-api/internal/core/auth"
	"user-access-api/internal/domain"
	"user-access-api/pkg/utils"
)

type AuthService struct {
	repo domain.UserRepository
	jwt  *auth.JWTer
	log  *zap.Logger
}

func NewAuthService(repo domain.UserRepository, j *auth.JWTer, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{repo: repo, jwt: j, log: l.Named("auth_service")}
}

// Login 校验邮箱密码并签发令牌；账号不存在和密码错误对外不区分
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		s.log.Error("login lookup failed", zap.Error(err))
		return "", nil, err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		s.log.Info("login rejected", zap.Uint("user_id", u.ID))
		return "", nil, domain.ErrInvalidCredentials
	}
	tok, err := s.jwt.Issue(domain.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}
