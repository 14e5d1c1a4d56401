package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"user-access-api/internal/core/cache"
	"user-access-api/internal/domain"
	"user-access-api/pkg/utils"
)

const userCacheTTL = 5 * time.Minute

type DeleteResult struct {
	ID uint `json:"id"`
}

type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type UserService struct {
	repo  domain.UserRepository
	cache *cache.Cache
	log   *zap.Logger
	now   func() time.Time
}

// NewUserService cache 可以为 nil
func NewUserService(repo domain.UserRepository, c *cache.Cache, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{repo: repo, cache: c, log: l.Named("user_service"), now: time.Now}
}

func cacheKey(id uint) string { return fmt.Sprintf("user:%d", id) }

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail("list", 0, err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	u, err := cache.GetOrLoadJSON(s.cache, ctx, cacheKey(id), userCacheTTL, func(ctx context.Context) (*domain.User, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, s.fail("get", id, err)
	}
	return u, nil
}

// Update 部分更新：密码先哈希，updated_at 总是刷新，email 冲突由唯一索引判定
func (s *UserService) Update(ctx context.Context, id uint, ch domain.UserChanges) (*domain.User, error) {
	cur, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail("update", id, err)
	}

	p := domain.UserPatch{Name: ch.Name, Role: ch.Role, UpdatedAt: s.now()}
	// 时钟精度不够时保证严格递增
	if !p.UpdatedAt.After(cur.UpdatedAt) {
		p.UpdatedAt = cur.UpdatedAt.Add(time.Millisecond)
	}
	if ch.Email != nil {
		email := domain.NormalizeEmail(*ch.Email)
		if email != cur.Email {
			p.Email = &email
		}
	}
	if ch.Password != nil {
		hash, err := utils.HashPassword(*ch.Password)
		if err != nil {
			return nil, s.fail("update", id, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		}
		p.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, id, p); err != nil {
		return nil, s.fail("update", id, err)
	}
	s.cache.Delete(ctx, cacheKey(id))

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail("update", id, err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, s.fail("delete", id, err)
	}
	s.cache.Delete(ctx, cacheKey(id))
	return &DeleteResult{ID: id}, nil
}

// Create 只给管理端和启动引导用
func (s *UserService) Create(ctx context.Context, in NewUser) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	u := &domain.User{
		Name:         in.Name,
		Email:        domain.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, s.fail("create", 0, err)
	}
	s.log.Info("user created", zap.Uint("user_id", u.ID), zap.String("role", u.Role))
	return u, nil
}

func (s *UserService) Search(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	users, total, err := s.repo.Search(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, s.fail("search", 0, err)
	}
	return users, total, nil
}

// EnsureAdmin 幂等：邮箱已存在就什么都不做
func (s *UserService) EnsureAdmin(ctx context.Context, email, name, password string) (bool, error) {
	email = domain.NormalizeEmail(email)
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, s.fail("ensure_admin", 0, err)
	}
	if _, err := s.Create(ctx, NewUser{Name: name, Email: email, Password: password, Role: domain.RoleAdmin}); err != nil {
		if errors.Is(err, domain.ErrEmailConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// fail 记录上下文后原样返回；预期内的结果不打 error
func (s *UserService) fail(op string, id uint, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if id != 0 {
		fields = append(fields, zap.Uint("user_id", id))
	}
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrEmailConflict), errors.Is(err, domain.ErrValidation):
		s.log.Info("user store rejected", fields...)
	default:
		s.log.Error("user store failed", fields...)
	}
	return err
}
