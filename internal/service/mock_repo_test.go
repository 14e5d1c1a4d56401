package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"user-access-api/internal/domain"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *mockRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	us, _ := args.Get(0).([]domain.User)
	return us, args.Error(1)
}

func (m *mockRepo) Search(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	args := m.Called(ctx, q, offset, limit)
	us, _ := args.Get(0).([]domain.User)
	return us, args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) Update(ctx context.Context, id uint, p domain.UserPatch) error {
	return m.Called(ctx, id, p).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}
