package domain

import (
	"context"
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	// RoleGuest 只用于限流分级，不会落库
	RoleGuest = "guest"
)

// ValidRole 可落库的角色
func ValidRole(r string) bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserChanges 部分更新的入参，nil 表示不修改
type UserChanges struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Email == nil && c.Password == nil && c.Role == nil
}

func (c UserChanges) ChangesRole() bool { return c.Role != nil }

// UserPatch 是真正写库的列集合（密码已哈希）
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *string
	UpdatedAt    time.Time
}

// Identity 从令牌里解出的调用方
type Identity struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (i *Identity) IsAdmin() bool { return i != nil && i.Role == RoleAdmin }

// NormalizeEmail 统一小写+去空白，唯一索引依赖它
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Search(ctx context.Context, q string, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, id uint, p UserPatch) error
	Delete(ctx context.Context, id uint) error
}
