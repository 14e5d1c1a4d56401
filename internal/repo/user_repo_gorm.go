package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"user-access-api/internal/domain"
	"user-access-api/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Migrate() error { return r.db.AutoMigrate(&user.UserModel{}) }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	m := user.FromDomain(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrEmailConflict
		}
		return err
	}
	*u = *m.ToDomain()
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).First(&m, "email = ?", domain.NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// List 全量返回，不分页；投影里没有密码哈希
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var ms []user.UserModel
	if err := r.db.WithContext(ctx).Select(user.PublicColumns).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return toDomainList(ms), nil
}

// likeEscaper 转义 LIKE 通配符；'!' 在 mysql/postgres/sqlite 的字面量里都不需要再转义
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search 管理端：按 email/name 模糊搜 + 分页
func (r *UserRepo) Search(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&user.UserModel{})
	if s := strings.TrimSpace(q); s != "" {
		like := "%" + likeEscaper.Replace(s) + "%"
		tx = tx.Where("email LIKE ? ESCAPE '!' OR name LIKE ? ESCAPE '!'", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []user.UserModel
	if err := tx.Select(user.PublicColumns).Order("created_at DESC").Offset(offset).Limit(limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return toDomainList(ms), total, nil
}

// Update 单条 UPDATE；email 唯一性交给唯一索引，冲突翻译成 ErrEmailConflict
func (r *UserRepo) Update(ctx context.Context, id uint, p domain.UserPatch) error {
	cols := map[string]any{"updated_at": p.UpdatedAt}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Email != nil {
		cols["email"] = domain.NormalizeEmail(*p.Email)
	}
	if p.PasswordHash != nil {
		cols["password_hash"] = *p.PasswordHash
	}
	if p.Role != nil {
		cols["role"] = *p.Role
	}
	res := r.db.WithContext(ctx).Model(&user.UserModel{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		if isDupKey(res.Error) {
			return domain.ErrEmailConflict
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&user.UserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDomainList(ms []user.UserModel) []domain.User {
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 驱动未开启 TranslateError 时兜底按文案判断
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
