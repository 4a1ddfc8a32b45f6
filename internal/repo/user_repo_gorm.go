package repo

import (
	"context"
	"errors"
	"fmt"

	"tienda-api/internal/core/database"
	"tienda-api/internal/domain"
)

// 列表只查公开字段，不取 password
var userColumns = []string{"id", "nombre", "email", "edad", "activo", "fecha_registro"}

type UserRepo struct{ store *database.Store }

func NewUserRepo(store *database.Store) *UserRepo { return &UserRepo{store: store} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.store.DB(ctx).Create(u).Error; err != nil {
		err = database.MapError(err)
		if database.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %v", domain.ErrEmailTaken, err)
		}
		return fmt.Errorf("UserRepo.Create: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.store.DB(ctx).Select(userColumns).Where("id = ?", id).Take(&u).Error
	if err != nil {
		return nil, notFound(err, "UserRepo.FindByID")
	}
	return &u, nil
}

// FindByEmail 登录用，包含密码哈希
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.store.DB(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		return nil, notFound(err, "UserRepo.FindByEmail")
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	q := r.store.DB(ctx).Model(&domain.User{}).Select(userColumns)
	if f.Active != nil {
		q = q.Where("activo = ?", *f.Active)
	}
	users := make([]domain.User, 0, f.Page.Limit)
	err := q.Order("fecha_registro DESC").Order("id DESC").
		Limit(f.Page.Limit).Offset(f.Page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("UserRepo.List: %w", database.MapError(err))
	}
	return users, nil
}

// Update 返回受影响行数；MySQL 对未变化的行返回 0，调用方需再确认存在性
func (r *UserRepo) Update(ctx context.Context, id int64, ch domain.UserChanges) (int64, error) {
	res := r.store.DB(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"nombre": ch.Name,
		"email":  ch.Email,
		"edad":   ch.Age,
	})
	if res.Error != nil {
		err := database.MapError(res.Error)
		if database.IsDuplicateKey(err) {
			return 0, fmt.Errorf("%w: %v", domain.ErrEmailTaken, err)
		}
		return 0, fmt.Errorf("UserRepo.Update: %w", err)
	}
	return res.RowsAffected, nil
}

func (r *UserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.store.DB(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("UserRepo.Exists: %w", database.MapError(err))
	}
	return n > 0, nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.store.DB(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return 0, fmt.Errorf("UserRepo.Delete: %w", database.MapError(res.Error))
	}
	return res.RowsAffected, nil
}

func notFound(err error, op string) error {
	err = database.MapError(err)
	if errors.Is(err, database.ErrNotFound) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
