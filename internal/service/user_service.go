package service

import (
	"context"
	"errors"
	"fmt"

	"tienda-api/internal/domain"
	"tienda-api/internal/validation"
	"tienda-api/pkg/utils"
)

type UserService struct {
	repo       domain.UserRepository
	bcryptCost int
}

func NewUserService(repo domain.UserRepository, bcryptCost int) *UserService {
	return &UserService{repo: repo, bcryptCost: bcryptCost}
}

func (s *UserService) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	return s.repo.List(ctx, f)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create 校验 → 哈希 → 插入（activo=true，注册时间由服务端写入）
func (s *UserService) Create(ctx context.Context, p validation.Payload) (*domain.User, error) {
	if errs := validation.User(p); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	hash, err := utils.HashPassword(p["password"].(string), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Name:         p["nombre"].(string),
		Email:        p["email"].(string),
		PasswordHash: hash,
		Age:          optionalInt(p, "edad"),
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update 只改 nombre / email / edad
func (s *UserService) Update(ctx context.Context, id int64, p validation.Payload) (*domain.User, error) {
	if errs := validation.UserUpdate(p); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	ch := domain.UserChanges{
		Name:  p["nombre"].(string),
		Email: p["email"].(string),
		Age:   optionalInt(p, "edad"),
	}
	n, err := s.repo.Update(ctx, id, ch)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		ok, err := s.repo.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrNotFound
		}
	}
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		// 并发删除
		return nil, domain.ErrNotFound
	}
	return u, err
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func optionalInt(p validation.Payload, key string) *int {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	n, ok := validation.Int(v)
	if !ok {
		return nil
	}
	return &n
}
