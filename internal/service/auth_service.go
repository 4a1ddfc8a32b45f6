package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tienda-api/internal/core/auth"
	"tienda-api/internal/domain"
	"tienda-api/pkg/utils"
)

type AuthService struct {
	users domain.UserRepository
	jwter *auth.JWTer
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer) *AuthService {
	return &AuthService{users: users, jwter: jwter}
}

type LoginResult struct {
	Token string
	User  *domain.User
}

// Login 邮箱不存在与密码错误返回同一个错误，防止枚举
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		utils.BurnPassword(password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	tok, err := s.jwter.Issue(auth.Identity{ID: u.ID, Email: u.Email, Name: u.Name})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: tok, User: u}, nil
}
