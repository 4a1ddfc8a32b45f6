package domain

import (
	"context"
	"time"
)

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:nombre;size:100;not null" json:"nombre"`
	Email        string    `gorm:"column:email;size:191;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Age          *int      `gorm:"column:edad" json:"edad"`
	Active       bool      `gorm:"column:activo;not null;default:true" json:"activo"`
	RegisteredAt time.Time `gorm:"column:fecha_registro;not null;autoCreateTime;index" json:"fecha_registro"`
}

func (User) TableName() string { return "usuarios" }

// UserFilter 列表筛选；Active 为空表示不过滤
type UserFilter struct {
	Active *bool
	Page   Page
}

// UserChanges 可更新字段（密码、activo 不可改）
type UserChanges struct {
	Name  string
	Email string
	Age   *int
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, error)
	Update(ctx context.Context, id int64, ch UserChanges) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
