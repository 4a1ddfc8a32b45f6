package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:nombre;size:100;not null;uniqueIndex" json:"nombre"`
}

func (Category) TableName() string { return "categorias" }

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:nombre;size:255;not null;index" json:"nombre"`
	Description *string         `gorm:"column:descripcion;type:text" json:"descripcion"`
	Price       decimal.Decimal `gorm:"column:precio;type:decimal(10,2);not null" json:"precio"`
	Stock       int             `gorm:"column:stock;not null;default:0" json:"stock"`
	CategoryID  *int64          `gorm:"column:categoria_id;index" json:"categoria_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	ImageURL    *string         `gorm:"column:imagen_url;size:255" json:"imagen_url"`
	Active      bool            `gorm:"column:activo;not null;default:true" json:"activo"`
	CreatedAt   time.Time       `gorm:"column:fecha_creacion;not null;autoCreateTime" json:"fecha_creacion"`
}

func (Product) TableName() string { return "productos" }

// ProductView 列表行：带分类名
type ProductView struct {
	ID          int64           `json:"id"`
	Name        string          `gorm:"column:nombre" json:"nombre"`
	Description *string         `gorm:"column:descripcion" json:"descripcion"`
	Price       decimal.Decimal `gorm:"column:precio" json:"precio"`
	Stock       int             `gorm:"column:stock" json:"stock"`
	Active      bool            `gorm:"column:activo" json:"activo"`
	ImageURL    *string         `gorm:"column:imagen_url" json:"imagen_url"`
	Category    *string         `gorm:"column:categoria" json:"categoria"`
}

type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	MinStock *int
	Page     Page
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	List(ctx context.Context, f ProductFilter) ([]ProductView, error)
}

type CategoryRepository interface {
	EnsureByName(ctx context.Context, name string) (*Category, bool, error)
}
