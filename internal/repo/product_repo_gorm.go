package repo

import (
	"context"
	"errors"
	"fmt"

	"tienda-api/internal/core/database"
	"tienda-api/internal/domain"
)

type ProductRepo struct{ store *database.Store }

func NewProductRepo(store *database.Store) *ProductRepo { return &ProductRepo{store: store} }

var _ domain.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	// Omit 关联，避免 gorm 尝试 upsert 分类
	if err := r.store.DB(ctx).Omit("Category").Create(p).Error; err != nil {
		err = database.MapError(err)
		if database.IsForeignKey(err) {
			return fmt.Errorf("%w: %v", domain.ErrUnknownCategory, err)
		}
		return fmt.Errorf("ProductRepo.Create: %w", err)
	}
	return nil
}

// List 仅返回上架商品，按名称升序
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.ProductView, error) {
	q := r.store.DB(ctx).
		Table("productos AS p").
		Select("p.id, p.nombre, p.descripcion, p.precio, p.stock, p.activo, p.imagen_url, c.nombre AS categoria").
		Joins("LEFT JOIN categorias c ON p.categoria_id = c.id").
		Where("p.activo = ?", true)

	if f.Category != "" {
		q = q.Where("c.nombre = ?", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("p.precio >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("p.precio <= ?", *f.MaxPrice)
	}
	if f.MinStock != nil {
		q = q.Where("p.stock >= ?", *f.MinStock)
	}

	rows := make([]domain.ProductView, 0, f.Page.Limit)
	err := q.Order("p.nombre ASC").Order("p.id ASC").
		Limit(f.Page.Limit).Offset(f.Page.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ProductRepo.List: %w", database.MapError(err))
	}
	return rows, nil
}

type CategoryRepo struct{ store *database.Store }

func NewCategoryRepo(store *database.Store) *CategoryRepo { return &CategoryRepo{store: store} }

var _ domain.CategoryRepository = (*CategoryRepo)(nil)

// EnsureByName 按名称查找，不存在则创建；第二个返回值表示是否新建
func (r *CategoryRepo) EnsureByName(ctx context.Context, name string) (*domain.Category, bool, error) {
	var c domain.Category
	err := r.store.DB(ctx).Where("nombre = ?", name).Take(&c).Error
	if err == nil {
		return &c, false, nil
	}
	if !errors.Is(database.MapError(err), database.ErrNotFound) {
		return nil, false, fmt.Errorf("CategoryRepo.EnsureByName: %w", database.MapError(err))
	}
	c = domain.Category{Name: name}
	if err := r.store.DB(ctx).Create(&c).Error; err != nil {
		return nil, false, fmt.Errorf("CategoryRepo.EnsureByName: %w", database.MapError(err))
	}
	return &c, true, nil
}
