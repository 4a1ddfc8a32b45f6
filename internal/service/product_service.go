package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"tienda-api/internal/domain"
	"tienda-api/internal/validation"
)

// ImageStore 上传文件的外部存储
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(ref string) error
}

type ProductService struct {
	repo   domain.ProductRepository
	images ImageStore
}

func NewProductService(repo domain.ProductRepository, images ImageStore) *ProductService {
	return &ProductService{repo: repo, images: images}
}

func (s *ProductService) List(ctx context.Context, f domain.ProductFilter) ([]domain.ProductView, error) {
	return s.repo.List(ctx, f)
}

// Create 先校验再落图片；插入失败时删除已保存的图片
func (s *ProductService) Create(ctx context.Context, p validation.Payload, image *multipart.FileHeader) (*domain.Product, error) {
	if errs := validation.Product(p); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	prod := &domain.Product{
		Name:   p["nombre"].(string),
		Active: true,
	}
	prod.Price, _ = validation.Decimal(p["precio"])
	if v, ok := p["stock"]; ok && v != nil {
		prod.Stock, _ = validation.Int(v)
	}
	if d, ok := validation.String(p["descripcion"]); ok {
		prod.Description = &d
	}
	if v, ok := p["categoria_id"]; ok && v != nil && v != "" {
		id, ok := validation.Int64(v)
		if !ok || id <= 0 {
			return nil, domain.NewValidationError("categoria_id debe ser un entero positivo")
		}
		prod.CategoryID = &id
	}

	if image != nil && s.images != nil {
		ref, err := s.images.Save(image)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		prod.ImageURL = &ref
	}

	if err := s.repo.Create(ctx, prod); err != nil {
		if prod.ImageURL != nil {
			_ = s.images.Remove(*prod.ImageURL)
		}
		return nil, err
	}
	return prod, nil
}
