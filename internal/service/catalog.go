package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/model"
	"github.com/rexrel213/music-store-finally/internal/repository"
)

var (
	ErrBrandNotFound          = errors.New("brand not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrInstrumentTypeNotFound = errors.New("instrument type not found")
)

type CatalogService struct {
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
	typeRepo     repository.InstrumentTypeRepository
	productRepo  repository.ProductRepository
}

func NewCatalogService(
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
	typeRepo repository.InstrumentTypeRepository,
	productRepo repository.ProductRepository,
) *CatalogService {
	return &CatalogService{
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		typeRepo:     typeRepo,
		productRepo:  productRepo,
	}
}

func (s *CatalogService) GetBrand(ctx context.Context, id uuid.UUID) (*dto.BrandResponse, error) {
	brand, err := s.brandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get brand: %w", err)
	}
	if brand == nil {
		return nil, ErrBrandNotFound
	}
	resp := toBrandResponse(brand)
	return &resp, nil
}

func (s *CatalogService) ListBrands(ctx context.Context, req dto.AdminListRequest) (*dto.AdminListResponse[dto.BrandResponse], error) {
	brands, total, err := s.brandRepo.List(ctx, req.Limit, (req.Page-1)*req.Limit, req.Sort)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}

	items := make([]dto.BrandResponse, 0, len(brands))
	for i := range brands {
		items = append(items, toBrandResponse(&brands[i]))
	}
	return &dto.AdminListResponse[dto.BrandResponse]{Data: items, Total: total}, nil
}

func (s *CatalogService) CreateBrand(ctx context.Context, req dto.CreateBrandRequest) (*dto.BrandResponse, error) {
	brand := &model.Brand{
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		Logo:        req.Logo,
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}
	resp := toBrandResponse(brand)
	return &resp, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, req dto.AdminListRequest) (*dto.AdminListResponse[dto.CategoryResponse], error) {
	categories, total, err := s.categoryRepo.List(ctx, req.Limit, (req.Page-1)*req.Limit, req.Sort)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		items = append(items, dto.CategoryResponse{ID: c.ID, Name: c.Name})
	}
	return &dto.AdminListResponse[dto.CategoryResponse]{Data: items, Total: total}, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	category := &model.Category{Name: req.Name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &dto.CategoryResponse{ID: category.ID, Name: category.Name}, nil
}

// CategoryProducts lists the products whose instrument type belongs to the
// given category.
func (s *CatalogService) CategoryProducts(ctx context.Context, categoryID uuid.UUID) ([]dto.ProductResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	products, err := s.productRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list category products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i], 0))
	}
	return items, nil
}

func (s *CatalogService) ListInstrumentTypes(ctx context.Context, req dto.AdminListRequest) (*dto.AdminListResponse[dto.InstrumentTypeResponse], error) {
	types, total, err := s.typeRepo.List(ctx, req.Limit, (req.Page-1)*req.Limit, req.Sort)
	if err != nil {
		return nil, fmt.Errorf("list instrument types: %w", err)
	}

	items := make([]dto.InstrumentTypeResponse, 0, len(types))
	for _, t := range types {
		items = append(items, dto.InstrumentTypeResponse{
			ID:         t.ID,
			Name:       t.Name,
			CategoryID: t.CategoryID,
			Category:   t.Category,
		})
	}
	return &dto.AdminListResponse[dto.InstrumentTypeResponse]{Data: items, Total: total}, nil
}

func (s *CatalogService) CreateInstrumentType(ctx context.Context, req dto.CreateInstrumentTypeRequest) (*dto.InstrumentTypeResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	it := &model.InstrumentType{Name: req.Name, CategoryID: req.CategoryID}
	if err := s.typeRepo.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("create instrument type: %w", err)
	}
	return &dto.InstrumentTypeResponse{
		ID:         it.ID,
		Name:       it.Name,
		CategoryID: it.CategoryID,
		Category:   category.Name,
	}, nil
}

// ValidateProductRefs checks that the brand and instrument type a new
// product references exist.
func (s *CatalogService) ValidateProductRefs(ctx context.Context, brandID, typeID uuid.UUID) error {
	brand, err := s.brandRepo.GetByID(ctx, brandID)
	if err != nil {
		return fmt.Errorf("get brand: %w", err)
	}
	if brand == nil {
		return ErrBrandNotFound
	}

	it, err := s.typeRepo.GetByID(ctx, typeID)
	if err != nil {
		return fmt.Errorf("get instrument type: %w", err)
	}
	if it == nil {
		return ErrInstrumentTypeNotFound
	}
	return nil
}

func toBrandResponse(b *model.Brand) dto.BrandResponse {
	return dto.BrandResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Website:     b.Website,
		Logo:        b.Logo,
	}
}
