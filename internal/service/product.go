package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/model"
	"github.com/rexrel213/music-store-finally/internal/repository"
)

var ErrProductNotFound = errors.New("product not found")

const productCacheTTL = 60 * time.Second

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient}
}

type CreateProductInput struct {
	Title            string
	Description      string
	Price            decimal.Decimal
	BrandID          uuid.UUID
	InstrumentTypeID uuid.UUID
	ImagePath        string
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*dto.ProductResponse, error) {
	product := &model.Product{
		Title:            in.Title,
		Description:      in.Description,
		Price:            in.Price,
		BrandID:          in.BrandID,
		InstrumentTypeID: in.InstrumentTypeID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if in.ImagePath != "" {
		images, err := s.productRepo.AddImages(ctx, product.ID, []string{in.ImagePath})
		if err != nil {
			return nil, fmt.Errorf("attach image: %w", err)
		}
		product.Images = images
	}

	resp := toProductResponse(product, 0)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	avg, err := s.productRepo.AvgRating(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get avg rating: %w", err)
	}

	resp := toProductResponse(product, avg)

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}
	return &resp, nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) (*dto.ProductListResponse, error) {
	filter := repository.ProductFilter{
		Search:           req.Search,
		PriceMin:         req.PriceMin,
		PriceMax:         req.PriceMax,
		BrandID:          req.BrandID,
		InstrumentTypeID: req.InstrumentTypeID,
		Limit:            req.Limit,
		Offset:           (req.Page - 1) * req.Limit,
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(&p.Product, p.AvgRating))
	}
	return &dto.ProductListResponse{Products: items, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

func (s *ProductService) ListTop(ctx context.Context, req dto.TopProductsRequest) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.ListTop(ctx, req.MinRating, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list top products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(&p.Product, p.AvgRating))
	}
	return items, nil
}

func (s *ProductService) ListAdmin(ctx context.Context, req dto.AdminListRequest) (*dto.AdminListResponse[dto.ProductResponse], error) {
	products, total, err := s.productRepo.ListAdmin(ctx, req.Limit, (req.Page-1)*req.Limit, req.Sort)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(&p, 0))
	}
	return &dto.AdminListResponse[dto.ProductResponse]{Data: items, Total: total}, nil
}

func (s *ProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(&p, 0))
	}
	return items, nil
}

func (s *ProductService) AddImages(ctx context.Context, productID uuid.UUID, paths []string) (int, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return 0, ErrProductNotFound
	}

	images, err := s.productRepo.AddImages(ctx, productID, paths)
	if err != nil {
		return 0, fmt.Errorf("add images: %w", err)
	}

	s.invalidateCache(ctx, productID)
	return len(images), nil
}

func (s *ProductService) AvgRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	return s.productRepo.AvgRating(ctx, productID)
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}

func toProductResponse(p *model.Product, avgRating float64) dto.ProductResponse {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.ImagePath)
	}
	return dto.ProductResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		Quantity:       p.Quantity,
		BrandID:        p.BrandID,
		Brand:          p.Brand,
		InstrumentType: p.InstrumentType,
		Images:         images,
		AvgRating:      avgRating,
		CreatedAt:      p.CreatedAt,
	}
}
