package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexrel213/music-store-finally/internal/model"
	"github.com/rexrel213/music-store-finally/internal/repository"
)

type mockProductRepo struct {
	products map[uuid.UUID]*model.Product
	ratings  map[uuid.UUID]float64
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		ratings:  make(map[uuid.UUID]float64),
	}
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	product.ID = uuid.New()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return m.products[id], nil
}

func (m *mockProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]model.ProductWithRating, int, error) {
	var out []model.ProductWithRating
	for _, p := range m.products {
		out = append(out, model.ProductWithRating{Product: *p, AvgRating: m.ratings[p.ID]})
	}
	return out, len(out), nil
}

func (m *mockProductRepo) ListTop(_ context.Context, minRating float64, _, _ int) ([]model.ProductWithRating, error) {
	var out []model.ProductWithRating
	for _, p := range m.products {
		if m.ratings[p.ID] >= minRating {
			out = append(out, model.ProductWithRating{Product: *p, AvgRating: m.ratings[p.ID]})
		}
	}
	return out, nil
}

func (m *mockProductRepo) ListAdmin(_ context.Context, _, _ int, _ string) ([]model.Product, int, error) {
	var out []model.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProductRepo) Update(_ context.Context, product *model.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) AddImages(_ context.Context, productID uuid.UUID, paths []string) ([]model.ProductImage, error) {
	p := m.products[productID]
	var images []model.ProductImage
	for _, path := range paths {
		img := model.ProductImage{ID: uuid.New(), ProductID: productID, ImagePath: path}
		images = append(images, img)
		if p != nil {
			p.Images = append(p.Images, img)
		}
	}
	return images, nil
}

func (m *mockProductRepo) AvgRating(_ context.Context, productID uuid.UUID) (float64, error) {
	return m.ratings[productID], nil
}

func (m *mockProductRepo) ListByCategory(_ context.Context, _ uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func TestProductService_GetByID(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil)

	p := &model.Product{Title: "Stratocaster", Price: decimal.NewFromInt(1200)}
	require.NoError(t, repo.Create(context.Background(), p))
	repo.ratings[p.ID] = 4.5

	resp, err := svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stratocaster", resp.Title)
	assert.Equal(t, 4.5, resp.AvgRating)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Create_WithImage(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo, nil)

	resp, err := svc.Create(context.Background(), CreateProductInput{
		Title:     "Les Paul",
		Price:     decimal.NewFromInt(2400),
		ImagePath: "uploads/lp.png",
	})
	require.NoError(t, err)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, "uploads/lp.png", resp.Images[0])
}

func TestProductService_AddImages_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), nil)

	_, err := svc.AddImages(context.Background(), uuid.New(), []string{"uploads/x.png"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
