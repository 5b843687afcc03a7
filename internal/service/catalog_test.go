package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/model"
)

type mockBrandRepo struct {
	brands map[uuid.UUID]*model.Brand
}

func (m *mockBrandRepo) Create(_ context.Context, brand *model.Brand) error {
	brand.ID = uuid.New()
	m.brands[brand.ID] = brand
	return nil
}

func (m *mockBrandRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Brand, error) {
	return m.brands[id], nil
}

func (m *mockBrandRepo) List(_ context.Context, _, _ int, _ string) ([]model.Brand, int, error) {
	var out []model.Brand
	for _, b := range m.brands {
		out = append(out, *b)
	}
	return out, len(out), nil
}

type mockCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func (m *mockCategoryRepo) Create(_ context.Context, category *model.Category) error {
	category.ID = uuid.New()
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	return m.categories[id], nil
}

func (m *mockCategoryRepo) List(_ context.Context, _, _ int, _ string) ([]model.Category, int, error) {
	var out []model.Category
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, len(out), nil
}

type mockInstrumentTypeRepo struct {
	types map[uuid.UUID]*model.InstrumentType
}

func (m *mockInstrumentTypeRepo) Create(_ context.Context, it *model.InstrumentType) error {
	it.ID = uuid.New()
	m.types[it.ID] = it
	return nil
}

func (m *mockInstrumentTypeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.InstrumentType, error) {
	return m.types[id], nil
}

func (m *mockInstrumentTypeRepo) List(_ context.Context, _, _ int, _ string) ([]model.InstrumentType, int, error) {
	var out []model.InstrumentType
	for _, it := range m.types {
		out = append(out, *it)
	}
	return out, len(out), nil
}

func newCatalogFixture() (*CatalogService, *mockBrandRepo, *mockCategoryRepo, *mockInstrumentTypeRepo, *mockProductRepo) {
	brandRepo := &mockBrandRepo{brands: make(map[uuid.UUID]*model.Brand)}
	categoryRepo := &mockCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
	typeRepo := &mockInstrumentTypeRepo{types: make(map[uuid.UUID]*model.InstrumentType)}
	productRepo := newMockProductRepo()
	svc := NewCatalogService(brandRepo, categoryRepo, typeRepo, productRepo)
	return svc, brandRepo, categoryRepo, typeRepo, productRepo
}

func TestCatalogService_GetBrand_NotFound(t *testing.T) {
	svc, _, _, _, _ := newCatalogFixture()

	_, err := svc.GetBrand(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBrandNotFound)
}

func TestCatalogService_CreateInstrumentType(t *testing.T) {
	svc, _, _, _, _ := newCatalogFixture()

	category, err := svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{Name: "Strings"})
	require.NoError(t, err)

	it, err := svc.CreateInstrumentType(context.Background(), dto.CreateInstrumentTypeRequest{
		Name: "Guitar", CategoryID: category.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Guitar", it.Name)
	assert.Equal(t, "Strings", it.Category)
}

func TestCatalogService_CreateInstrumentType_CategoryMissing(t *testing.T) {
	svc, _, _, _, _ := newCatalogFixture()

	_, err := svc.CreateInstrumentType(context.Background(), dto.CreateInstrumentTypeRequest{
		Name: "Guitar", CategoryID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCatalogService_CategoryProducts_CategoryMissing(t *testing.T) {
	svc, _, _, _, _ := newCatalogFixture()

	_, err := svc.CategoryProducts(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCatalogService_ValidateProductRefs(t *testing.T) {
	svc, brandRepo, _, typeRepo, _ := newCatalogFixture()
	ctx := context.Background()

	brand := &model.Brand{Name: "Fender"}
	require.NoError(t, brandRepo.Create(ctx, brand))
	it := &model.InstrumentType{Name: "Guitar"}
	require.NoError(t, typeRepo.Create(ctx, it))

	assert.NoError(t, svc.ValidateProductRefs(ctx, brand.ID, it.ID))
	assert.ErrorIs(t, svc.ValidateProductRefs(ctx, uuid.New(), it.ID), ErrBrandNotFound)
	assert.ErrorIs(t, svc.ValidateProductRefs(ctx, brand.ID, uuid.New()), ErrInstrumentTypeNotFound)
}
