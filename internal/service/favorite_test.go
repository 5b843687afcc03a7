package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexrel213/music-store-finally/internal/model"
)

type mockFavoriteRepo struct {
	favorites map[uuid.UUID]*model.Favorite
	products  *mockProductRepo
}

func newMockFavoriteRepo(products *mockProductRepo) *mockFavoriteRepo {
	return &mockFavoriteRepo{favorites: make(map[uuid.UUID]*model.Favorite), products: products}
}

func (m *mockFavoriteRepo) Create(_ context.Context, favorite *model.Favorite) error {
	favorite.ID = uuid.New()
	m.favorites[favorite.ID] = favorite
	return nil
}

func (m *mockFavoriteRepo) GetByUserAndProduct(_ context.Context, userID, productID uuid.UUID) (*model.Favorite, error) {
	for _, f := range m.favorites {
		if f.UserID == userID && f.ProductID == productID {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockFavoriteRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Favorite, error) {
	f, ok := m.favorites[id]
	if !ok {
		return nil, nil
	}
	copied := *f
	return &copied, nil
}

func (m *mockFavoriteRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Favorite, error) {
	var out []model.Favorite
	for _, f := range m.favorites {
		if f.UserID == userID {
			fav := *f
			fav.Product = m.products.products[f.ProductID]
			out = append(out, fav)
		}
	}
	return out, nil
}

func (m *mockFavoriteRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.favorites, id)
	return nil
}

func TestFavoriteService_Add(t *testing.T) {
	productRepo := newMockProductRepo()
	favRepo := newMockFavoriteRepo(productRepo)
	svc := NewFavoriteService(favRepo, productRepo)

	userID := uuid.New()
	p := newTestProduct(productRepo, 5)

	fav, err := svc.Add(context.Background(), userID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, fav.ProductID)
	assert.Len(t, favRepo.favorites, 1)
}

func TestFavoriteService_Add_Duplicate(t *testing.T) {
	productRepo := newMockProductRepo()
	favRepo := newMockFavoriteRepo(productRepo)
	svc := NewFavoriteService(favRepo, productRepo)

	userID := uuid.New()
	p := newTestProduct(productRepo, 5)

	_, err := svc.Add(context.Background(), userID, p.ID)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), userID, p.ID)
	assert.ErrorIs(t, err, ErrAlreadyFavorite)
}

func TestFavoriteService_Add_ProductNotFound(t *testing.T) {
	productRepo := newMockProductRepo()
	svc := NewFavoriteService(newMockFavoriteRepo(productRepo), productRepo)

	_, err := svc.Add(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFavoriteService_Remove_OwnerOnly(t *testing.T) {
	productRepo := newMockProductRepo()
	favRepo := newMockFavoriteRepo(productRepo)
	svc := NewFavoriteService(favRepo, productRepo)

	owner := uuid.New()
	p := newTestProduct(productRepo, 5)
	fav, err := svc.Add(context.Background(), owner, p.ID)
	require.NoError(t, err)

	err = svc.Remove(context.Background(), uuid.New(), fav.ID)
	assert.ErrorIs(t, err, ErrFavoriteNotFound)

	require.NoError(t, svc.Remove(context.Background(), owner, fav.ID))
	assert.Empty(t, favRepo.favorites)
}

func TestFavoriteService_IsFavorite(t *testing.T) {
	productRepo := newMockProductRepo()
	favRepo := newMockFavoriteRepo(productRepo)
	svc := NewFavoriteService(favRepo, productRepo)

	userID := uuid.New()
	p := newTestProduct(productRepo, 5)

	ok, err := svc.IsFavorite(context.Background(), userID, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Add(context.Background(), userID, p.ID)
	require.NoError(t, err)

	ok, err = svc.IsFavorite(context.Background(), userID, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
