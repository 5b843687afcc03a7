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
	ErrAlreadyFavorite  = errors.New("product already in favorites")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, productRepo repository.ProductRepository) *FavoriteService {
	return &FavoriteService{favoriteRepo: favoriteRepo, productRepo: productRepo}
}

func (s *FavoriteService) Add(ctx context.Context, userID, productID uuid.UUID) (*model.Favorite, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	existing, err := s.favoriteRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyFavorite
	}

	favorite := &model.Favorite{UserID: userID, ProductID: productID}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	favorite.Product = product
	return favorite, nil
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]dto.ProductResponse, error) {
	favorites, err := s.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(favorites))
	for _, f := range favorites {
		if f.Product == nil {
			continue
		}
		items = append(items, toProductResponse(f.Product, 0))
	}
	return items, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, favoriteID uuid.UUID) error {
	favorite, err := s.favoriteRepo.GetByID(ctx, favoriteID)
	if err != nil {
		return fmt.Errorf("get favorite: %w", err)
	}
	if favorite == nil || favorite.UserID != userID {
		return ErrFavoriteNotFound
	}
	return s.favoriteRepo.Delete(ctx, favoriteID)
}

// IsFavorite reports whether the product is in the user's favorites.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	favorite, err := s.favoriteRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("get favorite: %w", err)
	}
	return favorite != nil, nil
}
