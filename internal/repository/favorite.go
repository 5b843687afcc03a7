package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rexrel213/music-store-finally/internal/model"
)

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *model.Favorite) error
	GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*model.Favorite, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Favorite, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Favorite, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgFavoriteRepo struct{ pool *pgxpool.Pool }

func NewFavoriteRepository(pool *pgxpool.Pool) FavoriteRepository {
	return &pgFavoriteRepo{pool: pool}
}

func (r *pgFavoriteRepo) Create(ctx context.Context, favorite *model.Favorite) error {
	favorite.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO favorites (id, user_id, product_id) VALUES ($1, $2, $3)`,
		favorite.ID, favorite.UserID, favorite.ProductID,
	)
	if err != nil {
		return fmt.Errorf("create favorite: %w", err)
	}
	return nil
}

func (r *pgFavoriteRepo) GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*model.Favorite, error) {
	f := &model.Favorite{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, product_id FROM favorites WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	).Scan(&f.ID, &f.UserID, &f.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return f, nil
}

func (r *pgFavoriteRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Favorite, error) {
	f := &model.Favorite{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, product_id FROM favorites WHERE id = $1`, id,
	).Scan(&f.ID, &f.UserID, &f.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return f, nil
}

func (r *pgFavoriteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Favorite, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT f.id, f.user_id, f.product_id,
				p.id, p.title, p.description, p.price, p.quantity,
				p.instrument_type_id, p.brand_id, b.name, it.name, p.created_at, p.updated_at
		 FROM favorites f
		 JOIN products p ON p.id = f.product_id
		 JOIN brands b ON b.id = p.brand_id
		 JOIN instrument_types it ON it.id = p.instrument_type_id
		 WHERE f.user_id = $1`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []model.Favorite
	for rows.Next() {
		var f model.Favorite
		var p model.Product
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.ProductID,
			&p.ID, &p.Title, &p.Description, &p.Price, &p.Quantity,
			&p.InstrumentTypeID, &p.BrandID, &p.Brand, &p.InstrumentType,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		f.Product = &p
		favorites = append(favorites, f)
	}
	return favorites, nil
}

func (r *pgFavoriteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
