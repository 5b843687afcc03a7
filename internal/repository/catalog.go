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

type BrandRepository interface {
	Create(ctx context.Context, brand *model.Brand) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Brand, error)
	List(ctx context.Context, limit, offset int, sort string) ([]model.Brand, int, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	List(ctx context.Context, limit, offset int, sort string) ([]model.Category, int, error)
}

type InstrumentTypeRepository interface {
	Create(ctx context.Context, it *model.InstrumentType) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.InstrumentType, error)
	List(ctx context.Context, limit, offset int, sort string) ([]model.InstrumentType, int, error)
}

type pgBrandRepo struct{ pool *pgxpool.Pool }

func NewBrandRepository(pool *pgxpool.Pool) BrandRepository {
	return &pgBrandRepo{pool: pool}
}

var brandSortColumns = map[string]string{"name": "name"}

func (r *pgBrandRepo) Create(ctx context.Context, brand *model.Brand) error {
	brand.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO brands (id, name, description, website, logo) VALUES ($1, $2, $3, $4, $5)`,
		brand.ID, brand.Name, brand.Description, brand.Website, brand.Logo,
	)
	if err != nil {
		return fmt.Errorf("create brand: %w", err)
	}
	return nil
}

func (r *pgBrandRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Brand, error) {
	b := &model.Brand{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, website, logo FROM brands WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Description, &b.Website, &b.Logo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return b, nil
}

func (r *pgBrandRepo) List(ctx context.Context, limit, offset int, sort string) ([]model.Brand, int, error) {
	orderBy, ok := brandSortColumns[sort]
	if !ok {
		orderBy = "name"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM brands`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count brands: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, website, logo FROM brands ORDER BY `+orderBy+` LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []model.Brand
	for rows.Next() {
		var b model.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Website, &b.Logo); err != nil {
			return nil, 0, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, total, nil
}

type pgCategoryRepo struct{ pool *pgxpool.Pool }

func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &pgCategoryRepo{pool: pool}
}

func (r *pgCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	category.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2)`, category.ID, category.Name,
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *pgCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c := &model.Category{}
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) List(ctx context.Context, limit, offset int, sort string) ([]model.Category, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM categories ORDER BY name LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, total, nil
}

type pgInstrumentTypeRepo struct{ pool *pgxpool.Pool }

func NewInstrumentTypeRepository(pool *pgxpool.Pool) InstrumentTypeRepository {
	return &pgInstrumentTypeRepo{pool: pool}
}

var instrumentTypeSortColumns = map[string]string{
	"name":          "it.name",
	"category.name": "c.name",
}

func (r *pgInstrumentTypeRepo) Create(ctx context.Context, it *model.InstrumentType) error {
	it.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO instrument_types (id, name, category_id) VALUES ($1, $2, $3)`,
		it.ID, it.Name, it.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("create instrument type: %w", err)
	}
	return nil
}

func (r *pgInstrumentTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.InstrumentType, error) {
	it := &model.InstrumentType{}
	err := r.pool.QueryRow(ctx,
		`SELECT it.id, it.name, it.category_id, c.name
		 FROM instrument_types it JOIN categories c ON c.id = it.category_id
		 WHERE it.id = $1`, id,
	).Scan(&it.ID, &it.Name, &it.CategoryID, &it.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get instrument type: %w", err)
	}
	return it, nil
}

func (r *pgInstrumentTypeRepo) List(ctx context.Context, limit, offset int, sort string) ([]model.InstrumentType, int, error) {
	orderBy, ok := instrumentTypeSortColumns[sort]
	if !ok {
		orderBy = "it.name"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM instrument_types`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count instrument types: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT it.id, it.name, it.category_id, c.name
		 FROM instrument_types it JOIN categories c ON c.id = it.category_id
		 ORDER BY `+orderBy+` LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list instrument types: %w", err)
	}
	defer rows.Close()

	var types []model.InstrumentType
	for rows.Next() {
		var it model.InstrumentType
		if err := rows.Scan(&it.ID, &it.Name, &it.CategoryID, &it.Category); err != nil {
			return nil, 0, fmt.Errorf("scan instrument type: %w", err)
		}
		types = append(types, it)
	}
	return types, total, nil
}
