package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rexrel213/music-store-finally/internal/model"
)

// ProductFilter narrows the public catalog listing. Zero values mean "no
// constraint".
type ProductFilter struct {
	Search           string
	PriceMin         *float64
	PriceMax         *float64
	BrandID          *uuid.UUID
	InstrumentTypeID *uuid.UUID
	Limit            int
	Offset           int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, f ProductFilter) ([]model.ProductWithRating, int, error)
	ListTop(ctx context.Context, minRating float64, limit, offset int) ([]model.ProductWithRating, error)
	ListAdmin(ctx context.Context, limit, offset int, sort string) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddImages(ctx context.Context, productID uuid.UUID, paths []string) ([]model.ProductImage, error)
	AvgRating(ctx context.Context, productID uuid.UUID) (float64, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `p.id, p.title, p.description, p.price, p.quantity,
	p.instrument_type_id, p.brand_id, b.name, it.name, p.created_at, p.updated_at`

const productJoins = `FROM products p
	JOIN brands b ON b.id = p.brand_id
	JOIN instrument_types it ON it.id = p.instrument_type_id`

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	query := `INSERT INTO products (id, title, description, price, quantity, instrument_type_id, brand_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Title, product.Description, product.Price,
		product.Quantity, product.InstrumentTypeID, product.BrandID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` ` + productJoins + ` WHERE p.id = $1`
	p := &model.Product{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Quantity,
		&p.InstrumentTypeID, &p.BrandID, &p.Brand, &p.InstrumentType,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	images, err := r.listImages(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, f ProductFilter) ([]model.ProductWithRating, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		where = append(where, "p.title ILIKE '%' || "+arg(f.Search)+" || '%'")
	}
	if f.PriceMin != nil {
		where = append(where, "p.price >= "+arg(*f.PriceMin))
	}
	if f.PriceMax != nil {
		where = append(where, "p.price <= "+arg(*f.PriceMax))
	}
	if f.BrandID != nil {
		where = append(where, "p.brand_id = "+arg(*f.BrandID))
	}
	if f.InstrumentTypeID != nil {
		where = append(where, "p.instrument_type_id = "+arg(*f.InstrumentTypeID))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQ := `SELECT COUNT(*) ` + productJoins + ` WHERE ` + cond
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + `, COALESCE(ar.avg_rating, 0) ` + productJoins + `
		LEFT JOIN (SELECT product_id, AVG(value) AS avg_rating FROM ratings GROUP BY product_id) ar
			ON ar.product_id = p.id
		WHERE ` + cond + `
		ORDER BY p.created_at DESC LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := scanProductsWithRating(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachImages(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *pgProductRepo) ListTop(ctx context.Context, minRating float64, limit, offset int) ([]model.ProductWithRating, error) {
	query := `SELECT ` + productColumns + `, ar.avg_rating ` + productJoins + `
		JOIN (SELECT product_id, AVG(value) AS avg_rating FROM ratings GROUP BY product_id) ar
			ON ar.product_id = p.id
		WHERE ar.avg_rating >= $1
		ORDER BY ar.avg_rating DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, minRating, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list top products: %w", err)
	}
	defer rows.Close()

	products, err := scanProductsWithRating(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// productSortColumns is the allow-list for admin sorting, including
// related-field keys. Sort input never reaches the query directly.
var productSortColumns = map[string]string{
	"title":                "p.title",
	"price":                "p.price",
	"quantity":             "p.quantity",
	"created_at":           "p.created_at",
	"brand.name":           "b.name",
	"instrument_type.name": "it.name",
}

func (r *pgProductRepo) ListAdmin(ctx context.Context, limit, offset int, sort string) ([]model.Product, int, error) {
	orderBy, ok := productSortColumns[sort]
	if !ok {
		orderBy = "p.created_at"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` ` + productJoins + `
		ORDER BY ` + orderBy + ` LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Price, &p.Quantity,
			&p.InstrumentTypeID, &p.BrandID, &p.Brand, &p.InstrumentType,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, nil
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET title=$2, description=$3, price=$4, quantity=$5,
			  instrument_type_id=$6, brand_id=$7, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Title, product.Description, product.Price,
		product.Quantity, product.InstrumentTypeID, product.BrandID,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) AddImages(ctx context.Context, productID uuid.UUID, paths []string) ([]model.ProductImage, error) {
	images := make([]model.ProductImage, 0, len(paths))
	for _, path := range paths {
		img := model.ProductImage{ID: uuid.New(), ProductID: productID, ImagePath: path}
		_, err := r.pool.Exec(ctx,
			`INSERT INTO product_images (id, product_id, image_path) VALUES ($1, $2, $3)`,
			img.ID, img.ProductID, img.ImagePath,
		)
		if err != nil {
			return nil, fmt.Errorf("add product image: %w", err)
		}
		images = append(images, img)
	}
	return images, nil
}

func (r *pgProductRepo) AvgRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(value), 0) FROM ratings WHERE product_id = $1`, productID,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("avg rating: %w", err)
	}
	return avg, nil
}

func (r *pgProductRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` ` + productJoins + ` WHERE it.category_id = $1`
	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Price, &p.Quantity,
			&p.InstrumentTypeID, &p.BrandID, &p.Brand, &p.InstrumentType,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *pgProductRepo) listImages(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, image_path FROM product_images WHERE product_id = $1`, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	var images []model.ProductImage
	for rows.Next() {
		var img model.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImagePath); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		images = append(images, img)
	}
	return images, nil
}

func (r *pgProductRepo) attachImages(ctx context.Context, products []model.ProductWithRating) error {
	for i := range products {
		images, err := r.listImages(ctx, products[i].ID)
		if err != nil {
			return err
		}
		products[i].Images = images
	}
	return nil
}

func scanProductsWithRating(rows pgx.Rows) ([]model.ProductWithRating, error) {
	var products []model.ProductWithRating
	for rows.Next() {
		var p model.ProductWithRating
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Price, &p.Quantity,
			&p.InstrumentTypeID, &p.BrandID, &p.Brand, &p.InstrumentType,
			&p.CreatedAt, &p.UpdatedAt, &p.AvgRating,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}
