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

type SupplyRepository interface {
	GetSupplierByUserID(ctx context.Context, userID uuid.UUID) (*model.Supplier, error)
	GetSupplierByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *model.Supplier) error
	ListSuppliers(ctx context.Context, limit, offset int, sort string) ([]model.Supplier, int, error)
	CreateSupply(ctx context.Context, supply *model.Supply) error
	ListSupplies(ctx context.Context, limit, offset int, sort string) ([]model.Supply, int, error)
	ListSupplyItems(ctx context.Context, limit, offset int) ([]model.SupplyItem, error)
}

type pgSupplyRepo struct{ pool *pgxpool.Pool }

func NewSupplyRepository(pool *pgxpool.Pool) SupplyRepository {
	return &pgSupplyRepo{pool: pool}
}

func (r *pgSupplyRepo) GetSupplierByUserID(ctx context.Context, userID uuid.UUID) (*model.Supplier, error) {
	return r.getSupplier(ctx, `WHERE user_id = $1`, userID)
}

func (r *pgSupplyRepo) GetSupplierByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	return r.getSupplier(ctx, `WHERE id = $1`, id)
}

func (r *pgSupplyRepo) getSupplier(ctx context.Context, cond string, arg any) (*model.Supplier, error) {
	s := &model.Supplier{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, phone, bank_account, inn, kpp FROM suppliers `+cond, arg,
	).Scan(&s.ID, &s.UserID, &s.Name, &s.Phone, &s.BankAccount, &s.INN, &s.KPP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

func (r *pgSupplyRepo) CreateSupplier(ctx context.Context, supplier *model.Supplier) error {
	supplier.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO suppliers (id, user_id, name, phone, bank_account, inn, kpp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		supplier.ID, supplier.UserID, supplier.Name, supplier.Phone,
		supplier.BankAccount, supplier.INN, supplier.KPP,
	)
	if err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

var supplierSortColumns = map[string]string{
	"name": "name",
	"inn":  "inn",
}

func (r *pgSupplyRepo) ListSuppliers(ctx context.Context, limit, offset int, sort string) ([]model.Supplier, int, error) {
	orderBy, ok := supplierSortColumns[sort]
	if !ok {
		orderBy = "name"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, phone, bank_account, inn, kpp
		 FROM suppliers ORDER BY `+orderBy+` LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []model.Supplier
	for rows.Next() {
		var s model.Supplier
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Phone, &s.BankAccount, &s.INN, &s.KPP); err != nil {
			return nil, 0, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, nil
}

// CreateSupply inserts the supply with its line items and increments each
// referenced product's stock, all in one transaction. A line referencing an
// unknown product aborts the whole delivery.
func (r *pgSupplyRepo) CreateSupply(ctx context.Context, supply *model.Supply) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	supply.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO supplies (id, supplier_id, created_at) VALUES ($1, $2, NOW()) RETURNING created_at`,
		supply.ID, supply.SupplierID,
	).Scan(&supply.CreatedAt)
	if err != nil {
		return fmt.Errorf("create supply: %w", err)
	}

	for i := range supply.Items {
		item := &supply.Items[i]
		item.ID = uuid.New()
		item.SupplyID = supply.ID

		_, err = tx.Exec(ctx,
			`INSERT INTO supply_items (id, supply_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			item.ID, item.SupplyID, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("create supply item: %w", err)
		}

		ct, err := tx.Exec(ctx,
			`UPDATE products SET quantity = quantity + $2, updated_at = NOW() WHERE id = $1`,
			item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("increment stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("product %s: %w", item.ProductID, pgx.ErrNoRows)
		}
	}

	return tx.Commit(ctx)
}

var supplySortColumns = map[string]string{
	"created_at":    "s.created_at",
	"supplier.name": "sp.name",
}

func (r *pgSupplyRepo) ListSupplies(ctx context.Context, limit, offset int, sort string) ([]model.Supply, int, error) {
	orderBy, ok := supplySortColumns[sort]
	if !ok {
		orderBy = "s.created_at"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM supplies`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count supplies: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.supplier_id, sp.name, s.created_at
		 FROM supplies s JOIN suppliers sp ON sp.id = s.supplier_id
		 ORDER BY `+orderBy+` DESC LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list supplies: %w", err)
	}
	defer rows.Close()

	var supplies []model.Supply
	for rows.Next() {
		var s model.Supply
		if err := rows.Scan(&s.ID, &s.SupplierID, &s.Supplier, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan supply: %w", err)
		}
		supplies = append(supplies, s)
	}

	for i := range supplies {
		items, err := r.listItems(ctx, supplies[i].ID)
		if err != nil {
			return nil, 0, err
		}
		supplies[i].Items = items
	}
	return supplies, total, nil
}

func (r *pgSupplyRepo) ListSupplyItems(ctx context.Context, limit, offset int) ([]model.SupplyItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT si.id, si.supply_id, si.product_id, si.quantity, p.title
		 FROM supply_items si
		 JOIN products p ON p.id = si.product_id
		 JOIN supplies s ON s.id = si.supply_id
		 ORDER BY s.created_at DESC LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list supply items: %w", err)
	}
	defer rows.Close()

	var items []model.SupplyItem
	for rows.Next() {
		var item model.SupplyItem
		if err := rows.Scan(&item.ID, &item.SupplyID, &item.ProductID, &item.Quantity, &item.Title); err != nil {
			return nil, fmt.Errorf("scan supply item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *pgSupplyRepo) listItems(ctx context.Context, supplyID uuid.UUID) ([]model.SupplyItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT si.id, si.supply_id, si.product_id, si.quantity, p.title
		 FROM supply_items si JOIN products p ON p.id = si.product_id
		 WHERE si.supply_id = $1`, supplyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list supply items: %w", err)
	}
	defer rows.Close()

	var items []model.SupplyItem
	for rows.Next() {
		var item model.SupplyItem
		if err := rows.Scan(&item.ID, &item.SupplyID, &item.ProductID, &item.Quantity, &item.Title); err != nil {
			return nil, fmt.Errorf("scan supply item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
