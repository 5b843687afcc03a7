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

// ErrInsufficientStock is returned from Checkout when any selected item asks
// for more than the product has on hand. The transaction is rolled back, so
// no stock is decremented in that case.
var ErrInsufficientStock = errors.New("insufficient stock")

type OrderRepository interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*model.Order, error)
	CreateCart(ctx context.Context, userID uuid.UUID, barcode string) (*model.Order, error)
	AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity int) (*model.OrderItem, error)
	GetItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*model.OrderItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	Checkout(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, barcode string) (*model.Order, error)
	ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	LatestWithBarcode(ctx context.Context, userID uuid.UUID) (*model.Order, error)
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	SetBarcodeImage(ctx context.Context, orderID uuid.UUID, path string) error
	ListAdmin(ctx context.Context, limit, offset int, sort string) ([]model.Order, int, error)
	ListItemsAdmin(ctx context.Context, limit, offset int) ([]model.OrderItem, error)
	GetItemByID(ctx context.Context, id uuid.UUID) (*model.OrderItem, error)
	SalesReport(ctx context.Context) ([]model.ProductSales, int, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

const orderItemColumns = `oi.id, oi.order_id, oi.product_id, oi.quantity, p.title, p.price`

func (r *pgOrderRepo) GetCart(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, status, COALESCE(barcode, ''), created_at
		 FROM orders WHERE user_id = $1 AND status = $2`,
		userID, model.OrderStatusCart,
	).Scan(&order.ID, &order.UserID, &order.Status, &order.Barcode, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *pgOrderRepo) CreateCart(ctx context.Context, userID uuid.UUID, barcode string) (*model.Order, error) {
	order := &model.Order{ID: uuid.New(), UserID: userID, Status: model.OrderStatusCart, Barcode: barcode}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, status, barcode, created_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`,
		order.ID, order.UserID, order.Status, order.Barcode,
	).Scan(&order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return order, nil
}

func (r *pgOrderRepo) AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity int) (*model.OrderItem, error) {
	item := &model.OrderItem{OrderID: orderID, ProductID: productID}
	query := `INSERT INTO order_items (id, order_id, product_id, quantity)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (order_id, product_id) DO UPDATE SET quantity = order_items.quantity + $4
			  RETURNING id, quantity`
	err := r.pool.QueryRow(ctx, query, uuid.New(), orderID, productID, quantity).Scan(&item.ID, &item.Quantity)
	if err != nil {
		return nil, fmt.Errorf("add order item: %w", err)
	}

	err = r.pool.QueryRow(ctx, `SELECT title, price FROM products WHERE id = $1`, productID).
		Scan(&item.Title, &item.Price)
	if err != nil {
		return nil, fmt.Errorf("load order item product: %w", err)
	}
	return item, nil
}

// GetItemForUser resolves a line item for cart edits. Completed orders are
// immutable once stock has been decremented, so only items still in the
// caller's open cart are returned.
func (r *pgOrderRepo) GetItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*model.OrderItem, error) {
	item := &model.OrderItem{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+orderItemColumns+`
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.id = $1 AND o.user_id = $2 AND o.status = $3`,
		itemID, userID, model.OrderStatusCart,
	).Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Title, &item.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	return item, nil
}

func (r *pgOrderRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE order_items SET quantity = $2 WHERE id = $1`, itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Checkout moves the selected cart items onto a fresh completed order,
// decrementing product stock on the way. Everything runs in one transaction:
// a conditional update guards every decrement, and the first item that fails
// the stock check aborts the whole transaction.
func (r *pgOrderRepo) Checkout(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, barcode string) (*model.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var cartID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM orders WHERE user_id = $1 AND status = $2 FOR UPDATE`,
		userID, model.OrderStatusCart,
	).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("lock cart: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT id, product_id, quantity FROM order_items
		 WHERE order_id = $1 AND id = ANY($2) FOR UPDATE`,
		cartID, itemIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("load selected items: %w", err)
	}
	var selected []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan selected item: %w", err)
		}
		selected = append(selected, item)
	}
	rows.Close()
	if len(selected) == 0 {
		return nil, pgx.ErrNoRows
	}

	for _, item := range selected {
		ct, err := tx.Exec(ctx,
			`UPDATE products SET quantity = quantity - $2, updated_at = NOW()
			 WHERE id = $1 AND quantity >= $2`,
			item.ProductID, item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrInsufficientStock)
		}
	}

	completed := &model.Order{
		ID:      uuid.New(),
		UserID:  userID,
		Status:  model.OrderStatusCompleted,
		Barcode: barcode,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, status, barcode, created_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`,
		completed.ID, completed.UserID, completed.Status, completed.Barcode,
	).Scan(&completed.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create completed order: %w", err)
	}

	// Move only the rows loaded from the cart above. The raw request ids may
	// name items outside the caller's cart and must never be re-parented.
	selectedIDs := make([]uuid.UUID, 0, len(selected))
	for _, item := range selected {
		selectedIDs = append(selectedIDs, item.ID)
	}
	_, err = tx.Exec(ctx,
		`UPDATE order_items SET order_id = $1 WHERE id = ANY($2) AND order_id = $3`,
		completed.ID, selectedIDs, cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("move items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}

	items, err := r.listItems(ctx, completed.ID)
	if err != nil {
		return nil, err
	}
	completed.Items = items
	return completed, nil
}

func (r *pgOrderRepo) ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, status, COALESCE(barcode, ''), created_at
		 FROM orders WHERE user_id = $1 AND status = $2
		 ORDER BY created_at DESC`,
		userID, model.OrderStatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Barcode, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	for i := range orders {
		items, err := r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, status, COALESCE(barcode, ''), created_at FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.UserID, &order.Status, &order.Barcode, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *pgOrderRepo) LatestWithBarcode(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, status, barcode, COALESCE(barcode_image, ''), created_at
		 FROM orders WHERE user_id = $1 AND status = $2 AND barcode IS NOT NULL AND barcode <> ''
		 ORDER BY created_at DESC LIMIT 1`,
		userID, model.OrderStatusCompleted,
	).Scan(&order.ID, &order.UserID, &order.Status, &order.Barcode, &order.BarcodeImage, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order barcode: %w", err)
	}
	return order, nil
}

func (r *pgOrderRepo) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.user_id = $1 AND o.status = $2 AND oi.product_id = $3
		)`,
		userID, model.OrderStatusCompleted, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return exists, nil
}

func (r *pgOrderRepo) SetBarcodeImage(ctx context.Context, orderID uuid.UUID, path string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET barcode_image = $2 WHERE id = $1`, orderID, path,
	)
	if err != nil {
		return fmt.Errorf("set barcode image: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var orderSortColumns = map[string]string{
	"created_at": "created_at",
	"status":     "status",
}

func (r *pgOrderRepo) ListAdmin(ctx context.Context, limit, offset int, sort string) ([]model.Order, int, error) {
	orderBy, ok := orderSortColumns[sort]
	if !ok {
		orderBy = "created_at"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, status, COALESCE(barcode, ''), created_at
		 FROM orders ORDER BY `+orderBy+` DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Barcode, &o.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, total, nil
}

func (r *pgOrderRepo) ListItemsAdmin(ctx context.Context, limit, offset int) ([]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderItemColumns+`
		 FROM order_items oi JOIN products p ON p.id = oi.product_id
		 JOIN orders o ON o.id = oi.order_id
		 ORDER BY o.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Title, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *pgOrderRepo) GetItemByID(ctx context.Context, id uuid.UUID) (*model.OrderItem, error) {
	item := &model.OrderItem{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+orderItemColumns+`
		 FROM order_items oi JOIN products p ON p.id = oi.product_id
		 WHERE oi.id = $1`, id,
	).Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Title, &item.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	return item, nil
}

func (r *pgOrderRepo) SalesReport(ctx context.Context) ([]model.ProductSales, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.title, COALESCE(SUM(oi.quantity), 0)
		 FROM products p
		 JOIN order_items oi ON oi.product_id = p.id
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.status = $1
		 GROUP BY p.id, p.title
		 ORDER BY SUM(oi.quantity) DESC`,
		model.OrderStatusCompleted,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sales report: %w", err)
	}
	defer rows.Close()

	var sales []model.ProductSales
	total := 0
	for rows.Next() {
		var s model.ProductSales
		if err := rows.Scan(&s.ProductID, &s.Title, &s.SoldCount); err != nil {
			return nil, 0, fmt.Errorf("scan sales row: %w", err)
		}
		total += s.SoldCount
		sales = append(sales, s)
	}
	return sales, total, nil
}

func (r *pgOrderRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderItemColumns+`
		 FROM order_items oi JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Title, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
