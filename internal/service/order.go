package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rexrel213/music-store-finally/internal/barcode"
	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/model"
	"github.com/rexrel213/music-store-finally/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrBarcodeNotFound   = errors.New("no completed order with a barcode")
)

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	amqpCh      *amqp.Channel
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, amqpCh *amqp.Channel) *OrderService {
	return &OrderService{orderRepo: orderRepo, productRepo: productRepo, amqpCh: amqpCh}
}

// Cart returns the user's open cart. The cart is created lazily by AddItem,
// so a user who never added anything has none.
func (s *OrderService) Cart(ctx context.Context, userID uuid.UUID) (*dto.OrderResponse, error) {
	cart, err := s.orderRepo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrOrderNotFound
	}
	resp := toOrderResponse(cart)
	return &resp, nil
}

func (s *OrderService) AddItem(ctx context.Context, userID uuid.UUID, req dto.AddOrderItemRequest) (*dto.OrderItemResponse, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.orderRepo.AddItem(ctx, cart.ID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	item.Title = product.Title
	item.Price = product.Price

	resp := toOrderItemResponse(item)
	return &resp, nil
}

func (s *OrderService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*dto.OrderItemResponse, error) {
	item, err := s.orderRepo.GetItemForUser(ctx, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	if item == nil {
		return nil, ErrOrderItemNotFound
	}

	if err := s.orderRepo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	item.Quantity = quantity

	resp := toOrderItemResponse(item)
	return &resp, nil
}

func (s *OrderService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.orderRepo.GetItemForUser(ctx, itemID, userID)
	if err != nil {
		return fmt.Errorf("get cart item: %w", err)
	}
	if item == nil {
		return ErrOrderItemNotFound
	}
	return s.orderRepo.DeleteItem(ctx, itemID)
}

// Checkout moves the selected cart items into a new completed order. Stock is
// decremented for every item inside one transaction: either the whole
// selection goes through or nothing changes.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if len(req.ItemIDs) == 0 {
		return nil, ErrEmptyCart
	}

	value, err := barcode.NewValue()
	if err != nil {
		return nil, fmt.Errorf("generate barcode: %w", err)
	}

	order, err := s.orderRepo.Checkout(ctx, userID, req.ItemIDs, value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("checkout: %w", err)
	}

	msg, _ := json.Marshal(model.OrderMessage{OrderID: order.ID, UserID: userID, Barcode: order.Barcode})
	if s.amqpCh != nil {
		_ = s.amqpCh.PublishWithContext(ctx, "", "orders", false, false, amqp.Publishing{
			ContentType:  "application/json",
			Body:         msg,
			DeliveryMode: amqp.Persistent,
		})
	}

	return &dto.CheckoutResponse{OrderID: order.ID, Barcode: order.Barcode}, nil
}

func (s *OrderService) History(ctx context.Context, userID uuid.UUID) ([]dto.OrderResponse, error) {
	orders, err := s.orderRepo.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}
	return items, nil
}

func (s *OrderService) GetByID(ctx context.Context, orderID, userID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

// Barcode returns the barcode of the user's most recent completed order.
func (s *OrderService) Barcode(ctx context.Context, userID uuid.UUID) (*dto.BarcodeResponse, error) {
	order, err := s.orderRepo.LatestWithBarcode(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get latest order: %w", err)
	}
	if order == nil {
		return nil, ErrBarcodeNotFound
	}

	resp := &dto.BarcodeResponse{Barcode: order.Barcode}
	if order.BarcodeImage != "" {
		resp.BarcodeURL = "/static/" + order.BarcodeImage
	}
	return resp, nil
}

func (s *OrderService) SalesReport(ctx context.Context) (*dto.SalesReportResponse, error) {
	rows, total, err := s.orderRepo.SalesReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}

	products := make([]dto.ProductSalesItem, 0, len(rows))
	for _, r := range rows {
		products = append(products, dto.ProductSalesItem{ID: r.ProductID, Title: r.Title, SoldCount: r.SoldCount})
	}
	return &dto.SalesReportResponse{TotalSold: total, Products: products}, nil
}

func (s *OrderService) ListAdmin(ctx context.Context, req dto.AdminListRequest) (*dto.AdminListResponse[dto.OrderResponse], error) {
	orders, total, err := s.orderRepo.ListAdmin(ctx, req.Limit, (req.Page-1)*req.Limit, req.Sort)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}
	return &dto.AdminListResponse[dto.OrderResponse]{Data: items, Total: total}, nil
}

func (s *OrderService) ListItemsAdmin(ctx context.Context, req dto.AdminListRequest) ([]dto.OrderItemResponse, error) {
	rows, err := s.orderRepo.ListItemsAdmin(ctx, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	items := make([]dto.OrderItemResponse, 0, len(rows))
	for i := range rows {
		items = append(items, toOrderItemResponse(&rows[i]))
	}
	return items, nil
}

// GetItemAdmin looks up a single order line for the back office.
func (s *OrderService) GetItemAdmin(ctx context.Context, itemID uuid.UUID) (*dto.OrderItemResponse, error) {
	item, err := s.orderRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get order item: %w", err)
	}
	if item == nil {
		return nil, ErrOrderItemNotFound
	}
	resp := toOrderItemResponse(item)
	return &resp, nil
}

func (s *OrderService) getOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	cart, err := s.orderRepo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	value, err := barcode.NewValue()
	if err != nil {
		return nil, fmt.Errorf("generate barcode: %w", err)
	}
	cart, err = s.orderRepo.CreateCart(ctx, userID, value)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		items = append(items, toOrderItemResponse(&o.Items[i]))
	}
	return dto.OrderResponse{
		ID:        o.ID,
		Status:    string(o.Status),
		Barcode:   o.Barcode,
		Items:     items,
		CreatedAt: o.CreatedAt,
	}
}

func toOrderItemResponse(i *model.OrderItem) dto.OrderItemResponse {
	return dto.OrderItemResponse{
		ID:        i.ID,
		ProductID: i.ProductID,
		Title:     i.Title,
		Price:     i.Price,
		Quantity:  i.Quantity,
	}
}
