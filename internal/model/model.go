package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCart      OrderStatus = "cart"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
	RoleSupplier = "supplier"
)

type Role struct {
	ID   uuid.UUID
	Name string
}

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string
	Avatar    []byte
	RoleID    uuid.UUID
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Brand struct {
	ID          uuid.UUID
	Name        string
	Description string
	Website     string
	Logo        string
}

type Category struct {
	ID   uuid.UUID
	Name string
}

type InstrumentType struct {
	ID         uuid.UUID
	Name       string
	CategoryID uuid.UUID
	Category   string
}

type Product struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Price            decimal.Decimal
	Quantity         int
	InstrumentTypeID uuid.UUID
	BrandID          uuid.UUID
	Brand            string
	InstrumentType   string
	Images           []ProductImage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProductWithRating is what catalog listings return: the product plus the
// average of its star ratings (0 when unrated).
type ProductWithRating struct {
	Product
	AvgRating float64
}

type ProductImage struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	ImagePath string
}

type Order struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Status  OrderStatus
	Barcode string
	// BarcodeImage is the static path of the rendered EAN-13 PNG; filled in
	// asynchronously by the barcode worker.
	BarcodeImage string
	Items        []OrderItem
	CreatedAt    time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int

	// denormalized from products for responses
	Title string
	Price decimal.Decimal
}

type Comment struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Content   string
	Score     int
	ParentID  uuid.NullUUID
	Author    string
	CreatedAt time.Time
}

type CommentVote struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CommentID uuid.UUID
	Value     int
}

type Rating struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Value     int
}

type Favorite struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Product   *Product
}

type Supplier struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Phone       string
	BankAccount string
	INN         string
	KPP         string
}

type Supply struct {
	ID         uuid.UUID
	SupplierID uuid.UUID
	Supplier   string
	Items      []SupplyItem
	CreatedAt  time.Time
}

type SupplyItem struct {
	ID        uuid.UUID
	SupplyID  uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Title     string
}

// ProductSales is one row of the completed-order sales report.
type ProductSales struct {
	ProductID uuid.UUID
	Title     string
	SoldCount int
}

// OrderMessage is published to RabbitMQ when a checkout completes so the
// barcode worker can render the order's EAN-13 image.
type OrderMessage struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
	Barcode string    `json:"barcode"`
}
