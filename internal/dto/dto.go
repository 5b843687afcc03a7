package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Auth / profile ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"access_token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

type PasswordUpdate struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type UpdateProfileRequest struct {
	Name     *string         `json:"name"`
	Email    *string         `json:"email" binding:"omitempty,email"`
	Password *PasswordUpdate `json:"password"`
}

// --- Catalog ---

type ListProductsRequest struct {
	Page             int        `form:"page,default=1" binding:"min=1"`
	Limit            int        `form:"limit,default=20" binding:"min=1,max=100"`
	Search           string     `form:"q"`
	PriceMin         *float64   `form:"price_min"`
	PriceMax         *float64   `form:"price_max"`
	BrandID          *uuid.UUID `form:"brand_id"`
	InstrumentTypeID *uuid.UUID `form:"instrument_type_id"`
}

type TopProductsRequest struct {
	MinRating float64 `form:"min_rating,default=4" binding:"min=0,max=5"`
	Page      int     `form:"page,default=1" binding:"min=1"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
}

type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	BrandID        uuid.UUID       `json:"brand_id"`
	Brand          string          `json:"brand"`
	InstrumentType string          `json:"instrument_type"`
	Images         []string        `json:"images"`
	AvgRating      float64         `json:"avg_rating"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type BrandResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	Logo        string    `json:"logo"`
}

type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type InstrumentTypeResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CategoryID uuid.UUID `json:"category_id"`
	Category   string    `json:"category"`
}

// --- Cart / order ---

type AddOrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type UpdateOrderItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" binding:"required"`
}

type CheckoutResponse struct {
	OrderID uuid.UUID `json:"new_order_id"`
	Barcode string    `json:"barcode"`
}

type OrderResponse struct {
	ID        uuid.UUID           `json:"id"`
	Status    string              `json:"status"`
	Barcode   string              `json:"barcode,omitempty"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
}

type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type BarcodeResponse struct {
	Barcode    string `json:"barcode"`
	BarcodeURL string `json:"barcode_url"`
}

// --- Reviews ---

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type ReplyCommentRequest struct {
	Content  string    `json:"content" binding:"required"`
	ParentID uuid.UUID `json:"parent_id" binding:"required"`
}

type CommentResponse struct {
	ID        uuid.UUID         `json:"id"`
	Author    string            `json:"author"`
	Content   string            `json:"content"`
	Score     int               `json:"score"`
	CreatedAt time.Time         `json:"created_at"`
	Children  []CommentResponse `json:"children"`
}

type VoteCommentRequest struct {
	Value int `json:"value" binding:"required,oneof=-1 1"`
}

type VoteCommentResponse struct {
	Voted bool `json:"voted"`
	Score int  `json:"score"`
}

type RateProductRequest struct {
	Value int `json:"value" binding:"required,min=1,max=5"`
}

type RatingResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Value     int       `json:"value"`
}

// --- Favorites ---

type AddFavoriteRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// --- Supplies ---

type SupplyItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type CreateSupplyRequest struct {
	Items []SupplyItemRequest `json:"items" binding:"required,min=1,dive"`
}

type SupplyResponse struct {
	ID        uuid.UUID            `json:"id"`
	Supplier  string               `json:"supplier"`
	Items     []SupplyItemResponse `json:"items"`
	CreatedAt time.Time            `json:"created_at"`
}

type SupplyItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
}

// --- Admin ---

type AdminListRequest struct {
	Page  int    `form:"page,default=1" binding:"min=1"`
	Limit int    `form:"limit,default=10" binding:"min=1,max=100"`
	Sort  string `form:"sort"`
}

type AdminListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

type CreateBrandRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Logo        string `json:"logo"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateInstrumentTypeRequest struct {
	Name       string    `json:"name" binding:"required"`
	CategoryID uuid.UUID `json:"category_id" binding:"required"`
}

type CreateSupplierRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Phone       string    `json:"phone" binding:"required"`
	BankAccount string    `json:"bank_account" binding:"required"`
	INN         string    `json:"inn" binding:"required,len=12"`
	KPP         string    `json:"kpp" binding:"required,len=9"`
}

type SupplierResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	BankAccount string    `json:"bank_account"`
	INN         string    `json:"inn"`
	KPP         string    `json:"kpp"`
}

type SalesReportResponse struct {
	TotalSold int                `json:"total_sold"`
	Products  []ProductSalesItem `json:"products"`
}

type ProductSalesItem struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	SoldCount int       `json:"sold_count"`
}
