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
	ErrNotSupplier      = errors.New("no supplier profile for user")
	ErrSupplierExists   = errors.New("supplier already registered for user")
	ErrSupplierNotFound = errors.New("supplier not found")
)

type SupplyService struct {
	supplyRepo  repository.SupplyRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewSupplyService(supplyRepo repository.SupplyRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository) *SupplyService {
	return &SupplyService{supplyRepo: supplyRepo, productRepo: productRepo, userRepo: userRepo}
}

// CreateSupply records a delivery from the supplier tied to the user and
// increments stock for every supplied product.
func (s *SupplyService) CreateSupply(ctx context.Context, userID uuid.UUID, req dto.CreateSupplyRequest) (*dto.SupplyResponse, error) {
	supplier, err := s.supplyRepo.GetSupplierByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	if supplier == nil {
		return nil, ErrNotSupplier
	}

	items := make([]model.SupplyItem, 0, len(req.Items))
	for _, it := range req.Items {
		product, err := s.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, ErrProductNotFound
		}
		items = append(items, model.SupplyItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Title:     product.Title,
		})
	}

	supply := &model.Supply{SupplierID: supplier.ID, Supplier: supplier.Name, Items: items}
	if err := s.supplyRepo.CreateSupply(ctx, supply); err != nil {
		return nil, fmt.Errorf("create supply: %w", err)
	}

	resp := toSupplyResponse(supply)
	return &resp, nil
}

func (s *SupplyService) ListSupplies(ctx context.Context, req dto.AdminListRequest) (*dto.AdminListResponse[dto.SupplyResponse], error) {
	supplies, total, err := s.supplyRepo.ListSupplies(ctx, req.Limit, (req.Page-1)*req.Limit, req.Sort)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}

	items := make([]dto.SupplyResponse, 0, len(supplies))
	for i := range supplies {
		items = append(items, toSupplyResponse(&supplies[i]))
	}
	return &dto.AdminListResponse[dto.SupplyResponse]{Data: items, Total: total}, nil
}

func (s *SupplyService) ListSupplyItems(ctx context.Context, req dto.AdminListRequest) ([]dto.SupplyItemResponse, error) {
	rows, err := s.supplyRepo.ListSupplyItems(ctx, req.Limit, (req.Page-1)*req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list supply items: %w", err)
	}

	items := make([]dto.SupplyItemResponse, 0, len(rows))
	for _, it := range rows {
		items = append(items, toSupplyItemResponse(it))
	}
	return items, nil
}

func (s *SupplyService) CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.supplyRepo.GetSupplierByUserID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	if existing != nil {
		return nil, ErrSupplierExists
	}

	supplier := &model.Supplier{
		UserID:      req.UserID,
		Name:        req.Name,
		Phone:       req.Phone,
		BankAccount: req.BankAccount,
		INN:         req.INN,
		KPP:         req.KPP,
	}
	if err := s.supplyRepo.CreateSupplier(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}

	resp := toSupplierResponse(supplier)
	return &resp, nil
}

func (s *SupplyService) GetSupplier(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	supplier, err := s.supplyRepo.GetSupplierByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	if supplier == nil {
		return nil, ErrSupplierNotFound
	}
	resp := toSupplierResponse(supplier)
	return &resp, nil
}

func (s *SupplyService) ListSuppliers(ctx context.Context, req dto.AdminListRequest) (*dto.AdminListResponse[dto.SupplierResponse], error) {
	suppliers, total, err := s.supplyRepo.ListSuppliers(ctx, req.Limit, (req.Page-1)*req.Limit, req.Sort)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}

	items := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		items = append(items, toSupplierResponse(&suppliers[i]))
	}
	return &dto.AdminListResponse[dto.SupplierResponse]{Data: items, Total: total}, nil
}

func toSupplyResponse(sp *model.Supply) dto.SupplyResponse {
	items := make([]dto.SupplyItemResponse, 0, len(sp.Items))
	for _, it := range sp.Items {
		items = append(items, toSupplyItemResponse(it))
	}
	return dto.SupplyResponse{
		ID:        sp.ID,
		Supplier:  sp.Supplier,
		Items:     items,
		CreatedAt: sp.CreatedAt,
	}
}

func toSupplyItemResponse(it model.SupplyItem) dto.SupplyItemResponse {
	return dto.SupplyItemResponse{
		ID:        it.ID,
		ProductID: it.ProductID,
		Title:     it.Title,
		Quantity:  it.Quantity,
	}
}

func toSupplierResponse(sp *model.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{
		ID:          sp.ID,
		UserID:      sp.UserID,
		Name:        sp.Name,
		Phone:       sp.Phone,
		BankAccount: sp.BankAccount,
		INN:         sp.INN,
		KPP:         sp.KPP,
	}
}
