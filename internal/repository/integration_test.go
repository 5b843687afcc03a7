package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexrel213/music-store-finally/internal/model"
)

func createTestUser(t *testing.T, email string) *model.User {
	t.Helper()
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	role, err := repo.GetRoleByName(ctx, "customer")
	require.NoError(t, err)
	require.NotNil(t, role, "roles must be seeded by the migration")

	user := &model.User{Name: "Test User", Email: email, Password: "hashed", RoleID: role.ID}
	require.NoError(t, repo.Create(ctx, user))
	return user
}

func createTestProduct(t *testing.T, title string, price float64, stock int) *model.Product {
	t.Helper()
	ctx := context.Background()

	category := &model.Category{Name: "Strings"}
	require.NoError(t, NewCategoryRepository(testPool).Create(ctx, category))

	it := &model.InstrumentType{Name: "Guitar", CategoryID: category.ID}
	require.NoError(t, NewInstrumentTypeRepository(testPool).Create(ctx, it))

	brand := &model.Brand{Name: "Fender"}
	require.NoError(t, NewBrandRepository(testPool).Create(ctx, brand))

	product := &model.Product{
		Title: title, Description: "Desc",
		Price: decimal.NewFromFloat(price), Quantity: stock,
		InstrumentTypeID: it.ID, BrandID: brand.ID,
	}
	require.NoError(t, NewProductRepository(testPool).Create(ctx, product))
	return product
}

func TestUserRepo_CreateAndGetByEmail(t *testing.T) {
	cleanupTable(t, allTables...)

	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "test@example.com")
	assert.NotEqual(t, uuid.Nil, user.ID)

	found, err := repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "customer", found.Role)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_Avatar(t *testing.T) {
	cleanupTable(t, allTables...)

	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "avatar@example.com")
	require.NoError(t, repo.UpdateAvatar(ctx, user.ID, []byte{0x89, 0x50, 0x4e, 0x47}))

	avatar, err := repo.GetAvatar(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, avatar)
}

func TestProductRepo_CRUD(t *testing.T) {
	cleanupTable(t, allTables...)

	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := createTestProduct(t, "Stratocaster", 1299.99, 10)
	assert.NotEqual(t, uuid.Nil, product.ID)

	found, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Stratocaster", found.Title)
	assert.Equal(t, "Fender", found.Brand)
	assert.Equal(t, "Guitar", found.InstrumentType)

	product.Title = "Telecaster"
	require.NoError(t, repo.Update(ctx, product))
	found, _ = repo.GetByID(ctx, product.ID)
	assert.Equal(t, "Telecaster", found.Title)

	require.NoError(t, repo.Delete(ctx, product.ID))
	found, err = repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	// mutations on a deleted row surface no-rows like Delete does
	assert.ErrorIs(t, repo.Update(ctx, product), pgx.ErrNoRows)
}

func TestUserRepo_Update_Missing(t *testing.T) {
	cleanupTable(t, allTables...)

	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "gone@example.com")
	require.NoError(t, repo.Delete(ctx, user.ID))

	assert.ErrorIs(t, repo.Update(ctx, user), pgx.ErrNoRows)
}

func TestProductRepo_ListFiltered(t *testing.T) {
	cleanupTable(t, allTables...)

	repo := NewProductRepository(testPool)
	ctx := context.Background()

	strat := createTestProduct(t, "Stratocaster", 1299.99, 10)
	createTestProduct(t, "Snare Drum", 349.50, 5)

	products, total, err := repo.List(ctx, ProductFilter{Search: "strato", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, strat.ID, products[0].ID)

	min := 1000.0
	products, total, err = repo.List(ctx, ProductFilter{PriceMin: &min, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, strat.ID, products[0].ID)
}

func TestOrderRepo_AddItemMergesQuantity(t *testing.T) {
	cleanupTable(t, allTables...)

	repo := NewOrderRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "cart@example.com")
	product := createTestProduct(t, "Bass", 899, 10)

	cart, err := repo.CreateCart(ctx, user.ID, "1111111111116")
	require.NoError(t, err)

	first, err := repo.AddItem(ctx, cart.ID, product.ID, 2)
	require.NoError(t, err)
	second, err := repo.AddItem(ctx, cart.ID, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	cart, err = repo.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "Bass", cart.Items[0].Title)
}

func TestOrderRepo_Checkout(t *testing.T) {
	cleanupTable(t, allTables...)

	orderRepo := NewOrderRepository(testPool)
	productRepo := NewProductRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "checkout@example.com")
	product := createTestProduct(t, "Violin", 450, 5)

	cart, err := orderRepo.CreateCart(ctx, user.ID, "1111111111116")
	require.NoError(t, err)
	item, err := orderRepo.AddItem(ctx, cart.ID, product.ID, 2)
	require.NoError(t, err)

	completed, err := orderRepo.Checkout(ctx, user.ID, []uuid.UUID{item.ID}, "2222222222222")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, completed.Status)
	assert.Equal(t, "2222222222222", completed.Barcode)
	require.Len(t, completed.Items, 1)

	found, _ := productRepo.GetByID(ctx, product.ID)
	assert.Equal(t, 3, found.Quantity)

	cart, err = orderRepo.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Empty(t, cart.Items)

	purchased, err := orderRepo.HasPurchased(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, purchased)

	latest, err := orderRepo.LatestWithBarcode(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, completed.ID, latest.ID)

	// completed line items are no longer editable
	editable, err := orderRepo.GetItemForUser(ctx, completed.Items[0].ID, user.ID)
	require.NoError(t, err)
	assert.Nil(t, editable)
}

func TestOrderRepo_Checkout_IgnoresForeignItems(t *testing.T) {
	cleanupTable(t, allTables...)

	orderRepo := NewOrderRepository(testPool)
	productRepo := NewProductRepository(testPool)
	ctx := context.Background()

	owner := createTestUser(t, "owner@example.com")
	thief := createTestUser(t, "thief@example.com")
	product := createTestProduct(t, "Saxophone", 1500, 10)

	ownerCart, err := orderRepo.CreateCart(ctx, owner.ID, "1111111111116")
	require.NoError(t, err)
	ownerItem, err := orderRepo.AddItem(ctx, ownerCart.ID, product.ID, 4)
	require.NoError(t, err)

	// owner completes a purchase so there is also a completed line to target
	completed, err := orderRepo.Checkout(ctx, owner.ID, []uuid.UUID{ownerItem.ID}, "2222222222222")
	require.NoError(t, err)
	require.Len(t, completed.Items, 1)
	completedItemID := completed.Items[0].ID

	// the cart row survives checkout, so the owner keeps adding to it
	ownerCart, err = orderRepo.GetCart(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, ownerCart)
	ownerCartItem, err := orderRepo.AddItem(ctx, ownerCart.ID, product.ID, 2)
	require.NoError(t, err)

	thiefCart, err := orderRepo.CreateCart(ctx, thief.ID, "4444444444446")
	require.NoError(t, err)
	thiefItem, err := orderRepo.AddItem(ctx, thiefCart.ID, product.ID, 1)
	require.NoError(t, err)

	// ids outside the caller's cart must not be re-parented
	stolen, err := orderRepo.Checkout(ctx, thief.ID,
		[]uuid.UUID{thiefItem.ID, ownerCartItem.ID, completedItemID}, "5555555555553")
	require.NoError(t, err)
	require.Len(t, stolen.Items, 1)
	assert.Equal(t, thiefItem.ID, stolen.Items[0].ID)

	// only the thief's own quantity was decremented (10 - 4 - 1)
	found, _ := productRepo.GetByID(ctx, product.ID)
	assert.Equal(t, 5, found.Quantity)

	ownerCart, err = orderRepo.GetCart(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, ownerCart.Items, 1)
	assert.Equal(t, ownerCartItem.ID, ownerCart.Items[0].ID)

	ownerOrders, err := orderRepo.ListCompletedByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, ownerOrders, 1)
	require.Len(t, ownerOrders[0].Items, 1)
	assert.Equal(t, completedItemID, ownerOrders[0].Items[0].ID)
}

func TestOrderRepo_Checkout_InsufficientStock(t *testing.T) {
	cleanupTable(t, allTables...)

	orderRepo := NewOrderRepository(testPool)
	productRepo := NewProductRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "nostock@example.com")
	product := createTestProduct(t, "Cello", 2100, 3)

	cart, err := orderRepo.CreateCart(ctx, user.ID, "1111111111116")
	require.NoError(t, err)
	item, err := orderRepo.AddItem(ctx, cart.ID, product.ID, 7)
	require.NoError(t, err)

	_, err = orderRepo.Checkout(ctx, user.ID, []uuid.UUID{item.ID}, "2222222222222")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	// stock untouched, item still in the cart
	found, _ := productRepo.GetByID(ctx, product.ID)
	assert.Equal(t, 3, found.Quantity)

	cart, err = orderRepo.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestReviewRepo_UpsertRating(t *testing.T) {
	cleanupTable(t, allTables...)

	reviewRepo := NewReviewRepository(testPool)
	productRepo := NewProductRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "rating@example.com")
	product := createTestProduct(t, "Flute", 320, 5)

	first := &model.Rating{UserID: user.ID, ProductID: product.ID, Value: 3}
	require.NoError(t, reviewRepo.UpsertRating(ctx, first))

	second := &model.Rating{UserID: user.ID, ProductID: product.ID, Value: 5}
	require.NoError(t, reviewRepo.UpsertRating(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	avg, err := productRepo.AvgRating(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)
}

func TestSupplyRepo_CreateSupplyIncrementsStock(t *testing.T) {
	cleanupTable(t, allTables...)

	supplyRepo := NewSupplyRepository(testPool)
	productRepo := NewProductRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "supplier@example.com")
	product := createTestProduct(t, "Trumpet", 780, 5)

	supplier := &model.Supplier{
		UserID: user.ID, Name: "Brass Co", Phone: "+70000000000",
		BankAccount: "40702810000000000001", INN: "7700000000", KPP: "770001001",
	}
	require.NoError(t, supplyRepo.CreateSupplier(ctx, supplier))

	supply := &model.Supply{
		SupplierID: supplier.ID,
		Items:      []model.SupplyItem{{ProductID: product.ID, Quantity: 7}},
	}
	require.NoError(t, supplyRepo.CreateSupply(ctx, supply))

	found, _ := productRepo.GetByID(ctx, product.ID)
	assert.Equal(t, 12, found.Quantity)

	supplies, total, err := supplyRepo.ListSupplies(ctx, 10, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, supplies, 1)
	assert.Equal(t, "Brass Co", supplies[0].Supplier)
	require.Len(t, supplies[0].Items, 1)
	assert.Equal(t, "Trumpet", supplies[0].Items[0].Title)
}
