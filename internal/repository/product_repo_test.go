package repository

import (
	"context"
	"testing"
	"time"

	"salesledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_DeleteDetachesSaleItems(t *testing.T) {
	db := setupTestDB(t)
	products := NewProductRepository(db)
	sales := NewSaleRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	client := createClient(t, db, owner.ID, "Ana")
	product := createProduct(t, db, owner.ID, "Perfume", "10")
	sale := createSale(t, db, owner.ID, client.ID, day(2024, time.May, 1), "10")

	item := &model.SaleItem{SaleID: sale.ID, ProductID: &product.ID, ProductName: product.Name, Quantity: 1, UnitPrice: product.Price}
	item.ComputeSubtotal()
	require.NoError(t, sales.CreateItem(ctx, item))

	require.NoError(t, products.Delete(ctx, owner.ID, product.ID))

	_, err := products.FindByID(ctx, owner.ID, product.ID)
	assert.Error(t, err)

	items, err := sales.ListItems(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].ProductID)
	assert.Equal(t, "Perfume", items[0].ProductName)
	assert.True(t, items[0].Subtotal.Equal(decimal.NewFromInt(10)))
}

func TestProductRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	brands, err := repo.ListBrands(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brands)
	brandID := brands[0].ID

	lotion := &model.Product{OwnerID: owner.ID, Name: "Lotion", Description: "Body care", Price: decimal.NewFromInt(30), BrandID: &brandID, IsActive: true}
	soap := &model.Product{OwnerID: owner.ID, Name: "Soap", Description: "Lavender", Price: decimal.NewFromInt(5), IsActive: false}
	require.NoError(t, repo.Create(ctx, lotion))
	require.NoError(t, repo.Create(ctx, soap))

	active := true
	list, total, err := repo.List(ctx, owner.ID, ProductFilter{Active: &active}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Lotion", list[0].Name)
	require.NotNil(t, list[0].Brand)

	list, _, err = repo.List(ctx, owner.ID, ProductFilter{Search: "lavender"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Soap", list[0].Name)
	assert.False(t, list[0].IsActive)

	_, total, err = repo.List(ctx, owner.ID, ProductFilter{BrandID: &brandID}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	taken, err := repo.NameTaken(ctx, owner.ID, "lotion", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.NameTaken(ctx, owner.ID, "Lotion", lotion.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, repo.UpdateStock(ctx, owner.ID, lotion.ID, 42))
	loaded, err := repo.FindByID(ctx, owner.ID, lotion.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Stock)
}

func TestClientRepository_ListAndNameTaken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClientRepository(db)
	ctx := context.Background()

	ownerA := createUser(t, db, "a@example.com")
	ownerB := createUser(t, db, "b@example.com")
	createClient(t, db, ownerA.ID, "Ana Souza")
	inactive := &model.Client{OwnerID: ownerA.ID, Name: "Carla", IsActive: false}
	require.NoError(t, repo.Create(ctx, inactive))

	taken, err := repo.NameTaken(ctx, ownerB.ID, "Ana Souza", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken)

	list, total, err := repo.List(ctx, ownerA.ID, ClientFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Ana Souza", list[0].Name)

	active := true
	_, total, err = repo.List(ctx, ownerA.ID, ClientFilter{Active: &active, Search: "souza"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	inactive.Phone = "11999990000"
	require.NoError(t, repo.Update(ctx, inactive))
	loaded, err := repo.FindByID(ctx, ownerA.ID, inactive.ID)
	require.NoError(t, err)
	assert.Equal(t, "11999990000", loaded.Phone)
	assert.False(t, loaded.IsActive)
}
