package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"salesledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSaleRepository_ItemsAndDetails(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSaleRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	client := createClient(t, db, owner.ID, "Ana")
	product := createProduct(t, db, owner.ID, "Perfume", "10.00")
	sale := createSale(t, db, owner.ID, client.ID, day(2024, time.May, 1), "0")

	item := &model.SaleItem{SaleID: sale.ID, ProductID: &product.ID, ProductName: product.Name, Quantity: 2, UnitPrice: product.Price}
	item.ComputeSubtotal()
	require.NoError(t, repo.CreateItem(ctx, item))

	items, err := repo.ListItems(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Subtotal.Equal(decimal.RequireFromString("20")))

	require.NoError(t, repo.UpdateTotal(ctx, sale.ID, decimal.RequireFromString("20")))

	loaded, err := repo.FindByIDWithDetails(ctx, owner.ID, sale.ID)
	require.NoError(t, err)
	assert.True(t, loaded.TotalAmount.Equal(decimal.RequireFromString("20")))
	require.NotNil(t, loaded.Client)
	assert.Equal(t, "Ana", loaded.Client.Name)
	assert.Len(t, loaded.Items, 1)

	found, err := repo.FindItem(ctx, sale.ID, item.ID)
	require.NoError(t, err)
	found.Quantity = 3
	found.ComputeSubtotal()
	require.NoError(t, repo.UpdateItem(ctx, found))

	items, err = repo.ListItems(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, items[0].Subtotal.Equal(decimal.RequireFromString("30")))

	require.NoError(t, repo.DeleteItem(ctx, sale.ID, item.ID))
	items, err = repo.ListItems(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSaleRepository_OwnerScope(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSaleRepository(db)
	ctx := context.Background()

	ownerA := createUser(t, db, "a@example.com")
	ownerB := createUser(t, db, "b@example.com")
	client := createClient(t, db, ownerA.ID, "Ana")
	sale := createSale(t, db, ownerA.ID, client.ID, day(2024, time.May, 1), "10")

	_, err := repo.FindByID(ctx, ownerB.ID, sale.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	sales, total, err := repo.List(ctx, ownerB.ID, SaleFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, sales)

	require.NoError(t, repo.Delete(ctx, ownerB.ID, sale.ID))
	_, err = repo.FindByID(ctx, ownerA.ID, sale.ID)
	assert.NoError(t, err)
}

func TestSaleRepository_ListAndTotals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSaleRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	ana := createClient(t, db, owner.ID, "Ana")
	bia := createClient(t, db, owner.ID, "Bia")
	createSale(t, db, owner.ID, ana.ID, time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC), "10.10")
	createSale(t, db, owner.ID, ana.ID, time.Date(2024, time.May, 31, 23, 0, 0, 0, time.UTC), "20.20")
	createSale(t, db, owner.ID, bia.ID, time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC), "5.00")

	from, to := day(2024, time.May, 1), day(2024, time.May, 31)
	sales, total, err := repo.List(ctx, owner.ID, SaleFilter{From: &from, To: &to}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, sales, 2)
	assert.True(t, sales[0].SoldAt.After(sales[1].SoldAt))

	totals, err := repo.Totals(ctx, owner.ID, SaleFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Count)
	assert.True(t, totals.Value.Equal(decimal.RequireFromString("30.30")), totals.Value.String())

	byClient, err := repo.CountByClient(ctx, owner.ID, bia.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byClient.Count)

	none, err := repo.Totals(ctx, owner.ID, SaleFilter{PaymentMethod: model.PaymentCash})
	require.NoError(t, err)
	assert.Zero(t, none.Count)
	assert.True(t, none.Value.IsZero())
}

func TestSaleRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSaleRepository(db)
	receivables := NewReceivableRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	ana := createClient(t, db, owner.ID, "Ana")
	bia := createClient(t, db, owner.ID, "Bia")
	first := createSale(t, db, owner.ID, ana.ID, day(2024, time.May, 1), "10")
	second := createSale(t, db, owner.ID, ana.ID, day(2024, time.May, 2), "10")
	kept := createSale(t, db, owner.ID, bia.ID, day(2024, time.May, 3), "10")

	for _, s := range []*model.Sale{first, second, kept} {
		item := &model.SaleItem{SaleID: s.ID, ProductName: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}
		item.ComputeSubtotal()
		require.NoError(t, repo.CreateItem(ctx, item))
		require.NoError(t, receivables.CreateBatch(ctx, []model.ReceivableAccount{{
			OwnerID: owner.ID, SaleID: s.ID, ClientID: s.ClientID, Amount: decimal.NewFromInt(10),
			DueDate: s.DueDate, Status: model.StatusPending,
		}}))
	}

	require.NoError(t, repo.Delete(ctx, owner.ID, first.ID))
	var itemCount, recvCount int64
	db.Model(&model.SaleItem{}).Where("sale_id = ?", first.ID).Count(&itemCount)
	db.Model(&model.ReceivableAccount{}).Where("sale_id = ?", first.ID).Count(&recvCount)
	assert.Zero(t, itemCount)
	assert.Zero(t, recvCount)

	require.NoError(t, repo.DeleteByClient(ctx, owner.ID, ana.ID))
	_, err := repo.FindByID(ctx, owner.ID, second.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var remainingItems, remainingRecv int64
	db.Model(&model.SaleItem{}).Count(&remainingItems)
	db.Model(&model.ReceivableAccount{}).Count(&remainingRecv)
	assert.Equal(t, int64(1), remainingItems)
	assert.Equal(t, int64(1), remainingRecv)

	_, err = repo.FindByID(ctx, owner.ID, kept.ID)
	assert.NoError(t, err)
}
