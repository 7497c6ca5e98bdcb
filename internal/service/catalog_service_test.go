package service

import (
	"context"
	"errors"
	"testing"

	"salesledger/internal/model"
	"salesledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClients_CreateUpdateAndConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "ana@example.com")
	other := f.owner(t, "bia@example.com")

	created, err := f.clients.Create(ctx, owner, ClientRequest{
		Name:  "  Maria Souza ",
		Email: "maria@example.com",
		State: "sp",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", created.Name)
	assert.Equal(t, "SP", created.State)
	assert.True(t, created.IsActive)

	_, err = f.clients.Create(ctx, owner, ClientRequest{Name: "Maria Souza"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// names are unique per owner only
	_, err = f.clients.Create(ctx, other, ClientRequest{Name: "Maria Souza"})
	require.NoError(t, err)

	_, err = f.clients.Create(ctx, owner, ClientRequest{Name: "Bad", Email: "not-an-email"})
	assert.True(t, apperror.IsValidation(err))
	_, err = f.clients.Create(ctx, owner, ClientRequest{Name: "Bad", State: "SPX"})
	assert.True(t, apperror.IsValidation(err))
	_, err = f.clients.Create(ctx, owner, ClientRequest{Name: "   "})
	assert.True(t, apperror.IsValidation(err))

	inactive := false
	updated, err := f.clients.Update(ctx, owner, created.ID, ClientRequest{Name: "Maria S.", City: "Campinas", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Maria S.", updated.Name)
	assert.False(t, updated.IsActive)

	// keeping its own name is not a conflict
	_, err = f.clients.Update(ctx, owner, created.ID, ClientRequest{Name: "Maria S.", IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.clients.Update(ctx, other, created.ID, ClientRequest{Name: "x"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestClients_ListByStatusAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "ana@example.com")
	f.client(t, owner, "Maria")
	f.client(t, owner, "Mariana")
	inactive := false
	_, err := f.clients.Create(ctx, owner, ClientRequest{Name: "Marta", IsActive: &inactive})
	require.NoError(t, err)

	active, total, err := f.clients.List(ctx, owner, ClientListQuery{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, active, 2)

	_, total, err = f.clients.List(ctx, owner, ClientListQuery{Status: "inactive"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = f.clients.List(ctx, owner, ClientListQuery{Status: "all"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	found, total, err := f.clients.List(ctx, owner, ClientListQuery{Status: "all", Search: "MARIAN"}, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, "Mariana", found[0].Name)
}

func TestClients_DetailAndCascadingDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "ana@example.com")
	clientID := f.client(t, owner, "Maria")
	perfume := f.product(t, owner, "Perfume", "12.00")

	for _, qty := range []string{"1", "2"} {
		_, err := f.sales.CreateSale(ctx, owner, CreateSaleRequest{
			ClientID:     clientID,
			DueDate:      "2024-06-01",
			Installments: 2,
			Items:        []SaleItemRequest{{ProductID: perfume, Quantity: qty}},
		})
		require.NoError(t, err)
	}

	detail, err := f.clients.Get(ctx, owner, clientID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.SalesCount)
	assert.True(t, detail.SalesTotal.Equal(dec("36")), detail.SalesTotal.String())
	require.Len(t, detail.Receivables, 4)
	assert.Equal(t, model.StatusOverdue, detail.Receivables[0].Status)
	assert.Equal(t, model.StatusPending, detail.Receivables[3].Status)

	require.NoError(t, f.clients.Delete(ctx, owner, clientID))
	assert.Zero(t, f.count(t, &model.Client{}))
	assert.Zero(t, f.count(t, &model.Sale{}))
	assert.Zero(t, f.count(t, &model.SaleItem{}))
	assert.Zero(t, f.count(t, &model.ReceivableAccount{}))
	assert.Equal(t, int64(1), f.count(t, &model.Product{}))

	_, err = f.clients.Get(ctx, owner, clientID)
	assert.True(t, apperror.IsNotFound(err))

	logs, _, err := f.audit.List(ctx, owner, model.ActionDeleteClient, 1, 20)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Details, `"deleted_sales":2`)
}

func TestProducts_CRUDAndBrands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "ana@example.com")

	brands, err := f.products.ListBrands(ctx)
	require.NoError(t, err)
	require.Len(t, brands, len(model.DefaultBrands))

	created, err := f.products.Create(ctx, owner, ProductRequest{Name: "Perfume", Price: "89,90", Stock: 3, BrandID: brands[0].ID})
	require.NoError(t, err)
	assert.True(t, created.Price.Equal(dec("89.90")))
	require.NotNil(t, created.Brand)
	assert.Equal(t, brands[0].Name, created.Brand.Name)

	// an unknown brand is dropped rather than rejected
	plain, err := f.products.Create(ctx, owner, ProductRequest{Name: "Soap", Price: "3", BrandID: uuid.NewString()})
	require.NoError(t, err)
	assert.Nil(t, plain.Brand)

	_, err = f.products.Create(ctx, owner, ProductRequest{Name: "perfume ", Price: "1"})
	assert.True(t, errors.Is(err, apperror.ErrConflict), "got %v", err)
	_, err = f.products.Create(ctx, owner, ProductRequest{Name: "Lotion", Price: "-1"})
	assert.True(t, apperror.IsValidation(err))
	_, err = f.products.Create(ctx, owner, ProductRequest{Name: "Lotion", Price: "1", Stock: -2})
	assert.True(t, apperror.IsValidation(err))

	byBrand, total, err := f.products.List(ctx, owner, ProductListQuery{BrandID: brands[0].ID}, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, created.ID, byBrand[0].ID)

	_, total, err = f.products.List(ctx, owner, ProductListQuery{Search: "SOA"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, f.products.Delete(ctx, owner, plain.ID))
	_, err = f.products.Get(ctx, owner, plain.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestProducts_AdjustStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.owner(t, "ana@example.com")
	id := f.product(t, owner, "Perfume", "10")

	added, err := f.products.AdjustStock(ctx, owner, id, StockAdjustmentRequest{Operation: "add", Quantity: 5, Reason: "restock"})
	require.NoError(t, err)
	assert.Equal(t, 15, added.Stock)

	removed, err := f.products.AdjustStock(ctx, owner, id, StockAdjustmentRequest{Operation: "REMOVE", Quantity: 15})
	require.NoError(t, err)
	assert.Equal(t, 0, removed.Stock)

	_, err = f.products.AdjustStock(ctx, owner, id, StockAdjustmentRequest{Operation: "REMOVE", Quantity: 1})
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "available: 0")

	_, err = f.products.AdjustStock(ctx, owner, id, StockAdjustmentRequest{Operation: "SET", Quantity: 1})
	assert.True(t, apperror.IsValidation(err))
	_, err = f.products.AdjustStock(ctx, owner, id, StockAdjustmentRequest{Operation: "ADD", Quantity: 0})
	assert.True(t, apperror.IsValidation(err))

	got, err := f.products.Get(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	logs, total, err := f.audit.List(ctx, owner, model.ActionAdjustStock, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	reasons := make([]string, 0, len(logs))
	for _, l := range logs {
		reasons = append(reasons, l.Details)
	}
	assert.Contains(t, reasons[0]+reasons[1], `"reason":"restock"`)
}
