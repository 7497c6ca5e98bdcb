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

func TestReceivableRepository_FiltersAndSums(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReceivableRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	other := createUser(t, db, "b@example.com")
	ana := createClient(t, db, owner.ID, "Ana")
	bia := createClient(t, db, owner.ID, "Bia")
	sale := createSale(t, db, owner.ID, ana.ID, day(2024, time.May, 1), "60")
	biaSale := createSale(t, db, owner.ID, bia.ID, day(2024, time.May, 1), "7")

	accounts := []model.ReceivableAccount{
		{OwnerID: owner.ID, SaleID: sale.ID, ClientID: ana.ID, Amount: decimal.RequireFromString("10.10"), DueDate: day(2024, time.May, 1), Status: model.StatusOverdue},
		{OwnerID: owner.ID, SaleID: sale.ID, ClientID: ana.ID, Amount: decimal.RequireFromString("20.20"), DueDate: day(2024, time.June, 1), Status: model.StatusPending},
		{OwnerID: owner.ID, SaleID: sale.ID, ClientID: ana.ID, Amount: decimal.RequireFromString("30"), DueDate: day(2024, time.July, 1), Status: model.StatusPaid},
		{OwnerID: owner.ID, SaleID: biaSale.ID, ClientID: bia.ID, Amount: decimal.RequireFromString("7"), DueDate: day(2024, time.June, 15), Status: model.StatusPending},
	}
	require.NoError(t, repo.CreateBatch(ctx, accounts))

	pending := model.StatusPending
	list, total, err := repo.List(ctx, owner.ID, AccountFilter{Status: &pending}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, day(2024, time.June, 1), list[0].DueDate.UTC())
	require.NotNil(t, list[0].Client)

	list, total, err = repo.List(ctx, owner.ID, AccountFilter{ClientID: &ana.ID}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 3)

	from, to := day(2024, time.June, 1), day(2024, time.June, 30)
	totals, err := repo.Totals(ctx, owner.ID, AccountFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Count)
	assert.True(t, totals.Value.Equal(decimal.RequireFromString("27.20")), totals.Value.String())

	sums, err := repo.SumsByStatus(ctx, owner.ID, AccountFilter{Status: &pending, ClientID: &ana.ID})
	require.NoError(t, err)
	assert.True(t, sums[model.StatusOverdue].Equal(decimal.RequireFromString("10.10")))
	assert.True(t, sums[model.StatusPending].Equal(decimal.RequireFromString("20.20")))
	assert.True(t, sums[model.StatusPaid].Equal(decimal.NewFromInt(30)))

	open, err := repo.ListOpen(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, open, 3)

	none, err := repo.ListOpen(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReceivableRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReceivableRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	client := createClient(t, db, owner.ID, "Ana")
	sale := createSale(t, db, owner.ID, client.ID, day(2024, time.May, 1), "10")
	require.NoError(t, repo.CreateBatch(ctx, []model.ReceivableAccount{{
		OwnerID: owner.ID, SaleID: sale.ID, ClientID: client.ID, Amount: decimal.NewFromInt(10),
		DueDate: day(2024, time.May, 1), Status: model.StatusPending,
	}}))

	open, err := repo.ListOpen(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)

	acc := open[0]
	paidAt := day(2024, time.May, 2)
	acc.Status = model.StatusPaid
	acc.PaidAt = &paidAt
	require.NoError(t, repo.UpdateStatus(ctx, &acc))

	loaded, err := repo.FindByID(ctx, owner.ID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, loaded.Status)
	require.NotNil(t, loaded.PaidAt)
	require.NotNil(t, loaded.Sale)
	assert.Equal(t, sale.ID, loaded.Sale.ID)

	acc.Status = model.StatusPending
	acc.PaidAt = nil
	require.NoError(t, repo.UpdateStatus(ctx, &acc))
	loaded, err = repo.FindByID(ctx, owner.ID, acc.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.PaidAt)

	_, err = repo.FindByID(ctx, uuid.New(), acc.ID)
	assert.Error(t, err)
}

func TestPayableRepository_CRUDAndSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPayableRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "a@example.com")
	rent := &model.PayableAccount{OwnerID: owner.ID, Description: "Office rent", Amount: decimal.NewFromInt(1000), DueDate: day(2024, time.May, 5), Status: model.StatusPending}
	power := &model.PayableAccount{OwnerID: owner.ID, Description: "Electricity", Amount: decimal.RequireFromString("150.35"), DueDate: day(2024, time.May, 10), Status: model.StatusPending}
	require.NoError(t, repo.Create(ctx, rent))
	require.NoError(t, repo.Create(ctx, power))

	list, total, err := repo.List(ctx, owner.ID, AccountFilter{Search: "RENT"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, rent.ID, list[0].ID)

	power.Description = "Electricity bill"
	require.NoError(t, repo.Update(ctx, power))
	loaded, err := repo.FindByID(ctx, owner.ID, power.ID)
	require.NoError(t, err)
	assert.Equal(t, "Electricity bill", loaded.Description)

	totals, err := repo.Totals(ctx, owner.ID, AccountFilter{})
	require.NoError(t, err)
	assert.True(t, totals.Value.Equal(decimal.RequireFromString("1150.35")), totals.Value.String())

	require.NoError(t, repo.Delete(ctx, owner.ID, rent.ID))
	_, err = repo.FindByID(ctx, owner.ID, rent.ID)
	assert.Error(t, err)
}
