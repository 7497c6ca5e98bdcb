package repository

import (
	"context"
	"testing"
	"time"

	"salesledger/internal/config"
	"salesledger/internal/database"
	"salesledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewConnection(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
		LogLevel:   "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Name: email, Username: email, Email: email, Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createClient(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string) *model.Client {
	t.Helper()
	client := &model.Client{OwnerID: ownerID, Name: name, IsActive: true}
	require.NoError(t, NewClientRepository(db).Create(context.Background(), client))
	return client
}

func createProduct(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name, price string) *model.Product {
	t.Helper()
	product := &model.Product{OwnerID: ownerID, Name: name, Price: decimal.RequireFromString(price), Stock: 10, IsActive: true}
	require.NoError(t, NewProductRepository(db).Create(context.Background(), product))
	return product
}

func createSale(t *testing.T, db *gorm.DB, ownerID, clientID uuid.UUID, soldAt time.Time, total string) *model.Sale {
	t.Helper()
	sale := &model.Sale{
		OwnerID:       ownerID,
		ClientID:      clientID,
		SoldAt:        soldAt,
		TotalAmount:   decimal.RequireFromString(total),
		PaymentMethod: model.PaymentPix,
		DueDate:       day(soldAt.Year(), soldAt.Month(), soldAt.Day()),
	}
	require.NoError(t, NewSaleRepository(db).Create(context.Background(), sale))
	return sale
}
