package repository

import (
	"context"
	"fmt"
	"time"

	"salesledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository runs the aggregate queries behind the home screen
type DashboardRepository interface {
	CountActiveClients(ctx context.Context, ownerID uuid.UUID) (int64, error)
	CountActiveProducts(ctx context.Context, ownerID uuid.UUID) (int64, error)
	ReceivableTotals(ctx context.Context, ownerID uuid.UUID, today time.Time) (model.AccountTotals, error)
	PayableTotals(ctx context.Context, ownerID uuid.UUID, today time.Time) (model.AccountTotals, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountActiveClients(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Client{}).Where("owner_id = ? AND is_active = ?", ownerID, true).Count(&count).Error
	return count, err
}

func (r *dashboardRepository) CountActiveProducts(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Product{}).Where("owner_id = ? AND is_active = ?", ownerID, true).Count(&count).Error
	return count, err
}

func (r *dashboardRepository) ReceivableTotals(ctx context.Context, ownerID uuid.UUID, today time.Time) (model.AccountTotals, error) {
	return r.accountTotals(ctx, &model.ReceivableAccount{}, ownerID, today)
}

func (r *dashboardRepository) PayableTotals(ctx context.Context, ownerID uuid.UUID, today time.Time) (model.AccountTotals, error) {
	return r.accountTotals(ctx, &model.PayableAccount{}, ownerID, today)
}

func (r *dashboardRepository) accountTotals(ctx context.Context, table interface{}, ownerID uuid.UUID, today time.Time) (model.AccountTotals, error) {
	var totals model.AccountTotals
	db := GetDB(ctx, r.db)

	overdue, err := r.sum(db.Model(table).Where("owner_id = ? AND status = ?", ownerID, model.StatusOverdue))
	if err != nil {
		return totals, fmt.Errorf("failed to sum overdue accounts: %w", err)
	}
	dueToday, err := r.sum(db.Model(table).Where("owner_id = ? AND status <> ? AND due_date = ?", ownerID, model.StatusPaid, today))
	if err != nil {
		return totals, fmt.Errorf("failed to sum accounts due today: %w", err)
	}
	if err := db.Model(table).Where("owner_id = ? AND status = ?", ownerID, model.StatusPending).Count(&totals.PendingCount).Error; err != nil {
		return totals, fmt.Errorf("failed to count pending accounts: %w", err)
	}

	totals.OverdueSum = overdue
	totals.DueTodaySum = dueToday
	return totals, nil
}

func (r *dashboardRepository) sum(q *gorm.DB) (decimal.Decimal, error) {
	var value string
	if err := q.Select(sumText("amount")).Scan(&value).Error; err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}
