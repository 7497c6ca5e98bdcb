package repository

import (
	"context"
	"time"

	"salesledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountFilter narrows receivable and payable listings. Status nil means any
// status; From and To bound the due date inclusively.
type AccountFilter struct {
	Status   *model.AccountStatus
	ClientID *uuid.UUID // receivables only
	Search   string     // payables only, matched against the description
	From     *time.Time
	To       *time.Time
}

// AccountTotals is the count and value of the accounts matching a filter
type AccountTotals struct {
	Count int64
	Value decimal.Decimal
}

func applyAccountFilter(q *gorm.DB, f AccountFilter, withStatus bool) *gorm.DB {
	if withStatus && f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.Search != "" {
		q = q.Where("LOWER(description) LIKE ?", likePattern(f.Search))
	}
	if f.From != nil {
		q = q.Where("due_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("due_date <= ?", *f.To)
	}
	return q
}

func accountTotals(q *gorm.DB) (AccountTotals, error) {
	var row struct {
		Count int64
		Value string
	}
	if err := q.Select("COUNT(*) AS count, " + sumText("amount") + " AS value").Scan(&row).Error; err != nil {
		return AccountTotals{}, err
	}
	value, err := decimal.NewFromString(row.Value)
	if err != nil {
		return AccountTotals{}, err
	}
	return AccountTotals{Count: row.Count, Value: value.Round(2)}, nil
}

func sumsByStatus(q *gorm.DB) (map[model.AccountStatus]decimal.Decimal, error) {
	var rows []struct {
		Status model.AccountStatus
		Value  string
	}
	if err := q.Select("status, " + sumText("amount") + " AS value").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := map[model.AccountStatus]decimal.Decimal{
		model.StatusPending: decimal.Zero,
		model.StatusOverdue: decimal.Zero,
		model.StatusPaid:    decimal.Zero,
	}
	for _, row := range rows {
		value, err := decimal.NewFromString(row.Value)
		if err != nil {
			return nil, err
		}
		sums[row.Status] = value.Round(2)
	}
	return sums, nil
}

// ReceivableRepository reads and writes installments owed by clients
type ReceivableRepository interface {
	CreateBatch(ctx context.Context, accounts []model.ReceivableAccount) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.ReceivableAccount, error)
	UpdateStatus(ctx context.Context, account *model.ReceivableAccount) error
	ListOpen(ctx context.Context, ownerID uuid.UUID) ([]model.ReceivableAccount, error)
	ListByClient(ctx context.Context, ownerID, clientID uuid.UUID) ([]model.ReceivableAccount, error)
	List(ctx context.Context, ownerID uuid.UUID, filter AccountFilter, page, limit int) ([]model.ReceivableAccount, int64, error)
	Totals(ctx context.Context, ownerID uuid.UUID, filter AccountFilter) (AccountTotals, error)
	SumsByStatus(ctx context.Context, ownerID uuid.UUID, filter AccountFilter) (map[model.AccountStatus]decimal.Decimal, error)
}

type receivableRepository struct {
	db *gorm.DB
}

func NewReceivableRepository(db *gorm.DB) ReceivableRepository {
	return &receivableRepository{db: db}
}

func (r *receivableRepository) scoped(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return GetDB(ctx, r.db).Model(&model.ReceivableAccount{}).Where("owner_id = ?", ownerID)
}

func (r *receivableRepository) CreateBatch(ctx context.Context, accounts []model.ReceivableAccount) error {
	if len(accounts) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(&accounts).Error
}

func (r *receivableRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.ReceivableAccount, error) {
	var account model.ReceivableAccount
	if err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Sale").
		Preload("Sale.Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&account, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *receivableRepository) UpdateStatus(ctx context.Context, account *model.ReceivableAccount) error {
	return GetDB(ctx, r.db).Model(&model.ReceivableAccount{}).
		Where("id = ? AND owner_id = ?", account.ID, account.OwnerID).
		Updates(map[string]interface{}{"status": account.Status, "paid_at": account.PaidAt}).Error
}

func (r *receivableRepository) ListOpen(ctx context.Context, ownerID uuid.UUID) ([]model.ReceivableAccount, error) {
	var accounts []model.ReceivableAccount
	if err := r.scoped(ctx, ownerID).Where("status <> ?", model.StatusPaid).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *receivableRepository) ListByClient(ctx context.Context, ownerID, clientID uuid.UUID) ([]model.ReceivableAccount, error) {
	var accounts []model.ReceivableAccount
	if err := r.scoped(ctx, ownerID).Where("client_id = ?", clientID).Order("due_date ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *receivableRepository) List(ctx context.Context, ownerID uuid.UUID, filter AccountFilter, page, limit int) ([]model.ReceivableAccount, int64, error) {
	var accounts []model.ReceivableAccount
	var total int64

	query := applyAccountFilter(r.scoped(ctx, ownerID), filter, true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Client").Order("due_date ASC").Offset(offset).Limit(limit).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *receivableRepository) Totals(ctx context.Context, ownerID uuid.UUID, filter AccountFilter) (AccountTotals, error) {
	return accountTotals(applyAccountFilter(r.scoped(ctx, ownerID), filter, true))
}

// SumsByStatus ignores filter.Status so every status gets its figure
func (r *receivableRepository) SumsByStatus(ctx context.Context, ownerID uuid.UUID, filter AccountFilter) (map[model.AccountStatus]decimal.Decimal, error) {
	return sumsByStatus(applyAccountFilter(r.scoped(ctx, ownerID), filter, false))
}

// PayableRepository reads and writes the owner's bills
type PayableRepository interface {
	Create(ctx context.Context, account *model.PayableAccount) error
	Update(ctx context.Context, account *model.PayableAccount) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.PayableAccount, error)
	UpdateStatus(ctx context.Context, account *model.PayableAccount) error
	ListOpen(ctx context.Context, ownerID uuid.UUID) ([]model.PayableAccount, error)
	List(ctx context.Context, ownerID uuid.UUID, filter AccountFilter, page, limit int) ([]model.PayableAccount, int64, error)
	Totals(ctx context.Context, ownerID uuid.UUID, filter AccountFilter) (AccountTotals, error)
	SumsByStatus(ctx context.Context, ownerID uuid.UUID, filter AccountFilter) (map[model.AccountStatus]decimal.Decimal, error)
}

type payableRepository struct {
	db *gorm.DB
}

func NewPayableRepository(db *gorm.DB) PayableRepository {
	return &payableRepository{db: db}
}

func (r *payableRepository) scoped(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return GetDB(ctx, r.db).Model(&model.PayableAccount{}).Where("owner_id = ?", ownerID)
}

func (r *payableRepository) Create(ctx context.Context, account *model.PayableAccount) error {
	return GetDB(ctx, r.db).Create(account).Error
}

func (r *payableRepository) Update(ctx context.Context, account *model.PayableAccount) error {
	return GetDB(ctx, r.db).Save(account).Error
}

func (r *payableRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.PayableAccount{}).Error
}

func (r *payableRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.PayableAccount, error) {
	var account model.PayableAccount
	if err := GetDB(ctx, r.db).First(&account, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *payableRepository) UpdateStatus(ctx context.Context, account *model.PayableAccount) error {
	return GetDB(ctx, r.db).Model(&model.PayableAccount{}).
		Where("id = ? AND owner_id = ?", account.ID, account.OwnerID).
		Updates(map[string]interface{}{"status": account.Status, "paid_at": account.PaidAt}).Error
}

func (r *payableRepository) ListOpen(ctx context.Context, ownerID uuid.UUID) ([]model.PayableAccount, error) {
	var accounts []model.PayableAccount
	if err := r.scoped(ctx, ownerID).Where("status <> ?", model.StatusPaid).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *payableRepository) List(ctx context.Context, ownerID uuid.UUID, filter AccountFilter, page, limit int) ([]model.PayableAccount, int64, error) {
	var accounts []model.PayableAccount
	var total int64

	query := applyAccountFilter(r.scoped(ctx, ownerID), filter, true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("due_date ASC").Offset(offset).Limit(limit).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *payableRepository) Totals(ctx context.Context, ownerID uuid.UUID, filter AccountFilter) (AccountTotals, error) {
	return accountTotals(applyAccountFilter(r.scoped(ctx, ownerID), filter, true))
}

func (r *payableRepository) SumsByStatus(ctx context.Context, ownerID uuid.UUID, filter AccountFilter) (map[model.AccountStatus]decimal.Decimal, error) {
	return sumsByStatus(applyAccountFilter(r.scoped(ctx, ownerID), filter, false))
}
