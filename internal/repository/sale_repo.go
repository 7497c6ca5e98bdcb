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

// SaleFilter narrows a sale listing; zero fields are ignored. To is inclusive.
type SaleFilter struct {
	ClientID      *uuid.UUID
	PaymentMethod string
	From          *time.Time
	To            *time.Time
}

// SaleTotals is the count and value of the sales matching a filter
type SaleTotals struct {
	Count int64
	Value decimal.Decimal
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Sale, error)
	FindByIDWithDetails(ctx context.Context, ownerID, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, ownerID uuid.UUID, filter SaleFilter, page, limit int) ([]model.Sale, int64, error)
	Totals(ctx context.Context, ownerID uuid.UUID, filter SaleFilter) (SaleTotals, error)
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	DeleteByClient(ctx context.Context, ownerID, clientID uuid.UUID) error
	CountByClient(ctx context.Context, ownerID, clientID uuid.UUID) (SaleTotals, error)

	CreateItem(ctx context.Context, item *model.SaleItem) error
	FindItem(ctx context.Context, saleID, itemID uuid.UUID) (*model.SaleItem, error)
	UpdateItem(ctx context.Context, item *model.SaleItem) error
	DeleteItem(ctx context.Context, saleID, itemID uuid.UUID) error
	ListItems(ctx context.Context, saleID uuid.UUID) ([]model.SaleItem, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(sale).Error
}

func (r *saleRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).First(&sale, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindByIDWithDetails loads the client, the items and the receivables ordered
// by due date
func (r *saleRepository) FindByIDWithDetails(ctx context.Context, ownerID, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Receivables", func(db *gorm.DB) *gorm.DB { return db.Order("due_date ASC") }).
		First(&sale, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) filtered(ctx context.Context, ownerID uuid.UUID, filter SaleFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&model.Sale{}).Where("sales.owner_id = ?", ownerID)
	if filter.ClientID != nil {
		query = query.Where("sales.client_id = ?", *filter.ClientID)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("sales.payment_method = ?", filter.PaymentMethod)
	}
	if filter.From != nil {
		query = query.Where("sales.sold_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sales.sold_at < ?", filter.To.AddDate(0, 0, 1))
	}
	return query
}

func (r *saleRepository) List(ctx context.Context, ownerID uuid.UUID, filter SaleFilter, page, limit int) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	query := r.filtered(ctx, ownerID, filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Client").Order("sold_at DESC").Offset(offset).Limit(limit).Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

func (r *saleRepository) Totals(ctx context.Context, ownerID uuid.UUID, filter SaleFilter) (SaleTotals, error) {
	var row struct {
		Count int64
		Value string
	}
	if err := r.filtered(ctx, ownerID, filter).
		Select("COUNT(*) AS count, " + sumText("sales.total_amount") + " AS value").
		Scan(&row).Error; err != nil {
		return SaleTotals{}, err
	}
	value, err := decimal.NewFromString(row.Value)
	if err != nil {
		return SaleTotals{}, err
	}
	return SaleTotals{Count: row.Count, Value: value.Round(2)}, nil
}

func (r *saleRepository) CountByClient(ctx context.Context, ownerID, clientID uuid.UUID) (SaleTotals, error) {
	return r.Totals(ctx, ownerID, SaleFilter{ClientID: &clientID})
}

func (r *saleRepository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Sale{}).Where("id = ?", id).Update("total_amount", total).Error
}

// Delete removes the sale together with its items and receivables
func (r *saleRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("sale_id = ? AND owner_id = ?", id, ownerID).Delete(&model.ReceivableAccount{}).Error; err != nil {
		return err
	}
	if err := db.Where("sale_id IN (?)", db.Model(&model.Sale{}).Select("id").Where("id = ? AND owner_id = ?", id, ownerID)).
		Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Sale{}).Error
}

// DeleteByClient removes every sale of a client with their items and receivables
func (r *saleRepository) DeleteByClient(ctx context.Context, ownerID, clientID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	saleIDs := db.Model(&model.Sale{}).Select("id").Where("client_id = ? AND owner_id = ?", clientID, ownerID)

	if err := db.Where("owner_id = ? AND sale_id IN (?)", ownerID, saleIDs).Delete(&model.ReceivableAccount{}).Error; err != nil {
		return err
	}
	if err := db.Where("sale_id IN (?)", saleIDs).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	return db.Where("client_id = ? AND owner_id = ?", clientID, ownerID).Delete(&model.Sale{}).Error
}

func (r *saleRepository) CreateItem(ctx context.Context, item *model.SaleItem) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(item).Error
}

func (r *saleRepository) FindItem(ctx context.Context, saleID, itemID uuid.UUID) (*model.SaleItem, error) {
	var item model.SaleItem
	if err := GetDB(ctx, r.db).First(&item, "id = ? AND sale_id = ?", itemID, saleID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *saleRepository) UpdateItem(ctx context.Context, item *model.SaleItem) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(item).Error
}

func (r *saleRepository) DeleteItem(ctx context.Context, saleID, itemID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND sale_id = ?", itemID, saleID).Delete(&model.SaleItem{}).Error
}

func (r *saleRepository) ListItems(ctx context.Context, saleID uuid.UUID) ([]model.SaleItem, error) {
	var items []model.SaleItem
	if err := GetDB(ctx, r.db).Where("sale_id = ?", saleID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
