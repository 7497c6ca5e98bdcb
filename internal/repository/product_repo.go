package repository

import (
	"context"

	"salesledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows a product listing. Active nil means all products.
type ProductFilter struct {
	Active  *bool
	BrandID *uuid.UUID
	Search  string
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Product, error)
	NameTaken(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, ownerID uuid.UUID, filter ProductFilter, page, limit int) ([]model.Product, int64, error)
	UpdateStock(ctx context.Context, ownerID, id uuid.UUID, stock int) error

	ListBrands(ctx context.Context) ([]model.Brand, error)
	FindBrand(ctx context.Context, id uuid.UUID) (*model.Brand, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(product).Error
}

// Delete removes the product and detaches it from past sale items, which keep
// their name and price snapshot
func (r *productRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Model(&model.SaleItem{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
		return err
	}
	return db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Product{}).Error
}

func (r *productRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Preload("Brand").First(&product, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) NameTaken(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Product{}).
		Where("owner_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", ownerID, name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *productRepository) List(ctx context.Context, ownerID uuid.UUID, filter ProductFilter, page, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Product{}).Where("owner_id = ?", ownerID)
	if filter.Active != nil {
		db = db.Where("is_active = ?", *filter.Active)
	}
	if filter.BrandID != nil {
		db = db.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		db = db.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Brand").Order("name asc").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) UpdateStock(ctx context.Context, ownerID, id uuid.UUID, stock int) error {
	return GetDB(ctx, r.db).Model(&model.Product{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("stock", stock).Error
}

func (r *productRepository) ListBrands(ctx context.Context) ([]model.Brand, error) {
	var brands []model.Brand
	if err := GetDB(ctx, r.db).Order("name asc").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *productRepository) FindBrand(ctx context.Context, id uuid.UUID) (*model.Brand, error) {
	var brand model.Brand
	if err := GetDB(ctx, r.db).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}
