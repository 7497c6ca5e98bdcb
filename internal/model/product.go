package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultBrands are seeded on migration
var DefaultBrands = []string{"Natura", "Boticário", "Racco", "Avon"}

// Brand is a global catalog entry shared by all owners
type Brand struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	assignID(&b.ID)
	return nil
}

// Product is an item the owner sells. Names are unique per owner.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_owner_name" json:"owner_id"`
	Name        string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_products_owner_name" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int             `gorm:"type:int;not null;default:0" json:"stock"`
	BrandID     *uuid.UUID      `gorm:"type:uuid;index" json:"brand_id"`
	Brand       *Brand          `gorm:"foreignKey:BrandID;constraint:OnDelete:SET NULL" json:"brand,omitempty"`
	IsActive    bool            `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Stock adjustment operations
const (
	StockOpAdd    = "ADD"
	StockOpRemove = "REMOVE"
)
