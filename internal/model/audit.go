package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateSale      = "CREATE_SALE"
	ActionDeleteSale      = "DELETE_SALE"
	ActionPayReceivable   = "PAY_RECEIVABLE"
	ActionUnpayReceivable = "UNPAY_RECEIVABLE"
	ActionCreatePayable   = "CREATE_PAYABLE"
	ActionDeletePayable   = "DELETE_PAYABLE"
	ActionPayPayable      = "PAY_PAYABLE"
	ActionUnpayPayable    = "UNPAY_PAYABLE"
	ActionDeleteClient    = "DELETE_CLIENT"
	ActionDeleteProduct   = "DELETE_PRODUCT"
	ActionAdjustStock     = "ADJUST_STOCK"
)

// AuditLog tracks who changed what in an owner's ledger
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
