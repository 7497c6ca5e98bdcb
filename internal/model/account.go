package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountStatus of a receivable or payable
type AccountStatus string

const (
	StatusPending AccountStatus = "PENDING"
	StatusOverdue AccountStatus = "OVERDUE"
	StatusPaid    AccountStatus = "PAID"
)

// ReceivableAccount is one installment a client owes for a sale. Rows are only
// created by the sale workflow.
type ReceivableAccount struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	Sale      *Sale           `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
	ClientID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client    *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate   time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	PaidAt    *time.Time      `gorm:"type:date" json:"paid_at"`
	Status    AccountStatus   `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
	Note      string          `gorm:"type:text" json:"note"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (r *ReceivableAccount) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

func (r *ReceivableAccount) GetStatus() AccountStatus { return r.Status }
func (r *ReceivableAccount) GetDueDate() time.Time { return r.DueDate }
func (r *ReceivableAccount) SetStatus(s AccountStatus) { r.Status = s }
func (r *ReceivableAccount) SetPaidAt(paidAt *time.Time) { r.PaidAt = paidAt }

// PayableAccount is a bill the owner has to pay
type PayableAccount struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate     time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	PaidAt      *time.Time      `gorm:"type:date" json:"paid_at"`
	Status      AccountStatus   `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
	Note        string          `gorm:"type:text" json:"note"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *PayableAccount) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (p *PayableAccount) GetStatus() AccountStatus { return p.Status }
func (p *PayableAccount) GetDueDate() time.Time { return p.DueDate }
func (p *PayableAccount) SetStatus(s AccountStatus) { p.Status = s }
func (p *PayableAccount) SetPaidAt(paidAt *time.Time) { p.PaidAt = paidAt }

// ParseStatusFilter maps a list filter to a status. Empty or unknown values
// fall back to PENDING; "ALL" yields nil, meaning no filter. Matching ignores case.
func ParseStatusFilter(raw string) *AccountStatus {
	var s AccountStatus
	switch AccountStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case "ALL":
		return nil
	case StatusOverdue:
		s = StatusOverdue
	case StatusPaid:
		s = StatusPaid
	default:
		s = StatusPending
	}
	return &s
}
