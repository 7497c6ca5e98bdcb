package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod enum constants
const (
	PaymentCash       = "CASH"
	PaymentCreditCard = "CREDIT_CARD"
	PaymentDebitCard  = "DEBIT_CARD"
	PaymentBankSlip   = "BANK_SLIP"
	PaymentPix        = "PIX"
	PaymentCheck      = "CHECK"
	PaymentOther      = "OTHER"
)

// PaymentMethods lists every accepted payment method
var PaymentMethods = []string{
	PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentBankSlip, PaymentPix, PaymentCheck, PaymentOther,
}

// IsValidPaymentMethod reports whether m is one of PaymentMethods
func IsValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// Sale is a transaction with a client. TotalAmount is always the sum of the
// items' subtotals and is only written by the sale service.
type Sale struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"owner_id"`
	ClientID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client             `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	SoldAt        time.Time           `gorm:"not null;index" json:"sold_at"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	PaymentMethod string              `gorm:"type:varchar(20);not null" json:"payment_method"`
	DueDate       time.Time           `gorm:"type:date;not null" json:"due_date"`
	Note          string              `gorm:"type:text" json:"note"`
	Items         []SaleItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Receivables   []ReceivableAccount `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"receivables,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// SaleItem is a line of a sale. ProductID is a weak reference that becomes nil
// when the product is deleted; ProductName keeps the label for display.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index" json:"product_id"`
	Product     *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"-"`
	ProductName string          `gorm:"type:varchar(200)" json:"product_name"`
	Quantity    int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ComputeSubtotal sets Subtotal from Quantity and UnitPrice
func (i *SaleItem) ComputeSubtotal() {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
