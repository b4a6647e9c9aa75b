package models

import (
	"tradestack-backend/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment statuses. succeeded and failed are terminal; a terminal
// payment is never mutated again.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payment is one attempt to collect an invoice's total through the
// processor. Retries create new rows; at most one per invoice ever
// reaches succeeded.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	AmountCents money.Cents `gorm:"type:bigint;not null"`
	Currency    string      `gorm:"type:varchar(3);not null;default:'USD'"`

	StripeSessionID       string `gorm:"uniqueIndex;not null"`
	StripePaymentIntentID string

	Status   string `gorm:"type:varchar(20);not null;default:'pending';index"`
	Metadata JSONB  `gorm:"type:jsonb;default:'{}'"`

	gorm.Model
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	p.ID = uuid.New()
	return
}

// IsTerminal reports whether the payment reached a final outcome.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusSucceeded || p.Status == PaymentStatusFailed
}
