package models

import (
	"time"
	"tradestack-backend/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice statuses. paid and cancelled are terminal.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

type Invoice struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_invoice_number,priority:1"`

	// Sequential per merchant, format INV-YYYYMMDD-XXXX.
	InvoiceNumber string `gorm:"not null;uniqueIndex:idx_user_invoice_number,priority:2"`

	ClientName  string `gorm:"not null"`
	ClientEmail string
	ClientPhone string

	// All three totals are derived from Items and TaxRate and are
	// recomputed together on every mutation; never set individually.
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	AmountCents      money.Cents     `gorm:"type:bigint;not null"`
	TaxAmountCents   money.Cents     `gorm:"type:bigint;not null"`
	TotalAmountCents money.Cents     `gorm:"type:bigint;not null"`
	Currency         string          `gorm:"type:varchar(3);not null;default:'USD'"`

	Status string `gorm:"type:varchar(20);not null;default:'draft';index"`

	IssuedDate time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	DueDate    *time.Time
	PaidDate   *time.Time

	// Most recent checkout session created for this invoice, kept for
	// idempotent status lookups against the processor.
	StripeSessionID string `gorm:"index"`

	Notes string

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID"`

	gorm.Model
}

type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	Description    string      `gorm:"not null"`
	Quantity       int         `gorm:"not null"`
	UnitPriceCents money.Cents `gorm:"type:bigint;not null"`
	LineTotalCents money.Cents `gorm:"type:bigint;not null"`

	Position int `gorm:"not null"`
}

// IsTerminal reports whether the invoice can accept no further
// status transitions.
func (i *Invoice) IsTerminal() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled
}

// CanMarkSent reports whether a draft -> sent transition is legal.
func (i *Invoice) CanMarkSent() bool {
	return i.Status == InvoiceStatusDraft
}

// CanMarkPaid reports whether a -> paid transition is legal from the
// current status.
func (i *Invoice) CanMarkPaid() bool {
	return i.Status == InvoiceStatusSent || i.Status == InvoiceStatusOverdue
}

// CanCancel reports whether the invoice may move to cancelled. A
// succeeded payment is checked separately since it lives in another
// table.
func (i *Invoice) CanCancel() bool {
	return !i.IsTerminal()
}

// CanUpdateItems reports whether line items and tax rate may still be
// edited. Pending/succeeded payments are checked separately.
func (i *Invoice) CanUpdateItems() bool {
	return i.Status == InvoiceStatusDraft || i.Status == InvoiceStatusSent
}

// CanDelete reports whether deletion is allowed by status alone.
// Invoices that recorded a completed transaction are never deletable.
func (i *Invoice) CanDelete() bool {
	return i.Status == InvoiceStatusDraft || i.Status == InvoiceStatusCancelled
}
