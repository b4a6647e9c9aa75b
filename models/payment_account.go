package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Merchant payment account statuses.
const (
	PaymentAccountStatusNone    = "none"
	PaymentAccountStatusPending = "pending"
	PaymentAccountStatusActive  = "active"
)

// PaymentAccount is the merchant's connected processor sub-account.
// Funds for destination charges land there directly; the platform
// never custodies client payments. ChargesEnabled is only a snapshot:
// capability is re-verified against the processor before every
// checkout session.
type PaymentAccount struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	StripeAccountID string `gorm:"index"`
	Status          string `gorm:"type:varchar(20);not null;default:'none'"`
	ChargesEnabled  bool   `gorm:"default:false"`
	LastVerifiedAt  *time.Time

	gorm.Model
}

func (a *PaymentAccount) BeforeCreate(tx *gorm.DB) (err error) {
	a.ID = uuid.New()
	return
}
