package models

import (
	"tradestack-backend/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Offering is a service a merchant sells, used to prefill invoice
// line items with a description and flat rate.
type Offering struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name          string      `gorm:"not null"`
	Description   string
	FlatRateCents money.Cents `gorm:"type:bigint;not null"`
	Category      string      `gorm:"default:'General'"`
	IsActive      bool        `gorm:"default:true"`

	gorm.Model
}

func (o *Offering) BeforeCreate(tx *gorm.DB) (err error) {
	o.ID = uuid.New()
	return
}
