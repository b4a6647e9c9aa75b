package models

import (
	"time"
	"tradestack-backend/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead pipeline statuses.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQuoted    = "quoted"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

type Lead struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string `gorm:"not null"`
	Phone       string `gorm:"not null;uniqueIndex:idx_user_phone,priority:2"`
	Email       string
	ServiceType string `gorm:"default:'General'"`
	Source      string `gorm:"type:varchar(30)"` // referral, website, google, facebook
	Status      string `gorm:"type:varchar(20);default:'new'"`

	EstimatedValueCents money.Cents `gorm:"type:bigint;default:0"`
	Notes               string
	LastContactedAt     *time.Time
	IsActive            bool `gorm:"default:true"`

	gorm.Model
}

func (l *Lead) BeforeCreate(tx *gorm.DB) (err error) {
	l.ID = uuid.New()
	return
}
