package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
	"tradestack-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `gorm:"not null"`
	Name     string    `gorm:"not null"`
	Phone    string

	BusinessName string `gorm:"not null"`
	Trade        string `gorm:"type:varchar(30)"` // plumbing, electrical, hvac, power_washing
	Role         string `gorm:"type:varchar(20);not null;default:'owner'"`

	LastLogin *time.Time
	IsActive  bool `gorm:"default:true"`

	Leads     []Lead     `gorm:"foreignKey:UserID"`
	Invoices  []Invoice  `gorm:"foreignKey:UserID"`
	Offerings []Offering `gorm:"foreignKey:UserID"`

	gorm.Model
}

// Initialize UUID and hash password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = uuid.New()
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

// Custom JSONB type for opaque metadata columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &j)
}
