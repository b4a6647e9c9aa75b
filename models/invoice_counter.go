package models

import "github.com/google/uuid"

// InvoiceCounter backs per-merchant sequential invoice numbering.
// One row per merchant per day; NextSeq is advanced with a single
// atomic upsert so concurrent creates never share a number, even
// across server instances.
type InvoiceCounter struct {
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Day     string    `gorm:"type:varchar(8);primaryKey"` // YYYYMMDD
	NextSeq int64     `gorm:"not null;default:0"`
}
