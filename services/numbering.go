package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NextInvoiceNumber allocates the next sequential invoice number for
// a merchant, format INV-YYYYMMDD-XXXX. The sequence lives in a
// counter row advanced with a single atomic upsert, so concurrent
// creates (including from other server instances) never get the same
// number.
func NextInvoiceNumber(tx *gorm.DB, userID uuid.UUID, day time.Time) (string, error) {
	d := day.Format("20060102")

	var seq int64
	err := tx.Raw(`
		INSERT INTO invoice_counters (user_id, day, next_seq)
		VALUES (?, ?, 1)
		ON CONFLICT (user_id, day)
		DO UPDATE SET next_seq = invoice_counters.next_seq + 1
		RETURNING next_seq`,
		userID, d,
	).Scan(&seq).Error
	if err != nil {
		return "", fmt.Errorf("allocate invoice number: %w", err)
	}

	return fmt.Sprintf("INV-%s-%04d", d, seq), nil
}
