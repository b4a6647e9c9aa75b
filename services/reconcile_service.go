package services

import (
	"context"
	"errors"

	"tradestack-backend/config"
	"tradestack-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReconcileService applies processor outcomes to Payment and Invoice
// records. Redirect parameters are treated as hints only: before any
// transition the authoritative session status is re-fetched from the
// processor. Reconciling the same session twice is a no-op.
type ReconcileService struct {
	db        *gorm.DB
	processor Processor
	log       zerolog.Logger
}

func NewReconcileService(db *gorm.DB, processor Processor) *ReconcileService {
	return &ReconcileService{
		db:        db,
		processor: processor,
		log:       config.Logger.With().Str("component", "reconcile_service").Logger(),
	}
}

// OnPaymentConfirmed handles a success signal for a checkout session.
// The payment is marked succeeded first and that write is committed on
// its own: money really moved, and a record of it must survive even if
// the invoice transition then fails. An invoice failure is reported
// for manual reconciliation, never used to roll the payment back.
func (s *ReconcileService) OnPaymentConfirmed(ctx context.Context, sessionRef string) (*models.Payment, error) {
	var payment *models.Payment
	var alreadyTerminal bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPaymentBySession(tx, sessionRef)
		if err != nil {
			return err
		}
		if p.IsTerminal() {
			alreadyTerminal = true
			payment = p
			return nil
		}

		// The redirect said "success"; the processor decides.
		session, err := s.processor.GetCheckoutSession(sessionRef)
		if err != nil {
			return err
		}
		if !session.Paid {
			return &InvalidOperationError{Reason: "processor has not confirmed this payment"}
		}

		p.Status = models.PaymentStatusSucceeded
		if p.StripePaymentIntentID == "" {
			p.StripePaymentIntentID = session.PaymentIntentID
		}
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadyTerminal {
		s.log.Info().Str("session", sessionRef).Str("status", payment.Status).
			Msg("session already reconciled; no-op")
		return payment, nil
	}

	// Second transaction: move the invoice. Failure here leaves the
	// payment succeeded on purpose.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoiceByID(tx, payment.InvoiceID)
		if err != nil {
			return err
		}
		if inv.Status == models.InvoiceStatusPaid {
			// Same-session replays never get this far; a different
			// payment already paid this invoice, so the processor
			// collected twice. Keep this payment succeeded and
			// surface the duplicate instead of pretending success.
			return &InvalidOperationError{
				Reason: "invoice was already paid by another payment; duplicate charge requires manual reconciliation",
			}
		}
		return applyMarkPaid(tx, inv, payment)
	})
	if err != nil {
		s.reportInconsistency(sessionRef, payment, err)
		return payment, err
	}

	s.log.Info().Str("session", sessionRef).
		Str("invoice", payment.InvoiceID.String()).
		Msg("payment confirmed and invoice marked paid")
	return payment, nil
}

// OnPaymentFailedOrCancelled marks the payment failed. The invoice is
// left untouched so the merchant can retry with a new session. The
// cancel signal is a hint like any other redirect: the session is
// re-fetched from the processor first, and a session the processor
// reports as paid is reconciled as a confirmation instead. Without
// that check a stray hit on the cancel endpoint would bury a session
// that actually collected money.
func (s *ReconcileService) OnPaymentFailedOrCancelled(ctx context.Context, sessionRef string) (*models.Payment, error) {
	var payment *models.Payment
	var paidInstead bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPaymentBySession(tx, sessionRef)
		if err != nil {
			return err
		}
		if p.IsTerminal() {
			payment = p
			return nil
		}

		session, err := s.processor.GetCheckoutSession(sessionRef)
		if err != nil {
			return err
		}
		if session.Paid {
			paidInstead = true
			return nil
		}

		p.Status = models.PaymentStatusFailed
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if paidInstead {
		s.log.Warn().Str("session", sessionRef).
			Msg("cancel signal for a session the processor reports paid; reconciling as confirmed")
		return s.OnPaymentConfirmed(ctx, sessionRef)
	}
	return payment, nil
}

// reportInconsistency records a succeeded payment whose invoice could
// not be transitioned. These need a human; they are never silently
// dropped.
func (s *ReconcileService) reportInconsistency(sessionRef string, p *models.Payment, cause error) {
	s.log.Error().Err(cause).
		Str("session", sessionRef).
		Str("invoice", p.InvoiceID.String()).
		Int64("amount_cents", int64(p.AmountCents)).
		Msg("payment succeeded but invoice could not be marked paid; manual reconciliation required")

	// The stamp happens under a row lock: a concurrent metadata write
	// must not drop the record of a payment needing attention.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := lockPaymentBySession(tx, sessionRef)
		if err != nil {
			return err
		}
		if locked.Metadata == nil {
			locked.Metadata = models.JSONB{}
		}
		locked.Metadata["reconcile_error"] = cause.Error()
		if err := tx.Model(locked).Update("metadata", locked.Metadata).Error; err != nil {
			return err
		}
		p.Metadata = locked.Metadata
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("session", sessionRef).Msg("failed to record reconcile error")
	}
}

func lockInvoiceByID(tx *gorm.DB, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", invoiceID).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidOperationError{Reason: "invoice for this payment no longer exists"}
		}
		return nil, err
	}
	return &invoice, nil
}
