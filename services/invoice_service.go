package services

import (
	"context"
	"time"

	"tradestack-backend/config"
	"tradestack-backend/models"
	"tradestack-backend/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier dispatches the invoice-sent notification to the client.
// Implementations are fire-and-forget collaborators: a failure is
// logged, never allowed to fail the status transition.
type Notifier interface {
	SendInvoice(inv *models.Invoice) error
	Channel() string
}

// InvoiceService owns the invoice aggregate: totals are recomputed on
// every mutation and every status transition runs inside a
// transaction holding a row lock, so two concurrent transitions on
// the same invoice serialize at the database.
type InvoiceService struct {
	db       *gorm.DB
	notifier Notifier
	log      zerolog.Logger
}

func NewInvoiceService(db *gorm.DB, notifier Notifier) *InvoiceService {
	return &InvoiceService{
		db:       db,
		notifier: notifier,
		log:      config.Logger.With().Str("component", "invoice_service").Logger(),
	}
}

// LineItemInput is one billable row as received from the API.
type LineItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type CreateInvoiceInput struct {
	ClientName  string
	ClientEmail string
	ClientPhone string
	Items       []LineItemInput
	TaxRate     decimal.Decimal
	IssuedDate  *time.Time
	DueDate     *time.Time
	Notes       string
}

// buildItems validates the inputs and returns the item rows together
// with the recomputed totals.
func buildItems(items []LineItemInput, taxRate decimal.Decimal) ([]models.InvoiceItem, money.Totals, error) {
	if len(items) == 0 {
		return nil, money.Totals{}, &ValidationError{Field: "items", Reason: "at least one line item is required"}
	}

	rows := make([]models.InvoiceItem, 0, len(items))
	lines := make([]money.Line, 0, len(items))
	for i, item := range items {
		if item.Description == "" {
			return nil, money.Totals{}, &ValidationError{Field: "items", Reason: "line item description must not be empty"}
		}
		unitPrice, err := money.FromDecimal(item.UnitPrice)
		if err != nil {
			return nil, money.Totals{}, &ValidationError{Field: "items", Reason: err.Error()}
		}
		lineTotal, err := money.LineTotal(item.Quantity, unitPrice)
		if err != nil {
			return nil, money.Totals{}, &ValidationError{Field: "items", Reason: err.Error()}
		}
		rows = append(rows, models.InvoiceItem{
			ID:             uuid.New(),
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: unitPrice,
			LineTotalCents: lineTotal,
			Position:       i,
		})
		lines = append(lines, money.Line{Quantity: item.Quantity, UnitPrice: unitPrice})
	}

	totals, err := money.ComputeTotals(lines, taxRate)
	if err != nil {
		return nil, money.Totals{}, &ValidationError{Field: "taxRate", Reason: err.Error()}
	}
	return rows, totals, nil
}

// Create validates the input, computes totals, allocates the next
// sequential invoice number and stores the invoice in draft.
func (s *InvoiceService) Create(ctx context.Context, userID uuid.UUID, in CreateInvoiceInput) (*models.Invoice, error) {
	if in.ClientName == "" {
		return nil, &ValidationError{Field: "clientName", Reason: "client name must not be empty"}
	}
	items, totals, err := buildItems(in.Items, in.TaxRate)
	if err != nil {
		return nil, err
	}

	issued := time.Now()
	if in.IssuedDate != nil {
		issued = *in.IssuedDate
	}

	invoice := models.Invoice{
		ID:               uuid.New(),
		UserID:           userID,
		ClientName:       in.ClientName,
		ClientEmail:      in.ClientEmail,
		ClientPhone:      in.ClientPhone,
		TaxRate:          in.TaxRate,
		AmountCents:      totals.Amount,
		TaxAmountCents:   totals.TaxAmount,
		TotalAmountCents: totals.TotalAmount,
		Currency:         "USD",
		Status:           models.InvoiceStatusDraft,
		IssuedDate:       issued,
		DueDate:          in.DueDate,
		Notes:            in.Notes,
		Items:            items,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := NextInvoiceNumber(tx, userID, issued)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Get returns one invoice owned by the merchant, with items and payments.
func (s *InvoiceService) Get(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Payments").
		Where("user_id = ? AND id = ?", userID, invoiceID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// List returns all invoices owned by the merchant, newest first.
func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("user_id = ?", userID).
		Order("issued_date DESC").
		Find(&invoices).Error
	return invoices, err
}

// UpdateItems replaces the line items and tax rate and recomputes the
// totals. Forbidden once any payment attempt is pending or succeeded:
// the checkout amount was created from the old total and must not
// drift from it.
func (s *InvoiceService) UpdateItems(ctx context.Context, userID, invoiceID uuid.UUID, items []LineItemInput, taxRate decimal.Decimal) (*models.Invoice, error) {
	rows, totals, err := buildItems(items, taxRate)
	if err != nil {
		return nil, err
	}

	var invoice *models.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, userID, invoiceID)
		if err != nil {
			return err
		}
		if !inv.CanUpdateItems() {
			return &InvalidStateError{Current: inv.Status, Attempted: "update items on"}
		}
		frozen, err := hasPaymentInStatus(tx, inv.ID, models.PaymentStatusPending, models.PaymentStatusSucceeded)
		if err != nil {
			return err
		}
		if frozen {
			return &InvalidStateError{
				Current:   inv.Status,
				Attempted: "update items on",
				Reason:    "a payment attempt already exists for this invoice",
			}
		}

		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].InvoiceID = inv.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		inv.TaxRate = taxRate
		inv.AmountCents = totals.Amount
		inv.TaxAmountCents = totals.TaxAmount
		inv.TotalAmountCents = totals.TotalAmount
		if err := tx.Save(inv).Error; err != nil {
			return err
		}
		inv.Items = rows
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// MarkSent transitions draft -> sent. The client notification is
// dispatched after commit and its failure is only logged; the invoice
// status is the source of truth, not whether the message arrived.
func (s *InvoiceService) MarkSent(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, userID, invoiceID)
		if err != nil {
			return err
		}
		if !inv.CanMarkSent() {
			return &InvalidStateError{Current: inv.Status, Attempted: "send"}
		}
		if inv.ClientEmail == "" {
			return &ValidationError{Field: "clientEmail", Reason: "client email is required to send an invoice"}
		}
		inv.Status = models.InvoiceStatusSent
		if err := tx.Save(inv).Error; err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	go s.dispatchNotification(invoice)

	return invoice, nil
}

func (s *InvoiceService) dispatchNotification(inv *models.Invoice) {
	if s.notifier == nil {
		return
	}
	entry := models.NotificationLog{
		UserID:    inv.UserID,
		InvoiceID: inv.ID,
		Channel:   s.notifier.Channel(),
		Recipient: inv.ClientEmail,
		Status:    "sent",
		SentAt:    time.Now(),
	}
	if err := s.notifier.SendInvoice(inv); err != nil {
		s.log.Error().Err(err).
			Str("invoice", inv.InvoiceNumber).
			Msg("invoice notification failed")
		entry.Status = "failed"
		entry.ErrorMessage = err.Error()
	}
	if err := s.db.Create(&entry).Error; err != nil {
		s.log.Error().Err(err).Str("invoice", inv.InvoiceNumber).Msg("failed to record notification")
	}
}

// Cancel moves any non-terminal invoice to cancelled. An invoice with
// a completed payment cannot be cancelled; it should have been marked
// paid instead.
func (s *InvoiceService) Cancel(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, userID, invoiceID)
		if err != nil {
			return err
		}
		if !inv.CanCancel() {
			return &InvalidStateError{Current: inv.Status, Attempted: "cancel"}
		}
		paid, err := hasPaymentInStatus(tx, inv.ID, models.PaymentStatusSucceeded)
		if err != nil {
			return err
		}
		if paid {
			return &InvalidOperationError{Reason: "invoice has a completed payment; only unpaid invoices can be cancelled"}
		}
		inv.Status = models.InvoiceStatusCancelled
		if err := tx.Save(inv).Error; err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Delete removes a draft or cancelled invoice. Invoices that collected
// money are financial records and are never deletable.
func (s *InvoiceService) Delete(ctx context.Context, userID, invoiceID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, userID, invoiceID)
		if err != nil {
			return err
		}
		if !inv.CanDelete() {
			return &InvalidOperationError{Reason: "only draft or cancelled invoices can be deleted"}
		}
		paid, err := hasPaymentInStatus(tx, inv.ID, models.PaymentStatusSucceeded)
		if err != nil {
			return err
		}
		if paid {
			return &InvalidOperationError{Reason: "invoice has a completed payment and cannot be deleted"}
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(inv).Error
	})
}

// applyMarkPaid transitions sent|overdue -> paid inside the caller's
// transaction. The payment must already be succeeded and must match
// the invoice total exactly; partial payments are not supported.
func applyMarkPaid(tx *gorm.DB, inv *models.Invoice, p *models.Payment) error {
	if p.InvoiceID != inv.ID {
		return &InvalidOperationError{Reason: "payment does not reference this invoice"}
	}
	if !inv.CanMarkPaid() {
		return &InvalidStateError{Current: inv.Status, Attempted: "mark paid"}
	}
	if p.Status != models.PaymentStatusSucceeded {
		return &InvalidOperationError{Reason: "payment has not succeeded"}
	}
	if p.AmountCents != inv.TotalAmountCents {
		return &AmountMismatchError{
			InvoiceID: inv.ID,
			Expected:  inv.TotalAmountCents,
			Got:       p.AmountCents,
		}
	}
	now := time.Now()
	inv.Status = models.InvoiceStatusPaid
	inv.PaidDate = &now
	return tx.Save(inv).Error
}

// lockInvoice reads the merchant's invoice under FOR UPDATE so that
// concurrent status transitions serialize.
func lockInvoice(tx *gorm.DB, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND id = ?", userID, invoiceID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func hasPaymentInStatus(tx *gorm.DB, invoiceID uuid.UUID, statuses ...string) (bool, error) {
	var count int64
	err := tx.Model(&models.Payment{}).
		Where("invoice_id = ? AND status IN ?", invoiceID, statuses).
		Count(&count).Error
	return count > 0, err
}
