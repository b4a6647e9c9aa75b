package services

import (
	"context"
	"testing"

	"tradestack-backend/models"
	"tradestack-backend/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// checkoutFixture walks an invoice through create -> send -> checkout
// session and returns everything the reconciliation tests need.
func checkoutFixture(t *testing.T, db *gorm.DB, proc *mockProcessor) (invoiceSvc *InvoiceService, inv *models.Invoice, payment *models.Payment) {
	t.Helper()
	ctx := context.Background()
	userID := newTestUser(t, db)

	invoiceSvc = NewInvoiceService(db, nil)
	paymentSvc := NewPaymentService(db, proc)

	// qty 3 x $19.99 at 7% tax: amount $59.97, tax $4.20, total $64.17
	inv, err := invoiceSvc.Create(ctx, userID, CreateInvoiceInput{
		ClientName:  "Bob Builder",
		ClientEmail: "bob@example.com",
		Items: []LineItemInput{
			{Description: "Gutter cleaning", Quantity: 3, UnitPrice: dec("19.99")},
		},
		TaxRate: dec("7"),
	})
	require.NoError(t, err)
	require.Equal(t, money.Cents(5997), inv.AmountCents)
	require.Equal(t, money.Cents(420), inv.TaxAmountCents)
	require.Equal(t, money.Cents(6417), inv.TotalAmountCents)

	inv, err = invoiceSvc.MarkSent(ctx, userID, inv.ID)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.PaymentAccount{
		UserID:          userID,
		StripeAccountID: "acct_test_123",
		Status:          models.PaymentAccountStatusActive,
	}).Error)

	payment, redirectURL, err := paymentSvc.CreateCheckoutSession(
		ctx, userID, inv.ID, "https://app.example.com/ok", "https://app.example.com/no")
	require.NoError(t, err)
	require.NotEmpty(t, redirectURL)
	require.Equal(t, models.PaymentStatusPending, payment.Status)
	require.Equal(t, inv.TotalAmountCents, payment.AmountCents)

	// Checkout creation must not move the invoice status.
	fresh, err := invoiceSvc.Get(ctx, userID, inv.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusSent, fresh.Status)
	require.Equal(t, payment.StripeSessionID, fresh.StripeSessionID)

	return invoiceSvc, fresh, payment
}

func TestEndToEndPaymentConfirmation(t *testing.T) {
	db := setupTestDB(t)
	proc := &mockProcessor{capable: true, paid: true}
	invoiceSvc, inv, payment := checkoutFixture(t, db, proc)
	ctx := context.Background()

	confirmed, err := NewReconcileService(db, proc).OnPaymentConfirmed(ctx, payment.StripeSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, confirmed.Status)

	after, err := invoiceSvc.Get(ctx, inv.UserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, after.Status)
	require.NotNil(t, after.PaidDate)

	// paid is terminal: cancel is refused
	_, err = invoiceSvc.Cancel(ctx, inv.UserID, inv.ID)
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.InvoiceStatusPaid, stateErr.Current)
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	proc := &mockProcessor{capable: true, paid: true}
	invoiceSvc, inv, payment := checkoutFixture(t, db, proc)
	ctx := context.Background()
	reconciler := NewReconcileService(db, proc)

	first, err := reconciler.OnPaymentConfirmed(ctx, payment.StripeSessionID)
	require.NoError(t, err)

	// Redirect flows can replay; the second call is a no-op, not an
	// error and not a double transition.
	second, err := reconciler.OnPaymentConfirmed(ctx, payment.StripeSessionID)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.ID, second.ID)

	after, err := invoiceSvc.Get(ctx, inv.UserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, after.Status)

	var succeeded int64
	db.Model(&models.Payment{}).
		Where("invoice_id = ? AND status = ?", inv.ID, models.PaymentStatusSucceeded).
		Count(&succeeded)
	assert.Equal(t, int64(1), succeeded)
}

func TestReconcileRejectsUnpaidSession(t *testing.T) {
	db := setupTestDB(t)
	// The redirect claims success but the processor says unpaid.
	proc := &mockProcessor{capable: true, paid: false}
	invoiceSvc, inv, payment := checkoutFixture(t, db, proc)
	ctx := context.Background()

	_, err := NewReconcileService(db, proc).OnPaymentConfirmed(ctx, payment.StripeSessionID)
	var opErr *InvalidOperationError
	require.ErrorAs(t, err, &opErr)

	// Nothing moved.
	after, err := invoiceSvc.Get(ctx, inv.UserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, after.Status)

	var p models.Payment
	require.NoError(t, db.Where("stripe_session_id = ?", payment.StripeSessionID).First(&p).Error)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
}

func TestReconcileAmountMismatchPreservesPayment(t *testing.T) {
	db := setupTestDB(t)
	proc := &mockProcessor{capable: true, paid: true}
	invoiceSvc, inv, payment := checkoutFixture(t, db, proc)
	ctx := context.Background()

	// Corrupt the recorded attempt so it no longer matches the total.
	require.NoError(t, db.Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Update("amount_cents", int64(payment.AmountCents)-100).Error)

	_, err := NewReconcileService(db, proc).OnPaymentConfirmed(ctx, payment.StripeSessionID)
	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)

	// Money moved: the payment stays succeeded even though the
	// invoice could not be transitioned.
	var p models.Payment
	require.NoError(t, db.Where("id = ?", payment.ID).First(&p).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, p.Status)
	assert.Contains(t, p.Metadata, "reconcile_error")

	after, err := invoiceSvc.Get(ctx, inv.UserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, after.Status)
}

func TestOnPaymentFailedOrCancelled(t *testing.T) {
	db := setupTestDB(t)
	proc := &mockProcessor{capable: true, paid: false}
	invoiceSvc, inv, payment := checkoutFixture(t, db, proc)
	ctx := context.Background()
	reconciler := NewReconcileService(db, proc)

	failed, err := reconciler.OnPaymentFailedOrCancelled(ctx, payment.StripeSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, failed.Status)

	// Invoice unchanged; the merchant can retry with a new session.
	after, err := invoiceSvc.Get(ctx, inv.UserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, after.Status)

	// Terminal payments are immutable: a late success signal for the
	// same session does not flip it.
	again, err := reconciler.OnPaymentFailedOrCancelled(ctx, payment.StripeSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, again.Status)

	proc.paid = true
	confirmed, err := reconciler.OnPaymentConfirmed(ctx, payment.StripeSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, confirmed.Status)
}

func TestReconcileReportsDuplicateCharge(t *testing.T) {
	db := setupTestDB(t)
	proc := &mockProcessor{capable: true, paid: true}
	invoiceSvc, inv, first := checkoutFixture(t, db, proc)
	ctx := context.Background()

	// A second pending attempt for the same invoice, created while it
	// was still unpaid.
	second, _, err := NewPaymentService(db, proc).CreateCheckoutSession(
		ctx, inv.UserID, inv.ID, "https://app.example.com/ok", "https://app.example.com/no")
	require.NoError(t, err)

	reconciler := NewReconcileService(db, proc)
	_, err = reconciler.OnPaymentConfirmed(ctx, first.StripeSessionID)
	require.NoError(t, err)

	// The processor collected for both sessions. Confirming the second
	// must not pass silently: the record of the money stays succeeded
	// and the caller is told a human has to reconcile.
	_, err = reconciler.OnPaymentConfirmed(ctx, second.StripeSessionID)
	var opErr *InvalidOperationError
	require.ErrorAs(t, err, &opErr)

	var p models.Payment
	require.NoError(t, db.Where("id = ?", second.ID).First(&p).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, p.Status)
	assert.Contains(t, p.Metadata, "reconcile_error")

	after, err := invoiceSvc.Get(ctx, inv.UserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, after.Status)
}

func TestCancelSignalForPaidSessionConfirmsInstead(t *testing.T) {
	db := setupTestDB(t)
	proc := &mockProcessor{capable: true, paid: true}
	invoiceSvc, inv, payment := checkoutFixture(t, db, proc)
	ctx := context.Background()

	// The cancel redirect is unauthenticated and can lie, or race the
	// success redirect. The processor says the session is paid, so the
	// payment must not be buried as failed.
	settled, err := NewReconcileService(db, proc).OnPaymentFailedOrCancelled(ctx, payment.StripeSessionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, settled.Status)

	after, err := invoiceSvc.Get(ctx, inv.UserID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, after.Status)
	require.NotNil(t, after.PaidDate)
}
