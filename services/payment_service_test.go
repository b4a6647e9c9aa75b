package services

import (
	"context"
	"testing"

	"tradestack-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSessionRequiresLinkedAccount(t *testing.T) {
	db := setupTestDB(t)
	userID := newTestUser(t, db)
	ctx := context.Background()

	invoiceSvc := NewInvoiceService(db, nil)
	inv, err := invoiceSvc.Create(ctx, userID, testInvoiceInput())
	require.NoError(t, err)

	svc := NewPaymentService(db, &mockProcessor{capable: true})
	_, _, err = svc.CreateCheckoutSession(ctx, userID, inv.ID,
		"https://app.example.com/ok", "https://app.example.com/no")
	var notReady *PaymentAccountNotReadyError
	require.ErrorAs(t, err, &notReady)
}

func TestCreateCheckoutSessionVerifiesFreshEveryTime(t *testing.T) {
	db := setupTestDB(t)
	userID := newTestUser(t, db)
	ctx := context.Background()

	invoiceSvc := NewInvoiceService(db, nil)
	inv, err := invoiceSvc.Create(ctx, userID, testInvoiceInput())
	require.NoError(t, err)

	// The stored snapshot says active, but the processor now says the
	// account lost its charge capability. The fresh answer wins.
	require.NoError(t, db.Create(&models.PaymentAccount{
		UserID:          userID,
		StripeAccountID: "acct_test_stale",
		Status:          models.PaymentAccountStatusActive,
		ChargesEnabled:  true,
	}).Error)

	proc := &mockProcessor{capable: false, reason: "charges are disabled on the payment account"}
	svc := NewPaymentService(db, proc)

	_, _, err = svc.CreateCheckoutSession(ctx, userID, inv.ID,
		"https://app.example.com/ok", "https://app.example.com/no")
	var notReady *PaymentAccountNotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Contains(t, notReady.Reason, "charges are disabled")
	assert.Equal(t, 1, proc.verifyCalls)

	// Snapshot refreshed from the fresh verification.
	var account models.PaymentAccount
	require.NoError(t, db.Where("user_id = ?", userID).First(&account).Error)
	assert.False(t, account.ChargesEnabled)
	assert.Equal(t, models.PaymentAccountStatusPending, account.Status)
	assert.NotNil(t, account.LastVerifiedAt)
}

func TestCreateCheckoutSessionRetryCreatesNewAttempt(t *testing.T) {
	db := setupTestDB(t)
	userID := newTestUser(t, db)
	ctx := context.Background()

	invoiceSvc := NewInvoiceService(db, nil)
	inv, err := invoiceSvc.Create(ctx, userID, testInvoiceInput())
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.PaymentAccount{
		UserID:          userID,
		StripeAccountID: "acct_test_retry",
	}).Error)

	proc := &mockProcessor{capable: true}
	svc := NewPaymentService(db, proc)

	first, _, err := svc.CreateCheckoutSession(ctx, userID, inv.ID,
		"https://app.example.com/ok", "https://app.example.com/no")
	require.NoError(t, err)

	second, _, err := svc.CreateCheckoutSession(ctx, userID, inv.ID,
		"https://app.example.com/ok", "https://app.example.com/no")
	require.NoError(t, err)

	assert.NotEqual(t, first.StripeSessionID, second.StripeSessionID)
	assert.Equal(t, 2, proc.createdCount)

	// The invoice records the newest session reference.
	fresh, err := invoiceSvc.Get(ctx, userID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, second.StripeSessionID, fresh.StripeSessionID)

	var attempts int64
	db.Model(&models.Payment{}).Where("invoice_id = ?", inv.ID).Count(&attempts)
	assert.Equal(t, int64(2), attempts)
}

func TestCreateCheckoutSessionRefusedForTerminalInvoice(t *testing.T) {
	db := setupTestDB(t)
	userID := newTestUser(t, db)
	ctx := context.Background()

	invoiceSvc := NewInvoiceService(db, nil)
	inv, err := invoiceSvc.Create(ctx, userID, testInvoiceInput())
	require.NoError(t, err)
	_, err = invoiceSvc.Cancel(ctx, userID, inv.ID)
	require.NoError(t, err)

	svc := NewPaymentService(db, &mockProcessor{capable: true})
	_, _, err = svc.CreateCheckoutSession(ctx, userID, inv.ID,
		"https://app.example.com/ok", "https://app.example.com/no")
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

func TestLinkAccount(t *testing.T) {
	db := setupTestDB(t)
	userID := newTestUser(t, db)
	ctx := context.Background()

	svc := NewPaymentService(db, &mockProcessor{capable: true})

	account, err := svc.LinkAccount(ctx, userID, "acct_test_link")
	require.NoError(t, err)
	assert.Equal(t, "acct_test_link", account.StripeAccountID)
	assert.Equal(t, models.PaymentAccountStatusActive, account.Status)
	assert.True(t, account.ChargesEnabled)

	_, err = svc.LinkAccount(ctx, userID, "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
