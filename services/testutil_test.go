package services

import (
	"os"
	"testing"

	"tradestack-backend/config"
	"tradestack-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB connects to the Postgres instance named by DB_URL_TEST
// and resets the schema. Tests that need a database skip when the
// variable is unset.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("DB_URL_TEST")
	if dsn == "" {
		t.Skip("DB_URL_TEST not set; skipping database-backed test")
	}

	config.InitLogger()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Lead{},
		&models.Offering{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.PaymentAccount{},
		&models.InvoiceCounter{},
		&models.NotificationLog{},
	))

	db.Exec(`TRUNCATE notification_logs, payments, invoice_items, invoices,
		invoice_counters, payment_accounts, offerings, leads, users CASCADE`)

	return db
}

func newTestUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	user := models.User{
		Email:        uuid.NewString() + "@example.com",
		Password:     "test-password-123",
		Name:         "Test Merchant",
		Phone:        "+15550001111",
		BusinessName: "Test Plumbing Co",
		Trade:        "plumbing",
		Role:         "owner",
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

// mockProcessor is an in-memory Processor for tests.
type mockProcessor struct {
	capable      bool
	reason       string
	paid         bool
	verifyErr    error
	createErr    error
	verifyCalls  int
	createdCount int
}

func (m *mockProcessor) VerifyAccount(accountID string) (AccountCapability, error) {
	m.verifyCalls++
	if m.verifyErr != nil {
		return AccountCapability{}, m.verifyErr
	}
	return AccountCapability{Capable: m.capable, Reason: m.reason}, nil
}

func (m *mockProcessor) CreateCheckoutSession(p CheckoutParams) (*CheckoutSession, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.createdCount++
	id := "cs_test_" + uuid.NewString()
	return &CheckoutSession{
		ID:  id,
		URL: "https://checkout.example.com/" + id,
	}, nil
}

func (m *mockProcessor) GetCheckoutSession(sessionID string) (*CheckoutSession, error) {
	return &CheckoutSession{
		ID:              sessionID,
		Paid:            m.paid,
		PaymentIntentID: "pi_test_123",
	}, nil
}
