package services

import (
	"context"
	"errors"
	"time"

	"tradestack-backend/config"
	"tradestack-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountCapability is the processor's answer to "can this merchant
// receive charges right now".
type AccountCapability struct {
	Capable bool
	Reason  string
}

// CheckoutSession is the narrow view of a processor-hosted payment
// flow the rest of the app needs.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
	Paid            bool
}

// CheckoutParams describes the destination charge to create: one line
// item carrying the invoice total, routed to the merchant's account.
type CheckoutParams struct {
	Description        string
	AmountCents        int64
	Currency           string
	DestinationAccount string
	SuccessURL         string
	CancelURL          string
	InvoiceID          string
}

// Processor is the boundary to the external payment processor.
type Processor interface {
	VerifyAccount(accountID string) (AccountCapability, error)
	CreateCheckoutSession(p CheckoutParams) (*CheckoutSession, error)
	GetCheckoutSession(sessionID string) (*CheckoutSession, error)
}

// stripeProcessor implements Processor against Stripe Connect.
type stripeProcessor struct {
	api *client.API
}

func NewStripeProcessor(apiKey string) Processor {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &stripeProcessor{api: api}
}

func (s *stripeProcessor) VerifyAccount(accountID string) (AccountCapability, error) {
	acct, err := s.api.Accounts.GetByID(accountID, &stripe.AccountParams{})
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return AccountCapability{Capable: false, Reason: "payment account does not exist"}, nil
		}
		return AccountCapability{}, &ProcessorError{Op: "verify account", Message: stripeMessage(err), Err: err}
	}
	if !acct.DetailsSubmitted {
		return AccountCapability{Capable: false, Reason: "payment account onboarding is incomplete"}, nil
	}
	if !acct.ChargesEnabled {
		return AccountCapability{Capable: false, Reason: "charges are disabled on the payment account"}, nil
	}
	return AccountCapability{Capable: true}, nil
}

func (s *stripeProcessor) CreateCheckoutSession(p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.DestinationAccount),
			},
		},
	}
	params.AddMetadata("invoice_id", p.InvoiceID)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, &ProcessorError{Op: "create checkout session", Message: stripeMessage(err), Err: err}
	}
	out := &CheckoutSession{ID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}

func (s *stripeProcessor) GetCheckoutSession(sessionID string) (*CheckoutSession, error) {
	sess, err := s.api.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{})
	if err != nil {
		return nil, &ProcessorError{Op: "look up checkout session", Message: stripeMessage(err), Err: err}
	}
	out := &CheckoutSession{
		ID:   sess.ID,
		URL:  sess.URL,
		Paid: sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}

func stripeMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Msg
	}
	return ""
}

// PaymentService creates checkout sessions for invoices. It verifies
// the merchant's capability with the processor on every call; the
// stored snapshot is never trusted, since enablement can change
// between invoice sends.
type PaymentService struct {
	db        *gorm.DB
	processor Processor
	log       zerolog.Logger
}

func NewPaymentService(db *gorm.DB, processor Processor) *PaymentService {
	return &PaymentService{
		db:        db,
		processor: processor,
		log:       config.Logger.With().Str("component", "payment_service").Logger(),
	}
}

// VerifyMerchantAccount re-checks the merchant's account with the
// processor and refreshes the stored snapshot.
func (s *PaymentService) VerifyMerchantAccount(ctx context.Context, userID uuid.UUID) (*models.PaymentAccount, AccountCapability, error) {
	var account models.PaymentAccount
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && account.StripeAccountID == "") {
		return nil, AccountCapability{}, &PaymentAccountNotReadyError{Reason: "no payment account is linked"}
	}
	if err != nil {
		return nil, AccountCapability{}, err
	}

	capability, err := s.processor.VerifyAccount(account.StripeAccountID)
	if err != nil {
		return nil, AccountCapability{}, err
	}

	now := time.Now()
	account.ChargesEnabled = capability.Capable
	account.LastVerifiedAt = &now
	if capability.Capable {
		account.Status = models.PaymentAccountStatusActive
	} else {
		account.Status = models.PaymentAccountStatusPending
	}
	if err := s.db.WithContext(ctx).Save(&account).Error; err != nil {
		return nil, AccountCapability{}, err
	}
	return &account, capability, nil
}

// LinkAccount stores the merchant's processor account id and runs a
// first verification.
func (s *PaymentService) LinkAccount(ctx context.Context, userID uuid.UUID, stripeAccountID string) (*models.PaymentAccount, error) {
	if stripeAccountID == "" {
		return nil, &ValidationError{Field: "stripeAccountId", Reason: "account id must not be empty"}
	}
	var account models.PaymentAccount
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = models.PaymentAccount{UserID: userID}
	} else if err != nil {
		return nil, err
	}
	account.StripeAccountID = stripeAccountID
	account.Status = models.PaymentAccountStatusPending
	account.ChargesEnabled = false
	if err := s.db.WithContext(ctx).Save(&account).Error; err != nil {
		return nil, err
	}

	updated, _, err := s.VerifyMerchantAccount(ctx, userID)
	if err != nil {
		// The link itself stands; verification can be retried.
		var procErr *ProcessorError
		if errors.As(err, &procErr) {
			s.log.Warn().Err(err).Str("user", userID.String()).Msg("initial account verification failed")
			return &account, nil
		}
		return nil, err
	}
	return updated, nil
}

// CreateCheckoutSession verifies the merchant can receive payments,
// creates a destination-charge checkout session for the invoice total
// and records a pending Payment. The invoice status is not changed
// here; confirmation is the reconciler's job. Safe to call again after
// a failure: each call is a new distinct payment attempt.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, userID, invoiceID uuid.UUID, successURL, cancelURL string) (*models.Payment, string, error) {
	if successURL == "" || cancelURL == "" {
		return nil, "", &ValidationError{Field: "redirectUrls", Reason: "success and cancel URLs are required"}
	}

	var invoice models.Invoice
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, invoiceID).
		First(&invoice).Error; err != nil {
		return nil, "", err
	}
	if invoice.IsTerminal() {
		return nil, "", &InvalidStateError{Current: invoice.Status, Attempted: "collect payment for"}
	}
	alreadyPaid, err := hasPaymentInStatus(s.db.WithContext(ctx), invoice.ID, models.PaymentStatusSucceeded)
	if err != nil {
		return nil, "", err
	}
	if alreadyPaid {
		return nil, "", &InvalidOperationError{Reason: "invoice already has a completed payment"}
	}

	account, capability, err := s.VerifyMerchantAccount(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if !capability.Capable {
		return nil, "", &PaymentAccountNotReadyError{Reason: capability.Reason}
	}

	session, err := s.processor.CreateCheckoutSession(CheckoutParams{
		Description:        "Invoice " + invoice.InvoiceNumber,
		AmountCents:        int64(invoice.TotalAmountCents),
		Currency:           invoice.Currency,
		DestinationAccount: account.StripeAccountID,
		SuccessURL:         successURL,
		CancelURL:          cancelURL,
		InvoiceID:          invoice.ID.String(),
	})
	if err != nil {
		// No state was written; the merchant can simply retry.
		return nil, "", err
	}

	payment := models.Payment{
		InvoiceID:             invoice.ID,
		AmountCents:           invoice.TotalAmountCents,
		Currency:              invoice.Currency,
		StripeSessionID:       session.ID,
		StripePaymentIntentID: session.PaymentIntentID,
		Status:                models.PaymentStatusPending,
		Metadata:              models.JSONB{"checkout_session_id": session.ID},
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Invoice{}).
			Where("id = ?", invoice.ID).
			Update("stripe_session_id", session.ID).Error
	})
	if err != nil {
		return nil, "", err
	}

	s.log.Info().
		Str("invoice", invoice.InvoiceNumber).
		Str("session", session.ID).
		Int64("amount_cents", int64(payment.AmountCents)).
		Msg("checkout session created")

	return &payment, session.URL, nil
}

// lockPaymentBySession reads a payment by its checkout session
// reference under FOR UPDATE.
func lockPaymentBySession(tx *gorm.DB, sessionRef string) (*models.Payment, error) {
	var payment models.Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("stripe_session_id = ?", sessionRef).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
