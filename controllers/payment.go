// controllers/payment.go
package controllers

import (
	"net/http"

	"tradestack-backend/services"
	"tradestack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentController exposes checkout-session creation and the
// redirect-driven reconciliation endpoints.
type PaymentController struct {
	Payments   *services.PaymentService
	Reconciler *services.ReconcileService
	Invoices   *services.InvoiceService
}

func NewPaymentController(payments *services.PaymentService, reconciler *services.ReconcileService, invoices *services.InvoiceService) *PaymentController {
	return &PaymentController{Payments: payments, Reconciler: reconciler, Invoices: invoices}
}

type CreateCheckoutInput struct {
	SuccessURL string `json:"successUrl" binding:"required,url"`
	CancelURL  string `json:"cancelUrl" binding:"required,url"`
}

type LinkAccountInput struct {
	StripeAccountID string `json:"stripeAccountId" binding:"required"`
}

// CreateCheckout creates a destination-charge checkout session for an
// invoice and returns the processor-hosted payment URL.
func (pc *PaymentController) CreateCheckout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input CreateCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	payment, redirectURL, err := pc.Payments.CreateCheckoutSession(
		c.Request.Context(), userID, invoiceUUID, input.SuccessURL, input.CancelURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment":     payment,
		"redirectUrl": redirectURL,
	})
}

// GetAccount re-verifies the merchant's payment account with the
// processor and returns the fresh status.
func (pc *PaymentController) GetAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	account, capability, err := pc.Payments.VerifyMerchantAccount(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account": account,
		"capable": capability.Capable,
		"reason":  capability.Reason,
	})
}

// LinkAccount stores the merchant's processor account id
func (pc *PaymentController) LinkAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input LinkAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	account, err := pc.Payments.LinkAccount(c.Request.Context(), userID, input.StripeAccountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// ConfirmPayment is the success-redirect landing endpoint. The session
// reference is only a hint; the reconciler re-verifies the outcome
// with the processor before any state changes. Calling it twice for
// the same session is a no-op.
func (pc *PaymentController) ConfirmPayment(c *gin.Context) {
	sessionRef := c.Query("session_id")
	if sessionRef == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "session_id is required")
		return
	}

	// The payment record, once succeeded, is preserved regardless of
	// what goes wrong afterwards; only the error is surfaced.
	payment, err := pc.Reconciler.OnPaymentConfirmed(c.Request.Context(), sessionRef)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment":   payment,
		"invoiceId": payment.InvoiceID,
	})
}

// CancelPayment is the cancel-redirect landing endpoint: the payment
// attempt is marked failed, the invoice stays as it was.
func (pc *PaymentController) CancelPayment(c *gin.Context) {
	sessionRef := c.Query("session_id")
	if sessionRef == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "session_id is required")
		return
	}

	payment, err := pc.Reconciler.OnPaymentFailedOrCancelled(c.Request.Context(), sessionRef)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment":   payment,
		"invoiceId": payment.InvoiceID,
	})
}
