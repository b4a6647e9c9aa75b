// controllers/invoice.go
package controllers

import (
	"net/http"
	"time"

	"tradestack-backend/services"
	"tradestack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceController exposes the invoice aggregate over HTTP.
type InvoiceController struct {
	Svc *services.InvoiceService
}

func NewInvoiceController(svc *services.InvoiceService) *InvoiceController {
	return &InvoiceController{Svc: svc}
}

// InvoiceItemInput defines the structure for an invoice line item
type InvoiceItemInput struct {
	Description string          `json:"description" binding:"required"`
	Quantity    int             `json:"quantity" binding:"min=1"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// CreateInvoiceInput defines the expected JSON structure for creating an invoice
type CreateInvoiceInput struct {
	ClientName  string             `json:"clientName" binding:"required"`
	ClientEmail string             `json:"clientEmail" binding:"omitempty,email"`
	ClientPhone string             `json:"clientPhone"`
	Items       []InvoiceItemInput `json:"items" binding:"required,min=1"`
	TaxRate     decimal.Decimal    `json:"taxRate"`
	IssuedDate  *time.Time         `json:"issuedDate"`
	DueDate     *time.Time         `json:"dueDate"`
	Notes       string             `json:"notes"`
}

// UpdateInvoiceInput replaces the line items and tax rate; totals are
// recomputed, never accepted from the client.
type UpdateInvoiceInput struct {
	Items   []InvoiceItemInput `json:"items" binding:"required,min=1"`
	TaxRate decimal.Decimal    `json:"taxRate"`
}

func toServiceItems(items []InvoiceItemInput) []services.LineItemInput {
	out := make([]services.LineItemInput, len(items))
	for i, item := range items {
		out[i] = services.LineItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return out
}

// Create creates a new draft invoice for the merchant
func (ic *InvoiceController) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, err := ic.Svc.Create(c.Request.Context(), userID, services.CreateInvoiceInput{
		ClientName:  input.ClientName,
		ClientEmail: input.ClientEmail,
		ClientPhone: input.ClientPhone,
		Items:       toServiceItems(input.Items),
		TaxRate:     input.TaxRate,
		IssuedDate:  input.IssuedDate,
		DueDate:     input.DueDate,
		Notes:       input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// List retrieves all invoices for the merchant
func (ic *InvoiceController) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoices, err := ic.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// Get retrieves a specific invoice by ID
func (ic *InvoiceController) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	invoice, err := ic.Svc.Get(c.Request.Context(), userID, invoiceUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// Update replaces the invoice's line items and tax rate
func (ic *InvoiceController) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, err := ic.Svc.UpdateItems(c.Request.Context(), userID, invoiceUUID,
		toServiceItems(input.Items), input.TaxRate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// Send marks the invoice sent and dispatches the client notification
func (ic *InvoiceController) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	invoice, err := ic.Svc.MarkSent(c.Request.Context(), userID, invoiceUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// Cancel cancels an unpaid invoice
func (ic *InvoiceController) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	invoice, err := ic.Svc.Cancel(c.Request.Context(), userID, invoiceUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// Delete removes a draft or cancelled invoice
func (ic *InvoiceController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	if err := ic.Svc.Delete(c.Request.Context(), userID, invoiceUUID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}
