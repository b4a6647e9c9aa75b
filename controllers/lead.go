// controllers/lead.go
package controllers

import (
	"errors"
	"net/http"
	"time"
	"tradestack-backend/config"
	"tradestack-backend/models"
	"tradestack-backend/money"
	"tradestack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateLeadInput defines the expected JSON structure for creating a lead
type CreateLeadInput struct {
	Name           string           `json:"name" binding:"required"`
	Phone          string           `json:"phone" binding:"required"`
	Email          *string          `json:"email"`
	ServiceType    string           `json:"serviceType"`
	Source         string           `json:"source" binding:"omitempty,oneof=referral website google facebook other"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue"`
	Notes          string           `json:"notes"`
}

// UpdateLeadInput defines the expected JSON structure for updating a lead
type UpdateLeadInput struct {
	Name           *string          `json:"name"`
	Phone          *string          `json:"phone"`
	Email          *string          `json:"email"`
	ServiceType    *string          `json:"serviceType"`
	Source         *string          `json:"source" binding:"omitempty,oneof=referral website google facebook other"`
	Status         *string          `json:"status" binding:"omitempty,oneof=new contacted quoted won lost"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue"`
	Notes          *string          `json:"notes"`
	IsActive       *bool            `json:"isActive"`
}

// CreateLead creates a new lead for the merchant
func CreateLead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Check if phone already exists for this merchant
	var existingLead models.Lead
	if err := config.DB.Where("user_id = ? AND phone = ?", userID, input.Phone).
		First(&existingLead).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "A lead with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	var estimated money.Cents
	if input.EstimatedValue != nil {
		v, err := money.FromDecimal(*input.EstimatedValue)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid estimated value: "+err.Error())
			return
		}
		estimated = v
	}

	serviceType := input.ServiceType
	if serviceType == "" {
		serviceType = "General"
	}

	lead := models.Lead{
		UserID:              userID,
		Name:                input.Name,
		Phone:               input.Phone,
		ServiceType:         serviceType,
		Source:              input.Source,
		Status:              models.LeadStatusNew,
		EstimatedValueCents: estimated,
		Notes:               input.Notes,
		IsActive:            true,
	}
	if input.Email != nil {
		lead.Email = *input.Email
	}

	if err := config.DB.Create(&lead).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create lead")
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// GetLeads retrieves all leads for the merchant
func GetLeads(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := config.DB.Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var leads []models.Lead
	if err := query.Order("created_at DESC").Find(&leads).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve leads")
		return
	}

	c.JSON(http.StatusOK, leads)
}

// GetLead retrieves a specific lead by ID
func GetLead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	leadUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid lead ID format")
		return
	}

	var lead models.Lead
	if err := config.DB.Where("user_id = ? AND id = ?", userID, leadUUID).
		First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Lead not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, lead)
}

// UpdateLead updates an existing lead
func UpdateLead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	leadUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid lead ID format")
		return
	}

	var input UpdateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var lead models.Lead
	if err := config.DB.Where("user_id = ? AND id = ?", userID, leadUUID).
		First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Lead not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		lead.Name = *input.Name
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		lead.Phone = *input.Phone
	}
	if input.Email != nil {
		lead.Email = *input.Email
	}
	if input.ServiceType != nil {
		lead.ServiceType = *input.ServiceType
	}
	if input.Source != nil {
		lead.Source = *input.Source
	}
	if input.Status != nil {
		if *input.Status != lead.Status {
			now := time.Now()
			lead.LastContactedAt = &now
		}
		lead.Status = *input.Status
	}
	if input.EstimatedValue != nil {
		v, err := money.FromDecimal(*input.EstimatedValue)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid estimated value: "+err.Error())
			return
		}
		lead.EstimatedValueCents = v
	}
	if input.Notes != nil {
		lead.Notes = *input.Notes
	}
	if input.IsActive != nil {
		lead.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&lead).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update lead")
		return
	}

	c.JSON(http.StatusOK, lead)
}

// DeleteLead soft deletes a lead
func DeleteLead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	leadUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid lead ID format")
		return
	}

	var lead models.Lead
	if err := config.DB.Where("user_id = ? AND id = ?", userID, leadUUID).
		First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Lead not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Delete(&lead).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete lead")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted successfully"})
}
