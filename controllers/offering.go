// controllers/offering.go
package controllers

import (
	"errors"
	"net/http"
	"tradestack-backend/config"
	"tradestack-backend/models"
	"tradestack-backend/money"
	"tradestack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateOfferingInput defines the expected JSON structure for creating an offering
type CreateOfferingInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	FlatRate    decimal.Decimal `json:"flatRate" binding:"required"`
	Category    string          `json:"category"`
}

// UpdateOfferingInput defines the expected JSON structure for updating an offering
type UpdateOfferingInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	FlatRate    *decimal.Decimal `json:"flatRate"`
	Category    *string          `json:"category"`
	IsActive    *bool            `json:"isActive"`
}

// CreateOffering creates a new service offering for the merchant
func CreateOffering(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateOfferingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	rate, err := money.FromDecimal(input.FlatRate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid flat rate: "+err.Error())
		return
	}

	category := input.Category
	if category == "" {
		category = "General"
	}

	offering := models.Offering{
		UserID:        userID,
		Name:          input.Name,
		Description:   input.Description,
		FlatRateCents: rate,
		Category:      category,
		IsActive:      true,
	}

	if err := config.DB.Create(&offering).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create offering")
		return
	}

	c.JSON(http.StatusCreated, offering)
}

// GetOfferings retrieves all offerings for the merchant
func GetOfferings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var offerings []models.Offering
	if err := config.DB.Where("user_id = ?", userID).
		Order("category, name").
		Find(&offerings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve offerings")
		return
	}

	c.JSON(http.StatusOK, offerings)
}

// GetOffering retrieves a specific offering by ID
func GetOffering(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	offeringUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid offering ID format")
		return
	}

	var offering models.Offering
	if err := config.DB.Where("user_id = ? AND id = ?", userID, offeringUUID).
		First(&offering).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Offering not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, offering)
}

// UpdateOffering updates an existing offering
func UpdateOffering(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	offeringUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid offering ID format")
		return
	}

	var input UpdateOfferingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var offering models.Offering
	if err := config.DB.Where("user_id = ? AND id = ?", userID, offeringUUID).
		First(&offering).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Offering not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		offering.Name = *input.Name
	}
	if input.Description != nil {
		offering.Description = *input.Description
	}
	if input.FlatRate != nil {
		rate, err := money.FromDecimal(*input.FlatRate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid flat rate: "+err.Error())
			return
		}
		offering.FlatRateCents = rate
	}
	if input.Category != nil {
		offering.Category = *input.Category
	}
	if input.IsActive != nil {
		offering.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&offering).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update offering")
		return
	}

	c.JSON(http.StatusOK, offering)
}

// DeleteOffering soft deletes an offering
func DeleteOffering(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	offeringUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid offering ID format")
		return
	}

	result := config.DB.Where("user_id = ? AND id = ?", userID, offeringUUID).
		Delete(&models.Offering{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete offering")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Offering not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Offering deleted successfully"})
}
