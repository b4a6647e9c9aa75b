package controllers

import (
	"net/http"
	"tradestack-backend/config"
	"tradestack-backend/models"
	"tradestack-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateProfileInput struct {
	BusinessName *string `json:"businessName"`
	Trade        *string `json:"trade" binding:"omitempty,oneof=plumbing electrical hvac power_washing general"`
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
}

func GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	var account models.PaymentAccount
	accountStatus := models.PaymentAccountStatusNone
	if err := config.DB.Where("user_id = ?", userID).First(&account).Error; err == nil {
		accountStatus = account.Status
	}

	c.JSON(http.StatusOK, gin.H{
		"businessName":         user.BusinessName,
		"trade":                user.Trade,
		"name":                 user.Name,
		"phone":                user.Phone,
		"email":                user.Email,
		"paymentAccountStatus": accountStatus,
	})
}

func UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	if input.BusinessName != nil {
		user.BusinessName = *input.BusinessName
	}
	if input.Trade != nil {
		user.Trade = *input.Trade
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		user.Phone = *input.Phone
	}

	if err := config.DB.Save(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
