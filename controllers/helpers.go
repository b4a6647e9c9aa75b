package controllers

import (
	"errors"
	"net/http"

	"tradestack-backend/services"
	"tradestack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// currentUserID extracts the authenticated merchant id set by the JWT
// middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps the service error taxonomy onto HTTP codes.
// Every error is surfaced with its own message; nothing is swallowed.
func respondServiceError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		stateErr      *services.InvalidStateError
		opErr         *services.InvalidOperationError
		mismatchErr   *services.AmountMismatchError
		notReadyErr   *services.PaymentAccountNotReadyError
		procErr       *services.ProcessorError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.RespondWithError(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &stateErr):
		utils.RespondWithError(c, http.StatusConflict, stateErr.Error())
	case errors.As(err, &opErr):
		utils.RespondWithError(c, http.StatusForbidden, opErr.Error())
	case errors.As(err, &mismatchErr):
		utils.RespondWithError(c, http.StatusConflict, mismatchErr.Error())
	case errors.As(err, &notReadyErr):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, notReadyErr.Error())
	case errors.As(err, &procErr):
		msg := procErr.Message
		if msg == "" {
			msg = "The payment provider could not process the request. Please try again."
		}
		utils.RespondWithError(c, http.StatusBadGateway, msg)
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Record not found")
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}
