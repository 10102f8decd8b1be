// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brydge/brydge-backend/internal/apperrors"
	"github.com/brydge/brydge-backend/internal/models"
	"github.com/brydge/brydge-backend/internal/utils"
)

// currentCaller pulls the authenticated identity the auth middleware
// resolved into the request context.
func currentCaller(c *gin.Context) (uuid.UUID, models.UserType, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, "", false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, "", false
	}

	userType, _ := utils.GetUserTypeFromContext(c)
	return userID, models.UserType(userType), true
}

// serviceErrorResponse maps a service-layer error to the transport
// status and structured body its kind calls for.
func serviceErrorResponse(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.ErrorResponse(c, apperrors.HTTPStatus(appErr), string(appErr.Kind), appErr.Message, gin.H{
		"field": appErr.Field,
	})
}
