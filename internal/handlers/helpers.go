package handlers

import (
	"errors"
	"net/http"

	"dropcars/internal/middleware"
	"dropcars/internal/repositories/interfaces"
	"dropcars/internal/services"
	"dropcars/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}
	return id, true
}

func pathObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+param)
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	if ve, ok := services.AsValidation(err); ok {
		utils.ValidationErrorResponse(c, map[string]string{ve.Field: ve.Message})
		return
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		utils.ValidationErrorResponse(c, utils.ValidationDetails(fieldErrors))
		return
	}
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.ErrorResponse(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", utils.ErrInvalidCredentials)
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrNotAssignable):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrPrecondition):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, interfaces.ErrStaleWrite):
		utils.ConflictResponse(c, "another device changed this assignment, refresh and retry")
	case errors.Is(err, services.ErrInsufficientFunds):
		utils.ErrorResponse(c, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", err.Error())
	default:
		utils.InternalServerErrorResponse(c)
	}
}
