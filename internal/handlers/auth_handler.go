package handlers

import (
	"context"

	"dropcars/internal/services"
	"dropcars/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// OwnerSignIn authenticates a vehicle owner
func (h *AuthHandler) OwnerSignIn(c *gin.Context) {
	h.signIn(c, h.authService.OwnerSignIn)
}

// DriverSignIn authenticates a driver
func (h *AuthHandler) DriverSignIn(c *gin.Context) {
	h.signIn(c, h.authService.DriverSignIn)
}

func (h *AuthHandler) signIn(c *gin.Context, authenticate func(context.Context, *services.SignInRequest) (*services.SignInResponse, error)) {
	var request services.SignInRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if request.DeviceID == "" {
		request.DeviceID = c.GetHeader("X-Device-ID")
	}

	response, err := authenticate(c.Request.Context(), &request)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Signed in successfully", response)
}
