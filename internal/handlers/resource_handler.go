package handlers

import (
	"dropcars/internal/models"
	"dropcars/internal/services"
	"dropcars/internal/utils"

	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	resourceService services.ResourceService
}

func NewResourceHandler(resourceService services.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
	}
}

// ListAssignableDrivers lists the owner's drivers eligible for binding.
// On a fetch failure the payload is an empty list, never a stale one.
func (h *ResourceHandler) ListAssignableDrivers(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	drivers, err := h.resourceService.ListAssignableDrivers(c.Request.Context(), ownerID)
	if err != nil {
		utils.SuccessResponse(c, "Assignable drivers unavailable", drivers)
		return
	}

	utils.SuccessResponse(c, "Assignable drivers retrieved successfully", drivers)
}

// ListAssignableCars lists the owner's cars eligible for binding
func (h *ResourceHandler) ListAssignableCars(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	cars, err := h.resourceService.ListAssignableCars(c.Request.Context(), ownerID)
	if err != nil {
		utils.SuccessResponse(c, "Assignable cars unavailable", cars)
		return
	}

	utils.SuccessResponse(c, "Assignable cars retrieved successfully", cars)
}

type driverStatusRequest struct {
	Status models.DriverStatus `json:"driver_status" binding:"required"`
}

// SetStatus lets the authenticated driver toggle between online and offline
func (h *ResourceHandler) SetStatus(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request driverStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.resourceService.SetDriverStatus(c.Request.Context(), driverID, request.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver status updated successfully", gin.H{"driver_status": request.Status})
}
