package handlers

import (
	"dropcars/internal/services"
	"dropcars/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssignmentHandler struct {
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(assignmentService services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

type bindResourcesRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
	CarID    string `json:"car_id" binding:"required"`
}

type startTripRequest struct {
	StartKM       int64  `json:"start_km"`
	StartEvidence string `json:"start_odometer_evidence"`
}

type endTripRequest struct {
	EndKM                int64  `json:"end_km"`
	EndEvidence          string `json:"end_odometer_evidence"`
	CustomerAcknowledged bool   `json:"customer_acknowledged"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// AcceptOrder accepts a pending order for the authenticated owner
func (h *AssignmentHandler) AcceptOrder(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.Accept(c.Request.Context(), ownerID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Order accepted successfully", assignment)
}

// BindResources binds a driver and car to an accepted assignment
func (h *AssignmentHandler) BindResources(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request bindResourcesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	driverID, err := primitive.ObjectIDFromHex(request.DriverID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver_id")
		return
	}
	carID, err := primitive.ObjectIDFromHex(request.CarID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid car_id")
		return
	}

	assignment, err := h.assignmentService.BindResources(c.Request.Context(), ownerID, assignmentID, driverID, carID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Resources bound successfully", assignment)
}

// StartTrip records the start odometer reading and moves the trip in progress
func (h *AssignmentHandler) StartTrip(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request startTripRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	assignment, err := h.assignmentService.StartTrip(c.Request.Context(), driverID, assignmentID, request.StartKM, request.StartEvidence)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip started successfully", assignment)
}

// EndTrip records the end odometer reading and settles the trip
func (h *AssignmentHandler) EndTrip(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request endTripRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	assignment, err := h.assignmentService.EndTrip(c.Request.Context(), driverID, assignmentID, request.EndKM, request.EndEvidence, request.CustomerAcknowledged)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip completed successfully", assignment)
}

// Cancel cancels an assignment before the trip starts
func (h *AssignmentHandler) Cancel(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request cancelRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	assignment, err := h.assignmentService.Cancel(c.Request.Context(), ownerID, assignmentID, request.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Assignment cancelled successfully", assignment)
}

// GetForOrder retrieves the assignment attached to an order
func (h *AssignmentHandler) GetForOrder(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetForOrder(c.Request.Context(), ownerID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Assignment retrieved successfully", assignment)
}
