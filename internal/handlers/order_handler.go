package handlers

import (
	"dropcars/internal/services"
	"dropcars/internal/utils"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// ListPendingOrders lists orders awaiting acceptance by the owner
func (h *OrderHandler) ListPendingOrders(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListPendingOrders(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Pending orders retrieved successfully", orders)
}

// GetOrder retrieves one order
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), ownerID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Order retrieved successfully", order)
}
