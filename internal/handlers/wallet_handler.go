package handlers

import (
	"strconv"

	"dropcars/internal/services"
	"dropcars/internal/utils"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletService services.WalletService
}

func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetBalance returns the owner's wallet balance recomputed from the ledger
func (h *WalletHandler) GetBalance(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.walletService.Balance(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Wallet balance retrieved successfully", gin.H{
		"balance":  balance,
		"currency": utils.DefaultCurrency,
	})
}

// GetTransactions lists the owner's ledger entries, newest first
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 || parsed > 200 {
			utils.BadRequestResponse(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	txns, err := h.walletService.Transactions(c.Request.Context(), ownerID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Wallet transactions retrieved successfully", txns)
}

type topupRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

type confirmTopupRequest struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
	PaymentID      string `json:"payment_id" binding:"required"`
	Signature      string `json:"signature" binding:"required"`
}

// InitiateTopup creates a payment-gateway order for a wallet top-up
func (h *WalletHandler) InitiateTopup(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request topupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	order, err := h.walletService.InitiateTopup(c.Request.Context(), ownerID, request.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Top-up initiated successfully", order)
}

// ConfirmTopup completes a top-up after gateway signature verification
func (h *WalletHandler) ConfirmTopup(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request confirmTopupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	balance, err := h.walletService.ConfirmTopup(c.Request.Context(), ownerID, request.GatewayOrderID, request.PaymentID, request.Signature)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Top-up confirmed successfully", gin.H{
		"balance":  balance,
		"currency": utils.DefaultCurrency,
	})
}
