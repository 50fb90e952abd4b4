package handlers

import (
	"dropcars/internal/session"
	"dropcars/internal/utils"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	resolver *session.Resolver
}

func NewSessionHandler(resolver *session.Resolver) *SessionHandler {
	return &SessionHandler{resolver: resolver}
}

// Resolve reports which stored role is authoritative for the calling
// device, so a client holding both owner and driver credentials knows
// which surface to present at startup. A profile that fails to load
// resolves to no role and the device must sign in again.
func (h *SessionHandler) Resolve(c *gin.Context) {
	deviceID := c.GetHeader("X-Device-ID")
	if deviceID == "" {
		utils.BadRequestResponse(c, "X-Device-ID header is required")
		return
	}

	role, cred, err := h.resolver.Resolve(c.Request.Context(), deviceID)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}
	if role == session.RoleNone {
		utils.SuccessResponse(c, "No active session", gin.H{"role": session.RoleNone})
		return
	}

	utils.SuccessResponse(c, "Session resolved successfully", gin.H{
		"role":          role,
		"user_id":       cred.UserID,
		"last_login_at": cred.LastLoginAt,
	})
}
