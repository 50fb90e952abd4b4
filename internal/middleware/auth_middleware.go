package middleware

import (
	"net/http"
	"strings"

	"dropcars/internal/services"
	"dropcars/internal/session"
	"dropcars/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContextUserID   = "user_id"
	ContextRole     = "role"
	ContextDeviceID = "device_id"

	deviceIDHeader = "X-Device-ID"
)

// AuthRequired validates the bearer token and sets the user context. A
// rejected token is a session expiry: the device's stored credential for
// that role is dropped and the expiry is broadcast before the 401 goes
// out, so every subscribed surface resets rather than retrying with the
// dead token.
func AuthRequired(auth services.AuthService, sessions session.Store, bus *session.Bus) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetHeader(deviceIDHeader)
		c.Set(ContextDeviceID, deviceID)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			expireSession(c, sessions, bus, deviceID, tokenString, "token rejected")
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrInvalidToken)
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// expireSession drops whichever stored credential carries the rejected
// token and emits the expiry for that role. The other role's credential
// stays untouched.
func expireSession(c *gin.Context, sessions session.Store, bus *session.Bus, deviceID, tokenString, reason string) {
	if sessions == nil || deviceID == "" {
		return
	}
	for _, role := range []session.Role{session.RoleOwner, session.RoleDriver} {
		cred, err := sessions.Get(c.Request.Context(), deviceID, role)
		if err != nil || cred == nil || cred.Token != tokenString {
			continue
		}
		_ = sessions.Delete(c.Request.Context(), deviceID, role)
		if bus != nil {
			bus.Emit(role, reason)
		}
	}
}

// OwnerRequired ensures the authenticated role is a vehicle owner.
func OwnerRequired() gin.HandlerFunc {
	return requireRole(session.RoleOwner)
}

// DriverRequired ensures the authenticated role is a driver.
func DriverRequired() gin.HandlerFunc {
	return requireRole(session.RoleDriver)
}

func requireRole(want session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}
		if got, ok := role.(session.Role); !ok || got != want {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user's id set by AuthRequired.
func UserIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok
}
