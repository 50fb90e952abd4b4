package routes

import (
	"dropcars/internal/handlers"
	"dropcars/internal/middleware"
	"dropcars/internal/services"
	"dropcars/internal/session"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Session    *handlers.SessionHandler
	Order      *handlers.OrderHandler
	Assignment *handlers.AssignmentHandler
	Resource   *handlers.ResourceHandler
	Wallet     *handlers.WalletHandler
	Evidence   *handlers.EvidenceHandler
}

// Setup mounts the full API surface under /api/v1.
func Setup(r *gin.Engine, h *Handlers, auth services.AuthService, sessions session.Store, bus *session.Bus) {
	api := r.Group("/api/v1")

	SetupAuthRoutes(api, h.Auth)

	// Session resolution is pre-auth: the device asks which of its
	// stored credentials is authoritative before presenting a surface.
	api.GET("/session", h.Session.Resolve)

	authenticated := api.Group("")
	authenticated.Use(middleware.AuthRequired(auth, sessions, bus))

	SetupOwnerRoutes(authenticated, h)
	SetupDriverRoutes(authenticated, h)
}

// SetupAuthRoutes sets up the public sign-in routes
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/owner/signin", authHandler.OwnerSignIn)
		auth.POST("/driver/signin", authHandler.DriverSignIn)
	}
}

// SetupOwnerRoutes sets up routes for the vehicle-owner surface
func SetupOwnerRoutes(r *gin.RouterGroup, h *Handlers) {
	owner := r.Group("")
	owner.Use(middleware.OwnerRequired())
	{
		orders := owner.Group("/orders")
		{
			orders.GET("/pending", h.Order.ListPendingOrders)
			orders.GET("/:id", h.Order.GetOrder)
			orders.POST("/:id/accept", h.Assignment.AcceptOrder)
			orders.GET("/:id/assignment", h.Assignment.GetForOrder)
		}

		assignments := owner.Group("/assignments")
		{
			assignments.POST("/:id/resources", h.Assignment.BindResources)
			assignments.POST("/:id/cancel", h.Assignment.Cancel)
		}

		resources := owner.Group("/resources")
		{
			resources.GET("/drivers/assignable", h.Resource.ListAssignableDrivers)
			resources.GET("/cars/assignable", h.Resource.ListAssignableCars)
		}

		wallet := owner.Group("/wallet")
		{
			wallet.GET("/balance", h.Wallet.GetBalance)
			wallet.GET("/transactions", h.Wallet.GetTransactions)
			wallet.POST("/topup", h.Wallet.InitiateTopup)
			wallet.POST("/topup/confirm", h.Wallet.ConfirmTopup)
		}
	}
}

// SetupDriverRoutes sets up routes for the driver surface
func SetupDriverRoutes(r *gin.RouterGroup, h *Handlers) {
	driver := r.Group("/driver")
	driver.Use(middleware.DriverRequired())
	{
		driver.PUT("/status", h.Resource.SetStatus)

		trips := driver.Group("/assignments")
		{
			trips.POST("/:id/start", h.Assignment.StartTrip)
			trips.POST("/:id/end", h.Assignment.EndTrip)
			trips.POST("/:id/evidence", h.Evidence.Upload)
		}

		driver.GET("/evidence/url", h.Evidence.GetURL)
	}
}
