package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/westpoint-events/rsvpd/internal/config"
	"github.com/westpoint-events/rsvpd/internal/handler/middleware"
	"github.com/westpoint-events/rsvpd/pkg/token"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	tokens *token.Manager,
	rsvpHandler *RSVPHandler,
	guestHandler *GuestHandler,
	seatingHandler *SeatingHandler,
	adminHandler *AdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public RSVP workflow
	r.GET("/", rsvpHandler.Home)
	r.GET("/rsvp", rsvpHandler.Form)
	r.POST("/rsvp", rsvpHandler.Submit)
	r.GET("/confirm-update", rsvpHandler.ConfirmUpdateView)
	r.POST("/confirm-update", rsvpHandler.ConfirmUpdateSubmit)
	r.GET("/remove-guest", rsvpHandler.RemoveGuestView)
	r.POST("/remove-guest", rsvpHandler.RemoveGuestSubmit)
	r.GET("/success", rsvpHandler.SuccessView)

	// Guest details
	r.GET("/guest-info", guestHandler.View)
	r.POST("/guest-info", guestHandler.Submit)
	r.POST("/add-guest", guestHandler.AddGuest)

	// Seating preferences
	r.GET("/seating-preferences", seatingHandler.Board)
	r.POST("/seating-preferences", seatingHandler.Rank)

	// Admin views
	r.POST("/admin-login", adminHandler.Login)
	admin := r.Group("/")
	admin.Use(middleware.AdminAuth(tokens))
	{
		admin.GET("/responses", adminHandler.ListResponses)
		admin.GET("/guest-list", adminHandler.GuestList)
		admin.GET("/payment-tracking", adminHandler.PaymentTracking)
		admin.POST("/payment-tracking", adminHandler.SetPaymentStatus)
	}

	return r
}
