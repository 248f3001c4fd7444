package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/finflow-payment-approval/internal/api_gateway/handler"
	"github.com/finflow-payment-approval/internal/api_gateway/middleware"
	"github.com/finflow-payment-approval/internal/domain/identity"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	tokenResolver identity.Resolver,
	paymentHandler *handler.PaymentHandler,
	approvalHandler *handler.ApprovalHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints; everything below requires a valid API token
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(logger, tokenResolver))
	{
		payments := v1.Group("/payments")
		{
			payments.POST("", paymentHandler.Create)
			payments.GET("/mine", paymentHandler.ListMine)
			payments.GET("/pending", paymentHandler.PendingInbox)
			payments.POST("/approve-all", approvalHandler.ApproveAll)

			payments.GET("/:id", paymentHandler.GetByID)
			payments.PUT("/:id", paymentHandler.Update)
			payments.DELETE("/:id", paymentHandler.Delete)

			payments.POST("/:id/submit", approvalHandler.Submit)
			payments.POST("/:id/decision", approvalHandler.Decide)
			payments.POST("/:id/revoke", approvalHandler.Revoke)
			payments.POST("/:id/view", approvalHandler.RecordView)
			payments.GET("/:id/history", approvalHandler.History)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
