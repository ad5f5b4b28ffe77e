package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	handler "payment-reconciler/internal/handlers"
	"payment-reconciler/internal/repository"
	"payment-reconciler/internal/services/matching"
	service "payment-reconciler/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, log *logrus.Logger) {
	paymentRepo := repository.NewPaymentRepository(db)
	bankRepo := repository.NewBankTransactionRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	reconService := service.NewService(
		db,
		paymentRepo,
		bankRepo,
		matchRepo,
		matching.DefaultConfig(),
		log,
	)

	reconHandler := handler.NewReconciliationHandler(reconService, paymentRepo, bankRepo, matchRepo, log)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.POST("/payments/upload", reconHandler.UploadPayments)
	api.POST("/bank/upload", reconHandler.UploadBank)
	api.POST("/reconcile", reconHandler.RunReconciliation)

	matches := api.Group("/matches")
	{
		matches.GET("", reconHandler.ListMatches)
		matches.GET("/summary", reconHandler.MatchSummary)
		matches.POST("/:id/confirm", reconHandler.ReviewMatch)
	}
}
