package routes

import (
	"github.com/gin-gonic/gin"

	"irisai/internal/authz"
	"irisai/internal/handlers"
	"irisai/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	leadHandler *handlers.LeadHandler,
	accountHandler *handlers.AccountHandler,
	notificationHandler *handlers.NotificationHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", healthHandler.Healthz)

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))
	r.Use(middleware.ReadOnlyGuard())

	elevated := middleware.RequireRoles(authz.ElevatedRoles...)

	// LEADS
	leads := r.Group("/leads")
	{
		leads.POST("", leadHandler.Create)
		leads.GET("", leadHandler.List)
		leads.POST("/bulk-assign", elevated, leadHandler.BulkAssign)
		leads.GET("/:id", leadHandler.GetByID)
		leads.PUT("/:id", leadHandler.Update)
		leads.DELETE("/:id", leadHandler.Delete)
		leads.POST("/:id/status", leadHandler.UpdateStatus)
		leads.GET("/:id/history", leadHandler.History)
		leads.POST("/:id/convert", leadHandler.Convert)
	}

	// ACCOUNTS
	accounts := r.Group("/accounts")
	{
		accounts.POST("", accountHandler.Create)
		accounts.GET("", accountHandler.List)
		accounts.GET("/:id", accountHandler.GetByID)
		accounts.PUT("/:id", accountHandler.Update)
		accounts.DELETE("/:id", elevated, accountHandler.Delete)
		accounts.POST("/:id/reverse", elevated, accountHandler.Reverse)
	}

	// NOTIFICATIONS (caller's own)
	notifications := r.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
	}

	// REPORTS
	reports := r.Group("/reports")
	{
		reports.GET("/pipeline", reportHandler.Pipeline)
		reports.GET("/pipeline.pdf", reportHandler.PipelinePDF)
	}

	return r
}
