package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/interview-scheduler/internal/bootstrap"
	"github.com/BruksfildServices01/interview-scheduler/internal/handlers"
	"github.com/BruksfildServices01/interview-scheduler/internal/middleware"
	"github.com/BruksfildServices01/interview-scheduler/internal/telemetry"
)

func RegisterRoutes(r *gin.Engine, app *bootstrap.App, log zerolog.Logger) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware(app.Config.CORSOrigins))

	// ======================================================
	// HANDLERS
	// ======================================================
	slotHandler := handlers.NewSlotHandler(app.Manager)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"storage": app.Config.Storage,
		})
	})

	if app.Metrics != nil {
		r.GET("/metrics", gin.WrapH(telemetry.Handler(app.Registry)))
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// SLOTS
		// ------------------------------
		api.POST("/slots", slotHandler.Create)
		api.POST("/slots/batch", slotHandler.CreateBatch)
		api.GET("/slots", slotHandler.List)
		api.DELETE("/slots", slotHandler.CancelByDate)
		api.GET("/slots/conflicts", slotHandler.Conflicts)
		api.GET("/slots/:id", slotHandler.Get)
		api.DELETE("/slots/:id", slotHandler.Cancel)
		api.GET("/slots/:id/conflicts", slotHandler.Overlapping)
		api.GET("/slots/:id/chunks", slotHandler.Chunks)

		// ------------------------------
		// AVAILABILITY
		// ------------------------------
		api.GET("/availability", slotHandler.Availability)
		api.GET("/availability/check", slotHandler.Check)
		api.GET("/stats", slotHandler.Stats)

		// ------------------------------
		// AUDIT (gorm host schema only)
		// ------------------------------
		if db := app.DB(); db != nil {
			auditLogsHandler := handlers.NewAuditLogsHandler(db, app.Config.OwnerID)
			api.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
