package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/api/handlers"
	"github.com/andresuchdata/bookstock-insights/internal/api/middleware"
	"github.com/andresuchdata/bookstock-insights/internal/export"
	"github.com/andresuchdata/bookstock-insights/internal/refresh"
	"github.com/andresuchdata/bookstock-insights/internal/selection"
	"github.com/andresuchdata/bookstock-insights/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Dashboard  *service.DashboardService
	Approvals  *service.ApprovalService
	Quantities selection.QuantityHandler
	Sessions   *selection.Registry
	Exporter   *export.Exporter
	// RefreshStatus reports the poller state on /health. Optional.
	RefreshStatus func() refresh.Status
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	health := func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if services != nil && services.RefreshStatus != nil {
			body["refresh"] = services.RefreshStatus()
		}
		c.JSON(http.StatusOK, body)
	}
	router.GET("/health", health)
	apiGroup.GET("/health", health)

	if services == nil {
		return router
	}

	if services.Dashboard != nil {
		forecastHandler := handlers.NewForecastHandler(services.Dashboard, services.Exporter)
		apiGroup.GET("/forecast/timeline", forecastHandler.GetTimeline)
		apiGroup.GET("/profitability/heatmap", forecastHandler.GetHeatmap)
		apiGroup.GET("/suggestions", forecastHandler.GetSuggestions)
		apiGroup.GET("/dashboard", forecastHandler.GetDashboard)

		exportGroup := apiGroup.Group("/exports")
		{
			exportGroup.POST("/timeline", forecastHandler.ExportTimeline)
			exportGroup.POST("/heatmap", forecastHandler.ExportHeatmap)
			exportGroup.GET("", forecastHandler.ListExports)
		}
	}

	if services.Sessions != nil && services.Dashboard != nil && services.Approvals != nil && services.Quantities != nil {
		selectionHandler := handlers.NewSelectionHandler(services.Sessions, services.Dashboard, services.Approvals, services.Quantities)

		sessionGroup := apiGroup.Group("/sessions")
		{
			sessionGroup.POST("", selectionHandler.OpenSession)
			sessionGroup.DELETE("/:session", selectionHandler.CloseSession)
			sessionGroup.GET("/:session/selection", selectionHandler.GetSelection)
			sessionGroup.POST("/:session/selection/toggle", selectionHandler.Toggle)
			sessionGroup.DELETE("/:session/selection", selectionHandler.Clear)
			sessionGroup.POST("/:session/selection/approve", selectionHandler.Approve)
		}

		apiGroup.POST("/suggestions/:bookId/quantity", selectionHandler.ChangeQuantity)
		apiGroup.GET("/approvals", selectionHandler.History)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
