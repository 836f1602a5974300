package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/andresuchdata/bookstock-insights/internal/export"
	"github.com/andresuchdata/bookstock-insights/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service  *service.DashboardService
	exporter *export.Exporter
}

// NewForecastHandler builds the read and export endpoints. A nil exporter
// makes the export endpoints stream the file instead of uploading it.
func NewForecastHandler(service *service.DashboardService, exporter *export.Exporter) *ForecastHandler {
	return &ForecastHandler{service: service, exporter: exporter}
}

func parseWindow(c *gin.Context) domain.TimelineWindow {
	return domain.TimelineWindow{
		From: strings.TrimSpace(c.Query("from")),
		To:   strings.TrimSpace(c.Query("to")),
	}
}

func (h *ForecastHandler) GetTimeline(c *gin.Context) {
	view, err := h.service.Timeline(c.Request.Context(), parseWindow(c))
	if err != nil {
		errorResponse(c, err, "failed to build timeline")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ForecastHandler) GetHeatmap(c *gin.Context) {
	heatmap, err := h.service.Heatmap(c.Request.Context())
	if err != nil {
		errorResponse(c, err, "failed to classify profitability")
		return
	}
	c.JSON(http.StatusOK, heatmap)
}

func (h *ForecastHandler) GetSuggestions(c *gin.Context) {
	suggestions, err := h.service.Suggestions(c.Request.Context())
	if err != nil {
		errorResponse(c, err, "failed to fetch suggestions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "total": len(suggestions)})
}

func (h *ForecastHandler) GetDashboard(c *gin.Context) {
	view, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		errorResponse(c, err, "failed to fetch dashboard")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ForecastHandler) ExportTimeline(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.Timeline(c.Request.Context(), parseWindow(c))
	if err != nil {
		errorResponse(c, err, "failed to build timeline")
		return
	}

	h.export(c, "timeline", export.TimelineTable(view.Points), format)
}

func (h *ForecastHandler) ExportHeatmap(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	heatmap, err := h.service.Heatmap(c.Request.Context())
	if err != nil {
		errorResponse(c, err, "failed to classify profitability")
		return
	}

	h.export(c, "profitability", export.HeatmapTable(*heatmap), format)
}

func (h *ForecastHandler) ListExports(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "export storage is not configured"})
		return
	}

	objects, err := h.exporter.List(c.Request.Context())
	if err != nil {
		errorResponse(c, err, "failed to list exports")
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": objects, "total": len(objects)})
}

func (h *ForecastHandler) export(c *gin.Context, name string, table export.Table, format export.Format) {
	if h.exporter == nil {
		data, err := export.Render(table, format)
		if err != nil {
			errorResponse(c, err, "failed to render export")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s%s", name, format.Extension()))
		c.Data(http.StatusOK, format.ContentType(), data)
		return
	}

	result, err := h.exporter.Export(c.Request.Context(), name, table, format)
	if err != nil {
		errorResponse(c, err, "failed to upload export")
		return
	}
	c.JSON(http.StatusCreated, result)
}
