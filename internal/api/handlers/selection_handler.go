package handlers

import (
	"net/http"

	"github.com/andresuchdata/bookstock-insights/internal/selection"
	"github.com/andresuchdata/bookstock-insights/internal/service"
	"github.com/gin-gonic/gin"
)

type SelectionHandler struct {
	sessions   *selection.Registry
	dashboard  *service.DashboardService
	approvals  *service.ApprovalService
	quantities selection.QuantityHandler
}

func NewSelectionHandler(
	sessions *selection.Registry,
	dashboard *service.DashboardService,
	approvals *service.ApprovalService,
	quantities selection.QuantityHandler,
) *SelectionHandler {
	return &SelectionHandler{
		sessions:   sessions,
		dashboard:  dashboard,
		approvals:  approvals,
		quantities: quantities,
	}
}

type toggleRequest struct {
	ID string `json:"id" binding:"required"`
}

// quantityRequest carries either an absolute quantity or a stepper click
// (current rendered value plus delta).
type quantityRequest struct {
	Quantity *int `json:"quantity"`
	Current  *int `json:"current"`
	Delta    *int `json:"delta"`
}

func (h *SelectionHandler) OpenSession(c *gin.Context) {
	id, ledger := h.sessions.Open()
	c.JSON(http.StatusCreated, gin.H{"session_id": id, "selected": ledger.Selected()})
}

func (h *SelectionHandler) CloseSession(c *gin.Context) {
	if !h.sessions.Close(c.Param("session")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SelectionHandler) GetSelection(c *gin.Context) {
	ledger, ok := h.ledger(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": ledger.Selected()})
}

func (h *SelectionHandler) Toggle(c *gin.Context) {
	ledger, ok := h.ledger(c)
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	selected := ledger.Toggle(req.ID)
	c.JSON(http.StatusOK, gin.H{"selected": selected, "is_selected": contains(selected, req.ID)})
}

func (h *SelectionHandler) Clear(c *gin.Context) {
	ledger, ok := h.ledger(c)
	if !ok {
		return
	}
	ledger.Clear()
	c.JSON(http.StatusOK, gin.H{"selected": []string{}})
}

func (h *SelectionHandler) Approve(c *gin.Context) {
	ledger, ok := h.ledger(c)
	if !ok {
		return
	}

	byID, err := h.dashboard.SuggestionIndex(c.Request.Context())
	if err != nil {
		errorResponse(c, err, "failed to load suggestions")
		return
	}

	batch := ledger.BulkApprove(c.Request.Context(), byID, h.approvals)
	c.JSON(http.StatusOK, batch)
}

func (h *SelectionHandler) History(c *gin.Context) {
	records, err := h.approvals.History(c.Request.Context(), c.Query("batch_id"))
	if err != nil {
		errorResponse(c, err, "failed to fetch approvals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"approvals": records, "total": len(records)})
}

func (h *SelectionHandler) ChangeQuantity(c *gin.Context) {
	bookID := c.Param("bookId")

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var quantity int
	switch {
	case req.Quantity != nil:
		quantity = *req.Quantity
		selection.ChangeQuantity(ctx, h.quantities, bookID, quantity)
	case req.Current != nil && req.Delta != nil && *req.Delta == 1:
		quantity = selection.Increment(ctx, h.quantities, bookID, *req.Current)
	case req.Current != nil && req.Delta != nil && *req.Delta == -1:
		quantity = selection.Decrement(ctx, h.quantities, bookID, *req.Current)
	case req.Current != nil && req.Delta != nil:
		quantity = selection.Step(*req.Current, *req.Delta)
		selection.ChangeQuantity(ctx, h.quantities, bookID, quantity)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either quantity or current and delta are required"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"book_id": bookID, "quantity": quantity})
}

func (h *SelectionHandler) ledger(c *gin.Context) (*selection.Ledger, bool) {
	ledger, err := h.sessions.Get(c.Param("session"))
	if err != nil {
		errorResponse(c, err, "session not found")
		return nil, false
	}
	return ledger, true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
