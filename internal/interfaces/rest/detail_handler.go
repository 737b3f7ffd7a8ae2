package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/omniboard/backend/internal/application/services"
	"github.com/omniboard/backend/pkg/constants"
	"github.com/omniboard/backend/pkg/errors"
	"github.com/omniboard/backend/pkg/layout"
	"github.com/omniboard/backend/pkg/models"
	"github.com/omniboard/backend/pkg/utils"
)

// DetailHandler exposes detail views: enrichment orchestration and the
// opportunity line-item editor. The two share a view id but nothing else —
// one can fail while the other succeeds.
type DetailHandler struct {
	svcMgr *services.ServiceManager
}

// NewDetailHandler creates a new DetailHandler
func NewDetailHandler(svcMgr *services.ServiceManager) *DetailHandler {
	return &DetailHandler{svcMgr: svcMgr}
}

type openDetailRequest struct {
	EntityType string        `json:"entity_type" binding:"required"`
	RecordID   string        `json:"record_id" binding:"required"`
	Record     models.Record `json:"record"`
	// ViewID lets a client reuse its panel identity across record
	// switches; omitted, a fresh one is minted.
	ViewID string `json:"view_id"`
}

// Open registers a detail view, kicks off enrichment for supported types
// and seeds the line-item editor for opportunities.
// POST /api/details/open
func (h *DetailHandler) Open(c *gin.Context) {
	var req openDetailRequest
	if !BindJSON(c, &req) {
		return
	}

	viewID := req.ViewID
	if viewID == "" {
		viewID = utils.GenerateID()
	}
	record := req.Record
	if record == nil {
		record = models.Record{}
	}

	h.svcMgr.Enrichment.Open(viewID, req.EntityType, req.RecordID, record)
	if constants.LineItemsSupported(req.EntityType) {
		h.svcMgr.LineItems.Open(viewID, req.RecordID, record)
	}

	c.JSON(http.StatusOK, gin.H{
		"view_id":     viewID,
		"entity_type": req.EntityType,
		"layout":      layout.GetDetailLayout(req.EntityType),
		"enrichment":  constants.EnrichmentSupported(req.EntityType),
		"line_items":  constants.LineItemsSupported(req.EntityType),
	})
}

// GetEnrichment returns the view's current enrichment state
// GET /api/details/:viewId/enrichment
func (h *DetailHandler) GetEnrichment(c *gin.Context) {
	HandleGetEnvelope(c, "enrichment", func() (interface{}, error) {
		return h.svcMgr.Enrichment.GetState(c.Param("viewId"))
	})
}

// Refresh re-runs the scoring and next-actions fetches
// POST /api/details/:viewId/refresh
func (h *DetailHandler) Refresh(c *gin.Context) {
	HandleActionEnvelope(c, "Refresh started", func() error {
		return h.svcMgr.Enrichment.Refresh(c.Param("viewId"))
	})
}

type generateEmailRequest struct {
	Intent string `json:"intent"`
}

// GenerateEmail drafts an outreach email for the view's record
// POST /api/details/:viewId/email
func (h *DetailHandler) GenerateEmail(c *gin.Context) {
	var req generateEmailRequest
	if !BindJSON(c, &req) {
		return
	}
	draft, err := h.svcMgr.Enrichment.GenerateEmail(c.Request.Context(), c.Param("viewId"), req.Intent)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// AddLineItem appends a blank line to the editor
// POST /api/details/:viewId/items
func (h *DetailHandler) AddLineItem(c *gin.Context) {
	HandleGetEnvelope(c, "items", func() (interface{}, error) {
		return h.svcMgr.LineItems.Add(c.Param("viewId"))
	})
}

type updateLineItemRequest struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

// UpdateLineItem replaces one attribute at one index
// PATCH /api/details/:viewId/items/:index
func (h *DetailHandler) UpdateLineItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		RespondAppError(c, errors.NewValidationError("index", "index must be a number"))
		return
	}
	var req updateLineItemRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleActionEnvelope(c, "Line item updated", func() error {
		return h.svcMgr.LineItems.Update(c.Param("viewId"), index, req.Field, req.Value)
	})
}

// RemoveLineItem deletes one entry
// DELETE /api/details/:viewId/items/:index
func (h *DetailHandler) RemoveLineItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		RespondAppError(c, errors.NewValidationError("index", "index must be a number"))
		return
	}
	HandleActionEnvelope(c, "Line item removed", func() error {
		return h.svcMgr.LineItems.Remove(c.Param("viewId"), index)
	})
}

// GetLineItems returns the editor's current list and save status
// GET /api/details/:viewId/items
func (h *DetailHandler) GetLineItems(c *gin.Context) {
	HandleGetEnvelope(c, "line_items", func() (interface{}, error) {
		return h.svcMgr.LineItems.Get(c.Param("viewId"))
	})
}

// SaveLineItems persists the full current list. Failure preserves the
// local edits so the user can retry.
// POST /api/details/:viewId/items/save
func (h *DetailHandler) SaveLineItems(c *gin.Context) {
	HandleActionEnvelope(c, "Line items saved", func() error {
		return h.svcMgr.LineItems.Save(c.Request.Context(), c.Param("viewId"))
	})
}

// Close drops the detail view; in-flight enrichment results are discarded
// DELETE /api/details/:viewId
func (h *DetailHandler) Close(c *gin.Context) {
	viewID := c.Param("viewId")
	h.svcMgr.Enrichment.Close(viewID)
	h.svcMgr.LineItems.Close(viewID)
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "View closed"})
}
