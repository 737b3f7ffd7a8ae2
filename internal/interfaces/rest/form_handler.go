package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omniboard/backend/internal/application/services"
	"github.com/omniboard/backend/pkg/constants"
	"github.com/omniboard/backend/pkg/entityschema"
	"github.com/omniboard/backend/pkg/models"
)

// FormHandler exposes the form session lifecycle over HTTP
type FormHandler struct {
	svcMgr *services.ServiceManager
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(svcMgr *services.ServiceManager) *FormHandler {
	return &FormHandler{svcMgr: svcMgr}
}

type openFormRequest struct {
	EntityType string        `json:"entity_type" binding:"required"`
	Record     models.Record `json:"record"`
}

// Open starts a create/edit form session. The save handler is resolved
// here, once, from the CRUD data hook: create mode posts to the type's
// collection, edit mode updates the target record.
// POST /api/forms/open
func (h *FormHandler) Open(c *gin.Context) {
	var req openFormRequest
	if !BindJSON(c, &req) {
		return
	}

	collection := entityschema.GetCollection(req.EntityType)
	hook := h.svcMgr.DataHook()

	var save services.SubmitFunc
	if req.Record == nil {
		save = func(ctx context.Context, values models.Record) (models.Record, error) {
			return hook.Create(ctx, collection, values)
		}
	} else {
		recordID := req.Record.GetString("id")
		save = func(ctx context.Context, values models.Record) (models.Record, error) {
			return hook.Update(ctx, collection, recordID, values)
		}
	}

	snapshot := h.svcMgr.Forms.Open(c.Request.Context(), services.OpenParams{
		EntityType: req.EntityType,
		Record:     req.Record,
		Callbacks:  services.SubmitCallbacks{OnSave: save},
	})
	c.JSON(http.StatusOK, gin.H{"session": snapshot})
}

// Get returns the session snapshot, including options resolved so far
// GET /api/forms/:sessionId
func (h *FormHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "session", func() (interface{}, error) {
		return h.svcMgr.Forms.Get(c.Param("sessionId"))
	})
}

type setFieldRequest struct {
	Name  string      `json:"name" binding:"required"`
	Value interface{} `json:"value"`
}

// SetField updates one form value
// PATCH /api/forms/:sessionId/field
func (h *FormHandler) SetField(c *gin.Context) {
	var req setFieldRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleActionEnvelope(c, "Field updated", func() error {
		return h.svcMgr.Forms.SetField(c.Param("sessionId"), req.Name, req.Value)
	})
}

// Submit validates and saves the session's values. Validation failures
// come back as 422 with the per-field error map; the session stays open.
// POST /api/forms/:sessionId/submit
func (h *FormHandler) Submit(c *gin.Context) {
	saved, fieldErrors, err := h.svcMgr.Forms.Submit(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			constants.FieldMessage: "Validation failed",
			"field_errors":         fieldErrors,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		constants.FieldMessage: "Saved",
		"record":               saved,
	})
}

// Close cancels the session and discards its state
// DELETE /api/forms/:sessionId
func (h *FormHandler) Close(c *gin.Context) {
	h.svcMgr.Forms.Close(c.Param("sessionId"))
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "Session closed"})
}
