package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omniboard/backend/pkg/entityschema"
	"github.com/omniboard/backend/pkg/layout"
)

// MetadataHandler serves the declarative entity schemas and detail layouts
type MetadataHandler struct {
	schemas *entityschema.Registry
}

// NewMetadataHandler creates a new MetadataHandler
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{schemas: entityschema.GetRegistry()}
}

// GetEntityTypes returns all registered entity type names
// GET /api/metadata/entities
func (h *MetadataHandler) GetEntityTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entity_types": h.schemas.Types()})
}

// GetEntitySchema returns defaults, fields and switch fields for a type.
// Unknown types yield empty collections rather than an error.
// GET /api/metadata/entities/:type
func (h *MetadataHandler) GetEntitySchema(c *gin.Context) {
	entityType := c.Param("type")
	c.JSON(http.StatusOK, gin.H{
		"entity_type":   entityType,
		"defaults":      h.schemas.GetDefaults(entityType),
		"fields":        h.schemas.GetFields(entityType),
		"switch_fields": h.schemas.GetSwitchFields(entityType),
	})
}

// GetDetailLayout returns the read-only detail layout for a type
// GET /api/metadata/layouts/:type
func (h *MetadataHandler) GetDetailLayout(c *gin.Context) {
	entityType := c.Param("type")
	c.JSON(http.StatusOK, gin.H{
		"entity_type": entityType,
		"layout":      layout.GetDetailLayout(entityType),
	})
}
