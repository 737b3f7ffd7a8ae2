package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniboard/backend/internal/application/services"
	"github.com/omniboard/backend/pkg/auth"
	"github.com/omniboard/backend/pkg/constants"
	"github.com/omniboard/backend/pkg/entityschema"
	"github.com/omniboard/backend/pkg/models"
)

// stubBackend satisfies services.Backend for handler tests
type stubBackend struct {
	mu          sync.Mutex
	created     []models.Record
	updated     []models.Record
	updateIDs   []string
	collections []string
	savedItems  [][]models.LineItem

	scoreErr   error
	actionsErr error
}

func (s *stubBackend) Create(ctx context.Context, collection string, attrs models.Record) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append(s.collections, collection)
	s.created = append(s.created, attrs)
	created := attrs.Clone()
	created["id"] = "new-1"
	return created, nil
}

func (s *stubBackend) Update(ctx context.Context, collection, id string, attrs models.Record) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append(s.collections, collection)
	s.updateIDs = append(s.updateIDs, id)
	s.updated = append(s.updated, attrs)
	return attrs.Clone(), nil
}

func (s *stubBackend) Remove(ctx context.Context, collection, id string) error { return nil }

func (s *stubBackend) FetchOptions(ctx context.Context, ref entityschema.OptionSourceRef) ([]models.Option, error) {
	return []models.Option{{Value: "1", Label: "One"}}, nil
}

func (s *stubBackend) ScoreLead(ctx context.Context, record models.Record) (*models.LeadScore, error) {
	if s.scoreErr != nil {
		return nil, s.scoreErr
	}
	return &models.LeadScore{Score: 70}, nil
}

func (s *stubBackend) NextActions(ctx context.Context, entityType string, record models.Record) ([]models.SuggestedAction, error) {
	if s.actionsErr != nil {
		return nil, s.actionsErr
	}
	return []models.SuggestedAction{{Title: "Follow up"}}, nil
}

func (s *stubBackend) GenerateEmail(ctx context.Context, entityType string, record models.Record, intent string) (*models.EmailDraft, error) {
	return &models.EmailDraft{Subject: "Hello", Body: "Drafted"}, nil
}

func (s *stubBackend) SaveLineItems(ctx context.Context, opportunityID string, items []models.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedItems = append(s.savedItems, items)
	return nil
}

func newTestRouter(backend services.Backend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mgr := services.NewServiceManager(backend, time.Minute)

	metadataHandler := NewMetadataHandler()
	formHandler := NewFormHandler(mgr)
	detailHandler := NewDetailHandler(mgr)

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("/metadata/entities", metadataHandler.GetEntityTypes)
		api.GET("/metadata/entities/:type", metadataHandler.GetEntitySchema)
		api.GET("/metadata/layouts/:type", metadataHandler.GetDetailLayout)

		api.POST("/forms/open", formHandler.Open)
		api.GET("/forms/:sessionId", formHandler.Get)
		api.PATCH("/forms/:sessionId/field", formHandler.SetField)
		api.POST("/forms/:sessionId/submit", formHandler.Submit)
		api.DELETE("/forms/:sessionId", formHandler.Close)

		api.POST("/details/open", detailHandler.Open)
		api.GET("/details/:viewId/enrichment", detailHandler.GetEnrichment)
		api.POST("/details/:viewId/refresh", detailHandler.Refresh)
		api.POST("/details/:viewId/email", detailHandler.GenerateEmail)
		api.GET("/details/:viewId/items", detailHandler.GetLineItems)
		api.POST("/details/:viewId/items", detailHandler.AddLineItem)
		api.PATCH("/details/:viewId/items/:index", detailHandler.UpdateLineItem)
		api.DELETE("/details/:viewId/items/:index", detailHandler.RemoveLineItem)
		api.POST("/details/:viewId/items/save", detailHandler.SaveLineItems)
		api.DELETE("/details/:viewId", detailHandler.Close)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestMetadataEndpoints(t *testing.T) {
	router := newTestRouter(&stubBackend{})

	t.Run("list entity types", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodGet, "/api/metadata/entities", nil)
		require.Equal(t, http.StatusOK, w.Code)
		types, ok := body["entity_types"].([]interface{})
		require.True(t, ok)
		assert.Len(t, types, 6)
		assert.Contains(t, types, "lead")
	})

	t.Run("entity schema", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodGet, "/api/metadata/entities/customer", nil)
		require.Equal(t, http.StatusOK, w.Code)
		switchFields, ok := body["switch_fields"].([]interface{})
		require.True(t, ok)
		assert.Equal(t, []interface{}{"vip"}, switchFields)
	})

	t.Run("detail layout", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodGet, "/api/metadata/layouts/lead", nil)
		require.Equal(t, http.StatusOK, w.Code)
		layout, ok := body["layout"].(map[string]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, layout["sections"])
	})
}

func TestFormEndpoints(t *testing.T) {
	t.Run("create flow: open, fill, submit", func(t *testing.T) {
		backend := &stubBackend{}
		router := newTestRouter(backend)

		w, body := doJSON(t, router, http.MethodPost, "/api/forms/open", gin.H{"entity_type": "lead"})
		require.Equal(t, http.StatusOK, w.Code)
		session := body["session"].(map[string]interface{})
		sessionID := session["session_id"].(string)
		assert.Equal(t, "create", session["mode"])

		for name, value := range map[string]string{"name": "Jane", "email": "jane@example.com"} {
			w, _ = doJSON(t, router, http.MethodPatch, "/api/forms/"+sessionID+"/field", gin.H{"name": name, "value": value})
			require.Equal(t, http.StatusOK, w.Code)
		}

		w, body = doJSON(t, router, http.MethodPost, "/api/forms/"+sessionID+"/submit", nil)
		require.Equal(t, http.StatusOK, w.Code)
		record := body["record"].(map[string]interface{})
		assert.Equal(t, "new-1", record["id"])

		require.Len(t, backend.created, 1)
		assert.Equal(t, []string{"crm/leads"}, backend.collections)
		assert.Equal(t, "Jane", backend.created[0].GetString("name"))

		// Successful save closed the session
		w, _ = doJSON(t, router, http.MethodGet, "/api/forms/"+sessionID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("edit flow updates the target record", func(t *testing.T) {
		backend := &stubBackend{}
		router := newTestRouter(backend)

		w, body := doJSON(t, router, http.MethodPost, "/api/forms/open", gin.H{
			"entity_type": "customer",
			"record":      gin.H{"id": "cust-3", "name": "Acme", "vip": true},
		})
		require.Equal(t, http.StatusOK, w.Code)
		session := body["session"].(map[string]interface{})
		sessionID := session["session_id"].(string)
		assert.Equal(t, "edit", session["mode"])

		w, _ = doJSON(t, router, http.MethodPost, "/api/forms/"+sessionID+"/submit", nil)
		require.Equal(t, http.StatusOK, w.Code)

		require.Equal(t, []string{"cust-3"}, backend.updateIDs)
		assert.NotContains(t, backend.updated[0], "id")
	})

	t.Run("validation failure comes back as 422", func(t *testing.T) {
		backend := &stubBackend{}
		router := newTestRouter(backend)

		_, body := doJSON(t, router, http.MethodPost, "/api/forms/open", gin.H{"entity_type": "lead"})
		sessionID := body["session"].(map[string]interface{})["session_id"].(string)

		w, body := doJSON(t, router, http.MethodPost, "/api/forms/"+sessionID+"/submit", nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		fieldErrors := body["field_errors"].(map[string]interface{})
		assert.Equal(t, "Lead Name is required", fieldErrors["name"])
		assert.Empty(t, backend.created)
	})

	t.Run("missing entity_type is a 400", func(t *testing.T) {
		router := newTestRouter(&stubBackend{})
		w, _ := doJSON(t, router, http.MethodPost, "/api/forms/open", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown session is a 404", func(t *testing.T) {
		router := newTestRouter(&stubBackend{})
		w, _ := doJSON(t, router, http.MethodGet, "/api/forms/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDetailEndpoints(t *testing.T) {
	t.Run("open reports capabilities per type", func(t *testing.T) {
		router := newTestRouter(&stubBackend{})

		w, body := doJSON(t, router, http.MethodPost, "/api/details/open", gin.H{
			"entity_type": "opportunity",
			"record_id":   "opp-1",
			"record":      gin.H{"id": "opp-1"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["enrichment"])
		assert.Equal(t, true, body["line_items"])
		assert.NotEmpty(t, body["view_id"])

		w, body = doJSON(t, router, http.MethodPost, "/api/details/open", gin.H{
			"entity_type": "customer",
			"record_id":   "cust-1",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, body["enrichment"])
		assert.Equal(t, false, body["line_items"])
	})

	t.Run("caller-supplied view id is kept", func(t *testing.T) {
		router := newTestRouter(&stubBackend{})
		w, body := doJSON(t, router, http.MethodPost, "/api/details/open", gin.H{
			"entity_type": "lead",
			"record_id":   "lead-1",
			"view_id":     "panel-7",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "panel-7", body["view_id"])
	})

	t.Run("enrichment state becomes readable", func(t *testing.T) {
		router := newTestRouter(&stubBackend{})
		_, body := doJSON(t, router, http.MethodPost, "/api/details/open", gin.H{
			"entity_type": "lead",
			"record_id":   "lead-1",
			"record":      gin.H{"id": "lead-1"},
		})
		viewID := body["view_id"].(string)

		require.Eventually(t, func() bool {
			w, body := doJSON(t, router, http.MethodGet, "/api/details/"+viewID+"/enrichment", nil)
			if w.Code != http.StatusOK {
				return false
			}
			state := body["enrichment"].(map[string]interface{})
			return state["loading"] == false && state["score"] == 70.0
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("email endpoint returns the draft", func(t *testing.T) {
		router := newTestRouter(&stubBackend{})
		_, body := doJSON(t, router, http.MethodPost, "/api/details/open", gin.H{
			"entity_type": "lead",
			"record_id":   "lead-1",
		})
		viewID := body["view_id"].(string)

		w, body := doJSON(t, router, http.MethodPost, "/api/details/"+viewID+"/email", gin.H{"intent": "pricing"})
		require.Equal(t, http.StatusOK, w.Code)
		draft := body["draft"].(map[string]interface{})
		assert.Equal(t, "Hello", draft["subject"])
	})

	t.Run("line item lifecycle over HTTP", func(t *testing.T) {
		backend := &stubBackend{}
		router := newTestRouter(backend)
		_, body := doJSON(t, router, http.MethodPost, "/api/details/open", gin.H{
			"entity_type": "opportunity",
			"record_id":   "opp-1",
			"record":      gin.H{"id": "opp-1"},
		})
		viewID := body["view_id"].(string)

		w, _ := doJSON(t, router, http.MethodPost, "/api/details/"+viewID+"/items", nil)
		require.Equal(t, http.StatusOK, w.Code)
		w, _ = doJSON(t, router, http.MethodPatch, "/api/details/"+viewID+"/items/0", gin.H{"field": "sku", "value": "A-1"})
		require.Equal(t, http.StatusOK, w.Code)
		w, _ = doJSON(t, router, http.MethodPost, "/api/details/"+viewID+"/items/save", nil)
		require.Equal(t, http.StatusOK, w.Code)

		require.Len(t, backend.savedItems, 1)
		require.Len(t, backend.savedItems[0], 1)
		assert.Equal(t, "A-1", backend.savedItems[0][0].SKU)

		// Remove the only line and save again: an empty list goes out
		w, _ = doJSON(t, router, http.MethodDelete, "/api/details/"+viewID+"/items/0", nil)
		require.Equal(t, http.StatusOK, w.Code)
		w, _ = doJSON(t, router, http.MethodPost, "/api/details/"+viewID+"/items/save", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, backend.savedItems, 2)
		assert.Len(t, backend.savedItems[1], 0)
	})

	t.Run("non-numeric item index is a 400", func(t *testing.T) {
		router := newTestRouter(&stubBackend{})
		w, _ := doJSON(t, router, http.MethodPatch, "/api/details/v/items/first", gin.H{"field": "sku", "value": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("close drops both services", func(t *testing.T) {
		router := newTestRouter(&stubBackend{})
		_, body := doJSON(t, router, http.MethodPost, "/api/details/open", gin.H{
			"entity_type": "opportunity",
			"record_id":   "opp-1",
		})
		viewID := body["view_id"].(string)

		w, _ := doJSON(t, router, http.MethodDelete, "/api/details/"+viewID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w, _ = doJSON(t, router, http.MethodGet, "/api/details/"+viewID+"/enrichment", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w, _ = doJSON(t, router, http.MethodGet, "/api/details/"+viewID+"/items", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("partial enrichment failure surfaces error and actions", func(t *testing.T) {
		backend := &stubBackend{scoreErr: fmt.Errorf("model timed out")}
		router := newTestRouter(backend)
		_, body := doJSON(t, router, http.MethodPost, "/api/details/open", gin.H{
			"entity_type": "lead",
			"record_id":   "lead-1",
		})
		viewID := body["view_id"].(string)

		require.Eventually(t, func() bool {
			w, body := doJSON(t, router, http.MethodGet, "/api/details/"+viewID+"/enrichment", nil)
			if w.Code != http.StatusOK {
				return false
			}
			state := body["enrichment"].(map[string]interface{})
			if state["loading"] != false {
				return false
			}
			actions, _ := state["suggested_actions"].([]interface{})
			return state["error"] == "AI scoring is unavailable right now" &&
				state["score"] == nil && len(actions) == 1
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestGetUserFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetUserFromContext(c))

	c.Set(constants.ContextKeyUser, auth.UserSession{ID: "u-1", Name: "Jane"})
	user := GetUserFromContext(c)
	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)
}
