// Package crmapi implements the engine's outbound ports against the
// platform HTTP API (CRUD collections, AI enrichment, option collections).
package crmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/omniboard/backend/internal/domain/ports"
	"github.com/omniboard/backend/pkg/constants"
	"github.com/omniboard/backend/pkg/entityschema"
	"github.com/omniboard/backend/pkg/errors"
	"github.com/omniboard/backend/pkg/models"
)

// Client talks to the platform API. Base URL comes from API_BASE_URL
// (default http://localhost:5000/api).
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Compile-time port checks
var (
	_ ports.DataHook           = (*Client)(nil)
	_ ports.EnrichmentProvider = (*Client)(nil)
	_ ports.OptionSource       = (*Client)(nil)
	_ ports.LineItemSaver      = (*Client)(nil)
)

// NewClient creates a client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientFromEnv creates a client configured from the environment
func NewClientFromEnv() *Client {
	baseURL := os.Getenv(constants.EnvAPIBaseURL)
	if baseURL == "" {
		baseURL = constants.DefaultAPIBaseURL
	}
	return NewClient(baseURL)
}

// Helper to execute requests
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	fullURL := fmt.Sprintf("%s%s", c.BaseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBytes, _ := io.ReadAll(resp.Body)
		return errors.NewUpstreamError(path, fmt.Errorf("api error (%d): %s", resp.StatusCode, string(respBytes)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CRUD data hook

// Create posts a new record to a collection
func (c *Client) Create(ctx context.Context, collection string, attrs models.Record) (models.Record, error) {
	var created models.Record
	if err := c.doRequest(ctx, "POST", fmt.Sprintf("/%s", collection), attrs, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces a record's attributes
func (c *Client) Update(ctx context.Context, collection, id string, attrs models.Record) (models.Record, error) {
	var updated models.Record
	if err := c.doRequest(ctx, "PUT", fmt.Sprintf("/%s/%s", collection, id), attrs, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes a record
func (c *Client) Remove(ctx context.Context, collection, id string) error {
	return c.doRequest(ctx, "DELETE", fmt.Sprintf("/%s/%s", collection, id), nil, nil)
}

// AI enrichment endpoints

// ScoreLead requests an AI score for a lead record
func (c *Client) ScoreLead(ctx context.Context, record models.Record) (*models.LeadScore, error) {
	var score models.LeadScore
	body := map[string]interface{}{"lead": record}
	if err := c.doRequest(ctx, "POST", "/crm/ai/score-lead", body, &score); err != nil {
		return nil, err
	}
	return &score, nil
}

// NextActions requests AI-suggested next steps for a record
func (c *Client) NextActions(ctx context.Context, entityType string, record models.Record) ([]models.SuggestedAction, error) {
	var resp struct {
		Actions []models.SuggestedAction `json:"actions"`
	}
	body := map[string]interface{}{
		"entity_type": entityType,
		"record":      record,
	}
	if err := c.doRequest(ctx, "POST", "/crm/ai/next-actions", body, &resp); err != nil {
		return nil, err
	}
	return resp.Actions, nil
}

// GenerateEmail requests a drafted outreach email for a record
func (c *Client) GenerateEmail(ctx context.Context, entityType string, record models.Record, intent string) (*models.EmailDraft, error) {
	var draft models.EmailDraft
	body := map[string]interface{}{
		"entity_type": entityType,
		"record":      record,
		"intent":      intent,
	}
	if err := c.doRequest(ctx, "POST", "/crm/ai/generate-email", body, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// SaveLineItems replaces the stored product list of an opportunity
func (c *Client) SaveLineItems(ctx context.Context, opportunityID string, items []models.LineItem) error {
	body := map[string]interface{}{"products": items}
	return c.doRequest(ctx, "PUT", fmt.Sprintf("/crm/opportunities/%s", opportunityID), body, nil)
}

// FetchOptions loads the choice list of a remote-sourced select field.
// The collection endpoint may return either a bare array or {"data": [...]}.
func (c *Client) FetchOptions(ctx context.Context, ref entityschema.OptionSourceRef) ([]models.Option, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, "GET", fmt.Sprintf("/%s", ref.Collection), nil, &raw); err != nil {
		return nil, err
	}

	records, err := decodeCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid options payload for %s: %w", ref.Collection, err)
	}

	options := make([]models.Option, 0, len(records))
	for _, rec := range records {
		options = append(options, models.Option{
			Value: attrAsString(rec, ref.ValueAttr),
			Label: attrAsString(rec, ref.LabelAttr),
		})
	}
	return options, nil
}

// decodeCollection accepts both collection payload shapes
func decodeCollection(raw json.RawMessage) ([]models.Record, error) {
	var records []models.Record
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var envelope struct {
		Data []models.Record `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// attrAsString renders a record attribute for use as an option value/label
func attrAsString(rec models.Record, attr string) string {
	val, ok := rec[attr]
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", val)
}
