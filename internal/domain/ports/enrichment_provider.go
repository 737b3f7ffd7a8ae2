package ports

import (
	"context"

	"github.com/omniboard/backend/pkg/models"
)

// EnrichmentProvider issues the AI enrichment calls for a detail view.
// Each call is independent; the orchestrator owns concurrency and
// stale-response guarding.
type EnrichmentProvider interface {
	ScoreLead(ctx context.Context, record models.Record) (*models.LeadScore, error)
	NextActions(ctx context.Context, entityType string, record models.Record) ([]models.SuggestedAction, error)
	GenerateEmail(ctx context.Context, entityType string, record models.Record, intent string) (*models.EmailDraft, error)
}

// LineItemSaver persists an opportunity's full product list
// (last-writer-wins, no merge).
type LineItemSaver interface {
	SaveLineItems(ctx context.Context, opportunityID string, items []models.LineItem) error
}
