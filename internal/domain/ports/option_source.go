package ports

import (
	"context"

	"github.com/omniboard/backend/pkg/entityschema"
	"github.com/omniboard/backend/pkg/models"
)

// OptionSource fetches the choice list for a remote-sourced select field.
// Implementations accept both a bare JSON array and a {"data": [...]}
// envelope from the collection endpoint.
type OptionSource interface {
	FetchOptions(ctx context.Context, ref entityschema.OptionSourceRef) ([]models.Option, error)
}
