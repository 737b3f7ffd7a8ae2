package ports

import (
	"context"

	"github.com/omniboard/backend/pkg/models"
)

// DataHook is the CRUD contract of the entity collections backing the
// forms. The form session controller calls Create/Update; Remove exists on
// the collaborator but is never called by the engine.
type DataHook interface {
	Create(ctx context.Context, collection string, attrs models.Record) (models.Record, error)
	Update(ctx context.Context, collection, id string, attrs models.Record) (models.Record, error)
	Remove(ctx context.Context, collection, id string) error
}
