package services

import (
	"context"
	"log"
	"sync"

	"github.com/omniboard/backend/internal/domain/ports"
	"github.com/omniboard/backend/pkg/entityschema"
)

// OptionResolver fetches the choice lists of remote-sourced select fields,
// at most once per field per form session. Fetches run concurrently and
// independently; one field's failure never blocks or clears another's
// resolved options — the field just keeps an empty list.
type OptionResolver struct {
	source ports.OptionSource
}

// NewOptionResolver creates a new OptionResolver
func NewOptionResolver(source ports.OptionSource) *OptionResolver {
	return &OptionResolver{source: source}
}

// Resolve issues fetches for every remote field not yet fetched in this
// session and waits for them to finish. Safe to call repeatedly; already
// fetched fields are skipped.
func (r *OptionResolver) Resolve(ctx context.Context, session *FormSession, fields []entityschema.FieldDescriptor) {
	var wg sync.WaitGroup

	for _, field := range fields {
		if !field.HasRemoteOptions() {
			continue
		}

		session.mu.Lock()
		if session.fetched[field.Name] {
			session.mu.Unlock()
			continue
		}
		session.fetched[field.Name] = true
		session.mu.Unlock()

		wg.Add(1)
		go func(field entityschema.FieldDescriptor) {
			defer wg.Done()

			options, err := r.source.FetchOptions(ctx, *field.OptionSource)
			if err != nil {
				// Degrade to an empty choice list; the rest of the form
				// is unaffected.
				log.Printf("⚠️  Option fetch failed for field '%s' (%s): %v", field.Name, field.OptionSource.Collection, err)
				return
			}

			session.mu.Lock()
			session.resolvedOptions[field.Name] = options
			session.mu.Unlock()
		}(field)
	}

	wg.Wait()
}
