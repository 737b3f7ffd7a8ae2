package services

import (
	"time"

	"github.com/omniboard/backend/internal/domain/ports"
)

// Backend bundles the outbound ports of the engine. The production
// implementation is the platform HTTP client; tests substitute fakes.
type Backend interface {
	ports.DataHook
	ports.EnrichmentProvider
	ports.OptionSource
	ports.LineItemSaver
}

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	backend Backend

	Forms      *FormSessionService
	Enrichment *EnrichmentService
	LineItems  *LineItemService
	Janitor    *SessionJanitor
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(backend Backend, sessionTTL time.Duration) *ServiceManager {
	sm := &ServiceManager{
		backend: backend,
	}

	resolver := NewOptionResolver(backend)
	sm.Forms = NewFormSessionService(resolver)
	sm.Enrichment = NewEnrichmentService(backend)
	sm.LineItems = NewLineItemService(backend)
	sm.Janitor = NewSessionJanitor(sm.Forms, sm.Enrichment, sm.LineItems, sessionTTL)

	return sm
}

// DataHook exposes the CRUD collaborator so the REST layer can build
// submit callbacks for form sessions.
func (sm *ServiceManager) DataHook() ports.DataHook {
	return sm.backend
}

// StartJanitor starts the background session sweep.
// Call this during server startup.
func (sm *ServiceManager) StartJanitor(spec string) error {
	return sm.Janitor.Start(spec)
}

// StopJanitor stops the background session sweep gracefully.
// Call this during server shutdown.
func (sm *ServiceManager) StopJanitor() {
	sm.Janitor.Stop()
}
