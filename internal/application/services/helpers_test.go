package services

import (
	"context"
	"sync"

	"github.com/omniboard/backend/pkg/entityschema"
	"github.com/omniboard/backend/pkg/models"
)

// fakeBackend is an in-memory stand-in for the platform API client.
// Individual behaviors are overridden per test via the function fields.
type fakeBackend struct {
	mu           sync.Mutex
	optionCalls  map[string]int
	createCalls  int
	updateCalls  int
	savedItems   [][]models.LineItem
	savedOppIDs  []string
	lastCreated  models.Record
	lastUpdated  models.Record
	lastUpdateID string

	optionsFn func(ref entityschema.OptionSourceRef) ([]models.Option, error)
	scoreFn   func(record models.Record) (*models.LeadScore, error)
	actionsFn func(entityType string, record models.Record) ([]models.SuggestedAction, error)
	emailFn   func(entityType string, record models.Record, intent string) (*models.EmailDraft, error)
	saveFn    func(opportunityID string, items []models.LineItem) error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		optionCalls: make(map[string]int),
	}
}

func (f *fakeBackend) Create(ctx context.Context, collection string, attrs models.Record) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastCreated = attrs
	created := attrs.Clone()
	created["id"] = "created-1"
	return created, nil
}

func (f *fakeBackend) Update(ctx context.Context, collection, id string, attrs models.Record) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastUpdateID = id
	f.lastUpdated = attrs
	return attrs.Clone(), nil
}

func (f *fakeBackend) Remove(ctx context.Context, collection, id string) error {
	return nil
}

func (f *fakeBackend) FetchOptions(ctx context.Context, ref entityschema.OptionSourceRef) ([]models.Option, error) {
	f.mu.Lock()
	f.optionCalls[ref.Collection]++
	f.mu.Unlock()
	if f.optionsFn != nil {
		return f.optionsFn(ref)
	}
	return []models.Option{{Value: "1", Label: "One"}}, nil
}

func (f *fakeBackend) optionCallCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.optionCalls[collection]
}

func (f *fakeBackend) ScoreLead(ctx context.Context, record models.Record) (*models.LeadScore, error) {
	if f.scoreFn != nil {
		return f.scoreFn(record)
	}
	return &models.LeadScore{Score: 75, Reasons: []string{"Engaged recently"}}, nil
}

func (f *fakeBackend) NextActions(ctx context.Context, entityType string, record models.Record) ([]models.SuggestedAction, error) {
	if f.actionsFn != nil {
		return f.actionsFn(entityType, record)
	}
	return []models.SuggestedAction{}, nil
}

func (f *fakeBackend) GenerateEmail(ctx context.Context, entityType string, record models.Record, intent string) (*models.EmailDraft, error) {
	if f.emailFn != nil {
		return f.emailFn(entityType, record, intent)
	}
	return &models.EmailDraft{Subject: "Hello", Body: "Generated body"}, nil
}

func (f *fakeBackend) SaveLineItems(ctx context.Context, opportunityID string, items []models.LineItem) error {
	f.mu.Lock()
	f.savedOppIDs = append(f.savedOppIDs, opportunityID)
	f.savedItems = append(f.savedItems, items)
	f.mu.Unlock()
	if f.saveFn != nil {
		return f.saveFn(opportunityID, items)
	}
	return nil
}

func (f *fakeBackend) lastSavedItems() ([]models.LineItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.savedItems) == 0 {
		return nil, false
	}
	return f.savedItems[len(f.savedItems)-1], true
}

func newTestManager(backend Backend) *ServiceManager {
	return NewServiceManager(backend, 0)
}
