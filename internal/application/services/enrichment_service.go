package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/omniboard/backend/internal/domain/ports"
	"github.com/omniboard/backend/pkg/constants"
	"github.com/omniboard/backend/pkg/errors"
	"github.com/omniboard/backend/pkg/models"
	"github.com/omniboard/backend/pkg/utils"
)

// enrichmentView is the per-open-detail-view enrichment state. The fetch
// token is rotated on every open/refresh; a response whose captured token
// no longer matches is dropped, never applied. That is the only guard
// against a slow stale response overwriting a newer record's data.
type enrichmentView struct {
	viewID     string
	entityType string
	recordID   string
	record     models.Record

	mu sync.Mutex
	// openToken identifies this (open, type, record) triple; it never
	// changes after Open. token identifies one scoring+actions batch and
	// rotates on every refresh.
	openToken   string
	token       string
	state       models.EnrichmentState
	lastTouched time.Time
}

// EnrichmentService orchestrates the concurrent, partially-failable AI
// calls of a detail view: scoring (leads only) and next-best-actions
// (leads and opportunities), plus on-demand email generation.
type EnrichmentService struct {
	provider ports.EnrichmentProvider

	mu    sync.RWMutex
	views map[string]*enrichmentView
}

// NewEnrichmentService creates a new EnrichmentService
func NewEnrichmentService(provider ports.EnrichmentProvider) *EnrichmentService {
	return &EnrichmentService{
		provider: provider,
		views:    make(map[string]*enrichmentView),
	}
}

// Open registers (or re-registers) a detail view. Reopening a view id for
// a different record resets all state; entity types without enrichment get
// an inert view so state reads stay uniform.
func (svc *EnrichmentService) Open(viewID, entityType, recordID string, record models.Record) {
	view := &enrichmentView{
		viewID:      viewID,
		entityType:  entityType,
		recordID:    recordID,
		record:      record.Clone(),
		openToken:   utils.GenerateID(),
		lastTouched: time.Now(),
	}

	svc.mu.Lock()
	svc.views[viewID] = view
	svc.mu.Unlock()

	if constants.EnrichmentSupported(entityType) {
		svc.startFetch(view)
	}
}

// Refresh re-runs the scoring and next-actions fetches for the current
// record. Slots keep their last values until fresh responses arrive; the
// rotated token supersedes any fetch still in flight.
func (svc *EnrichmentService) Refresh(viewID string) error {
	view, err := svc.get(viewID)
	if err != nil {
		return err
	}
	if !constants.EnrichmentSupported(view.entityType) {
		return nil
	}
	svc.startFetch(view)
	return nil
}

// startFetch transitions the view into the fetching state and issues the
// scoring and next-actions requests concurrently.
func (svc *EnrichmentService) startFetch(view *enrichmentView) {
	view.mu.Lock()
	token := utils.GenerateID()
	view.token = token
	view.state.Loading = true
	view.state.Error = ""
	view.lastTouched = time.Now()
	view.mu.Unlock()

	var wg sync.WaitGroup

	if constants.ScoringSupported(view.entityType) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			score, err := svc.provider.ScoreLead(context.Background(), view.record)
			if err != nil {
				log.Printf("⚠️  Lead scoring failed for %s: %v", view.recordID, err)
				svc.apply(view.viewID, token, func(state *models.EnrichmentState) {
					state.Error = "AI scoring is unavailable right now"
				})
				return
			}
			svc.apply(view.viewID, token, func(state *models.EnrichmentState) {
				state.Score = &score.Score
				state.ScoreReasons = append([]string(nil), score.Reasons...)
			})
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		actions, err := svc.provider.NextActions(context.Background(), view.entityType, view.record)
		if err != nil {
			log.Printf("⚠️  Next-actions fetch failed for %s: %v", view.recordID, err)
			svc.apply(view.viewID, token, func(state *models.EnrichmentState) {
				state.Error = "AI suggestions are unavailable right now"
			})
			return
		}
		svc.apply(view.viewID, token, func(state *models.EnrichmentState) {
			state.SuggestedActions = append([]models.SuggestedAction(nil), actions...)
		})
	}()

	go func() {
		wg.Wait()
		svc.apply(view.viewID, token, func(state *models.EnrichmentState) {
			state.Loading = false
		})
	}()
}

// GenerateEmail drafts an outreach email for the view's record. A provider
// failure is masked by a locally-built generic draft so the caller always
// has something to send. The draft is a local, user-editable copy; nothing
// is auto-saved.
func (svc *EnrichmentService) GenerateEmail(ctx context.Context, viewID, intent string) (*models.EmailDraft, error) {
	view, err := svc.get(viewID)
	if err != nil {
		return nil, err
	}

	view.mu.Lock()
	openToken := view.openToken
	view.state.EmailLoading = true
	view.lastTouched = time.Now()
	view.mu.Unlock()

	draft, genErr := svc.provider.GenerateEmail(ctx, view.entityType, view.record, intent)
	if genErr != nil {
		log.Printf("⚠️  Email generation failed for %s, using fallback draft: %v", view.recordID, genErr)
		draft = fallbackDraft(view.record, intent)
	}

	// Guarded by the open identity, not the batch token: a refresh of the
	// same record must not discard the draft, a record switch must.
	svc.applyIfOpen(viewID, openToken, func(state *models.EnrichmentState) {
		state.EmailDraft = draft
		state.EmailLoading = false
	})
	return draft, nil
}

// fallbackDraft builds the generic local draft used when generation fails
func fallbackDraft(record models.Record, intent string) *models.EmailDraft {
	name := record.GetString("name")
	if name == "" {
		name = "there"
	}
	subject := "Following up"
	if intent != "" {
		subject = fmt.Sprintf("Following up: %s", intent)
	}
	body := fmt.Sprintf("Hi %s,\n\nI wanted to reach out and follow up with you. "+
		"Please let me know a good time to connect.\n\nBest regards", name)
	return &models.EmailDraft{Subject: subject, Body: body}
}

// GetState returns a copy of the view's current enrichment state
func (svc *EnrichmentService) GetState(viewID string) (models.EnrichmentState, error) {
	view, err := svc.get(viewID)
	if err != nil {
		return models.EnrichmentState{}, err
	}

	view.mu.Lock()
	defer view.mu.Unlock()
	state := view.state
	state.ScoreReasons = append([]string(nil), view.state.ScoreReasons...)
	state.SuggestedActions = append([]models.SuggestedAction(nil), view.state.SuggestedActions...)
	if view.state.Score != nil {
		score := *view.state.Score
		state.Score = &score
	}
	if view.state.EmailDraft != nil {
		draft := *view.state.EmailDraft
		state.EmailDraft = &draft
	}
	return state, nil
}

// Close drops the view. In-flight fetches find their token orphaned and
// their results are discarded (logical cancellation).
func (svc *EnrichmentService) Close(viewID string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.views, viewID)
}

// SweepExpired removes views idle for longer than ttl
func (svc *EnrichmentService) SweepExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	svc.mu.Lock()
	defer svc.mu.Unlock()

	removed := 0
	for id, view := range svc.views {
		view.mu.Lock()
		stale := view.lastTouched.Before(cutoff)
		view.mu.Unlock()
		if stale {
			delete(svc.views, id)
			removed++
		}
	}
	return removed
}

// apply runs fn against the view's state only if the view is still open
// and its fetch token still matches the one captured at issue time.
func (svc *EnrichmentService) apply(viewID, token string, fn func(*models.EnrichmentState)) {
	svc.mu.RLock()
	view, ok := svc.views[viewID]
	svc.mu.RUnlock()
	if !ok {
		return
	}

	view.mu.Lock()
	defer view.mu.Unlock()
	if view.token != token {
		return
	}
	fn(&view.state)
	view.lastTouched = time.Now()
}

// applyIfOpen runs fn as long as the same (open, type, record) triple is
// still active, regardless of refresh batches in between.
func (svc *EnrichmentService) applyIfOpen(viewID, openToken string, fn func(*models.EnrichmentState)) {
	svc.mu.RLock()
	view, ok := svc.views[viewID]
	svc.mu.RUnlock()
	if !ok {
		return
	}

	view.mu.Lock()
	defer view.mu.Unlock()
	if view.openToken != openToken {
		return
	}
	fn(&view.state)
	view.lastTouched = time.Now()
}

func (svc *EnrichmentService) get(viewID string) (*enrichmentView, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	view, ok := svc.views[viewID]
	if !ok {
		return nil, errors.NewNotFoundError("detail view", viewID)
	}
	return view, nil
}
