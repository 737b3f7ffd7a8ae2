package services

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionJanitor sweeps abandoned form sessions and detail views on a cron
// schedule. Sessions are ephemeral by design; a closed browser tab never
// sends a DELETE, so idle state has to age out server-side.
type SessionJanitor struct {
	forms      *FormSessionService
	enrichment *EnrichmentService
	lineItems  *LineItemService
	ttl        time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewSessionJanitor creates a new SessionJanitor
func NewSessionJanitor(forms *FormSessionService, enrichment *EnrichmentService, lineItems *LineItemService, ttl time.Duration) *SessionJanitor {
	return &SessionJanitor{
		forms:      forms,
		enrichment: enrichment,
		lineItems:  lineItems,
		ttl:        ttl,
	}
}

// Start schedules the sweep with the given cron spec (e.g. "@every 5m")
func (j *SessionJanitor) Start(spec string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, j.Sweep); err != nil {
		return err
	}
	c.Start()

	j.cron = c
	j.running = true
	return nil
}

// Stop halts the sweep schedule and waits for a running sweep to finish
func (j *SessionJanitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.running {
		return
	}
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.running = false
}

// Sweep drops every session and view idle for longer than the TTL
func (j *SessionJanitor) Sweep() {
	forms := j.forms.SweepExpired(j.ttl)
	views := j.enrichment.SweepExpired(j.ttl)
	lists := j.lineItems.SweepExpired(j.ttl)
	if forms+views+lists > 0 {
		log.Printf("🧹 Session janitor dropped %d form sessions, %d detail views, %d line item editors", forms, views, lists)
	}
}
