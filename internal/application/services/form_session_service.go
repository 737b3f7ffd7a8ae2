package services

import (
	"context"
	"sync"
	"time"

	"github.com/omniboard/backend/pkg/entityschema"
	"github.com/omniboard/backend/pkg/errors"
	"github.com/omniboard/backend/pkg/models"
	"github.com/omniboard/backend/pkg/utils"
	"github.com/omniboard/backend/pkg/validator"
)

// Form modes
const (
	ModeCreate = "create"
	ModeEdit   = "edit"
)

// SubmitFunc persists the validated form values and returns the saved record
type SubmitFunc func(ctx context.Context, values models.Record) (models.Record, error)

// SubmitCallbacks carries the caller-supplied save handlers. Either name is
// accepted; OnSave is the more specific one and wins when both are set.
// The choice is resolved once at open time.
type SubmitCallbacks struct {
	OnSubmit SubmitFunc
	OnSave   SubmitFunc
}

func (cb SubmitCallbacks) resolve() SubmitFunc {
	if cb.OnSave != nil {
		return cb.OnSave
	}
	return cb.OnSubmit
}

// FormSession is the ephemeral state of one open form dialog. Created on
// open, destroyed on cancel or successful save, never reused across a
// different entity type or target record.
type FormSession struct {
	ID         string
	EntityType string
	Mode       string
	RecordID   string

	mu              sync.Mutex
	values          models.Record
	fieldErrors     validator.FieldErrors
	resolvedOptions map[string][]models.Option
	fetched         map[string]bool // option fetches already issued this session
	submit          SubmitFunc
	busy            bool
	lastTouched     time.Time
}

func (s *FormSession) touch() {
	s.lastTouched = time.Now()
}

// SessionSnapshot is the read view of a form session handed to callers
type SessionSnapshot struct {
	ID          string                         `json:"session_id"`
	EntityType  string                         `json:"entity_type"`
	Mode        string                         `json:"mode"`
	Values      models.Record                  `json:"values"`
	FieldErrors validator.FieldErrors          `json:"field_errors"`
	Options     map[string][]models.Option     `json:"options"`
	Fields      []entityschema.FieldDescriptor `json:"fields"`
	Busy        bool                           `json:"busy"`
}

// OpenParams configures one create/edit interaction
type OpenParams struct {
	EntityType string
	// Record is the existing record for edit mode; nil opens create mode.
	Record    models.Record
	Callbacks SubmitCallbacks
}

// FormSessionService owns the lifecycle of form sessions: it seeds values
// from the schema registry or an existing record, drives the option
// resolver and validation engine, and funnels saves through the resolved
// submit callback.
type FormSessionService struct {
	schemas   *entityschema.Registry
	validator *validator.Registry
	resolver  *OptionResolver

	mu       sync.RWMutex
	sessions map[string]*FormSession
}

// NewFormSessionService creates a new FormSessionService
func NewFormSessionService(resolver *OptionResolver) *FormSessionService {
	return &FormSessionService{
		schemas:   entityschema.GetRegistry(),
		validator: validator.GetRegistry(),
		resolver:  resolver,
		sessions:  make(map[string]*FormSession),
	}
}

// Open starts a new form session. Values come from the existing record
// (edit) or the type's defaults (create); field errors start clear; option
// resolution for the type's remote fields is kicked off concurrently.
func (svc *FormSessionService) Open(ctx context.Context, params OpenParams) *SessionSnapshot {
	mode := ModeCreate
	var values models.Record
	recordID := ""
	if params.Record != nil {
		mode = ModeEdit
		values = params.Record.Clone()
		recordID = params.Record.GetString("id")
	} else {
		values = svc.schemas.GetDefaults(params.EntityType)
	}

	session := &FormSession{
		ID:              utils.GenerateID(),
		EntityType:      params.EntityType,
		Mode:            mode,
		RecordID:        recordID,
		values:          values,
		fieldErrors:     validator.FieldErrors{},
		resolvedOptions: make(map[string][]models.Option),
		fetched:         make(map[string]bool),
		submit:          params.Callbacks.resolve(),
	}
	session.touch()

	svc.mu.Lock()
	svc.sessions[session.ID] = session
	svc.mu.Unlock()

	// Option fetches must not block the open; the snapshot below reflects
	// whatever has resolved by the time it is read.
	go svc.resolver.Resolve(context.Background(), session, svc.schemas.GetFields(params.EntityType))

	return svc.snapshot(session)
}

// ResolveOptions runs option resolution for the session and waits for all
// pending fetches. Fields already fetched this session are not re-fetched.
func (svc *FormSessionService) ResolveOptions(ctx context.Context, sessionID string) error {
	session, err := svc.get(sessionID)
	if err != nil {
		return err
	}
	svc.resolver.Resolve(ctx, session, svc.schemas.GetFields(session.EntityType))
	return nil
}

// SetField updates one value. A previously recorded error for the field is
// cleared immediately; full validation does not re-run until submit.
func (svc *FormSessionService) SetField(sessionID, name string, value interface{}) error {
	session, err := svc.get(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.values[name] = value
	delete(session.fieldErrors, name)
	session.touch()
	return nil
}

// Submit validates the current values and, if clean, invokes the resolved
// submit callback with the values restricted to the schema's field names.
// Validation failures populate the session's field errors and never reach
// the callback. On callback failure the session stays open and editable.
func (svc *FormSessionService) Submit(ctx context.Context, sessionID string) (models.Record, validator.FieldErrors, error) {
	session, err := svc.get(sessionID)
	if err != nil {
		return nil, nil, err
	}

	fields := svc.schemas.GetFields(session.EntityType)
	switchFields := svc.schemas.GetSwitchFields(session.EntityType)

	session.mu.Lock()
	if session.busy {
		session.mu.Unlock()
		return nil, nil, errors.NewValidationError("", "submission already in flight")
	}

	errs := svc.validator.Validate(session.values, fields)
	if len(errs) > 0 {
		session.fieldErrors = errs
		session.touch()
		session.mu.Unlock()
		return nil, errs, nil
	}

	submit := session.submit
	if submit == nil {
		session.mu.Unlock()
		return nil, nil, errors.NewInternalError("no submit callback registered for session", nil)
	}

	payload := buildSubmitPayload(session.values, fields, switchFields)
	session.busy = true
	session.touch()
	session.mu.Unlock()

	saved, err := submit(ctx, payload)
	if err != nil {
		session.mu.Lock()
		session.busy = false
		session.mu.Unlock()
		return nil, nil, err
	}

	// Successful save closes the session
	svc.Close(sessionID)
	return saved, nil, nil
}

// buildSubmitPayload restricts values to the schema's field names. Switch
// fields are always emitted as booleans, defaulting to false when absent.
func buildSubmitPayload(values models.Record, fields []entityschema.FieldDescriptor, switchFields []string) models.Record {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	payload := values.Pick(names)
	for _, name := range switchFields {
		payload[name] = utils.ToBool(values.Get(name))
	}
	return payload
}

// Get returns the current snapshot of a session
func (svc *FormSessionService) Get(sessionID string) (*SessionSnapshot, error) {
	session, err := svc.get(sessionID)
	if err != nil {
		return nil, err
	}
	return svc.snapshot(session), nil
}

// Close destroys a session (cancel or successful save). Any still-in-flight
// option fetch finds the session gone and its result is dropped.
func (svc *FormSessionService) Close(sessionID string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.sessions, sessionID)
}

// SweepExpired removes sessions idle for longer than ttl and returns how
// many were dropped.
func (svc *FormSessionService) SweepExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	svc.mu.Lock()
	defer svc.mu.Unlock()

	removed := 0
	for id, session := range svc.sessions {
		session.mu.Lock()
		stale := session.lastTouched.Before(cutoff) && !session.busy
		session.mu.Unlock()
		if stale {
			delete(svc.sessions, id)
			removed++
		}
	}
	return removed
}

func (svc *FormSessionService) get(sessionID string) (*FormSession, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	session, ok := svc.sessions[sessionID]
	if !ok {
		return nil, errors.NewNotFoundError("form session", sessionID)
	}
	return session, nil
}

func (svc *FormSessionService) snapshot(session *FormSession) *SessionSnapshot {
	session.mu.Lock()
	defer session.mu.Unlock()

	options := make(map[string][]models.Option, len(session.resolvedOptions))
	for name, opts := range session.resolvedOptions {
		options[name] = opts
	}
	fieldErrors := validator.FieldErrors{}
	for name, msg := range session.fieldErrors {
		fieldErrors[name] = msg
	}

	return &SessionSnapshot{
		ID:          session.ID,
		EntityType:  session.EntityType,
		Mode:        session.Mode,
		Values:      session.values.Clone(),
		FieldErrors: fieldErrors,
		Options:     options,
		Fields:      svc.schemas.GetFields(session.EntityType),
		Busy:        session.busy,
	}
}
