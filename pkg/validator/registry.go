// Package validator provides the form validation engine: a pluggable
// registry of per-kind validators applied over a field descriptor list.
package validator

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/omniboard/backend/pkg/entityschema"
	"github.com/omniboard/backend/pkg/models"
	"github.com/omniboard/backend/pkg/utils"
)

// FieldErrors maps field name to a user-facing message. Empty means valid.
type FieldErrors map[string]string

// ValidatorFunc validates a single non-empty value for one field kind
type ValidatorFunc func(value interface{}) error

// Registry holds kind-specific validators
type Registry struct {
	validators map[entityschema.FieldKind]ValidatorFunc
	mu         sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton validator registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			validators: make(map[entityschema.FieldKind]ValidatorFunc),
		}
		defaultRegistry.registerBuiltins()
	})
	return defaultRegistry
}

// Register adds a validator for a field kind
func (r *Registry) Register(kind entityschema.FieldKind, fn ValidatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[kind] = fn
}

// Get returns the validator for a field kind
func (r *Registry) Get(kind entityschema.FieldKind) (ValidatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.validators[kind]
	return fn, ok
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// registerBuiltins registers the built-in kind validators
func (r *Registry) registerBuiltins() {
	// Email: local@domain.tld shape
	r.Register(entityschema.KindEmail, func(value interface{}) error {
		str, ok := value.(string)
		if !ok || !emailPattern.MatchString(str) {
			return fmt.Errorf("Invalid email format")
		}
		return nil
	})

	// Number: must parse as a number and be >= 0
	r.Register(entityschema.KindNumber, func(value interface{}) error {
		num, ok := utils.ToFloat64(value)
		if !ok || num < 0 {
			return fmt.Errorf("Must be a positive number")
		}
		return nil
	})
}

// Validate applies the rules to the current form values, in field order:
// required first, then the kind-specific check for non-empty values.
// Pure and deterministic; an empty result signals "valid".
func (r *Registry) Validate(values models.Record, fields []entityschema.FieldDescriptor) FieldErrors {
	errs := FieldErrors{}
	for _, field := range fields {
		val := values.Get(field.Name)

		if field.Required && utils.IsEmpty(val) {
			errs[field.Name] = field.Label + " is required"
			continue
		}

		if utils.IsEmpty(val) {
			continue
		}

		if fn, ok := r.Get(field.Kind); ok {
			if err := fn(val); err != nil {
				errs[field.Name] = err.Error()
			}
		}
	}
	return errs
}

// Validate applies the rules using the default registry
func Validate(values models.Record, fields []entityschema.FieldDescriptor) FieldErrors {
	return GetRegistry().Validate(values, fields)
}
