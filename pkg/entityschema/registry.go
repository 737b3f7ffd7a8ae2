package entityschema

import (
	"embed"
	"encoding/json"
	"sort"
	"sync"

	"github.com/omniboard/backend/pkg/models"
)

//go:embed entitySchemas.json
var entitySchemasFS embed.FS

// Registry holds the declarative entity schemas
type Registry struct {
	schemas map[string]EntitySchema
	mu      sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton entity schema registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			schemas: make(map[string]EntitySchema),
		}
		defaultRegistry.loadFromEmbedded()
	})
	return defaultRegistry
}

// loadFromEmbedded loads entity schemas from the embedded JSON file
func (r *Registry) loadFromEmbedded() error {
	data, err := entitySchemasFS.ReadFile("entitySchemas.json")
	if err != nil {
		return err
	}

	var schemas map[string]EntitySchema
	if err := json.Unmarshal(data, &schemas); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas = schemas
	return nil
}

// Get returns the schema for an entity type
func (r *Registry) Get(entityType string) (EntitySchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schema, ok := r.schemas[entityType]
	return schema, ok
}

// GetDefaults returns a copy of the default attribute map for an entity
// type. Unknown types yield an empty map, never nil, so callers don't need
// a missing-type branch.
func (r *Registry) GetDefaults(entityType string) models.Record {
	schema, ok := r.Get(entityType)
	if !ok {
		return models.Record{}
	}
	return schema.Defaults.Clone()
}

// GetFields returns the ordered field descriptors for an entity type.
// Unknown types yield an empty list.
func (r *Registry) GetFields(entityType string) []FieldDescriptor {
	schema, ok := r.Get(entityType)
	if !ok {
		return []FieldDescriptor{}
	}
	fields := make([]FieldDescriptor, len(schema.Fields))
	copy(fields, schema.Fields)
	return fields
}

// GetSwitchFields returns the names of boolean toggle fields for an entity
// type, in field order.
func (r *Registry) GetSwitchFields(entityType string) []string {
	schema, ok := r.Get(entityType)
	if !ok {
		return []string{}
	}
	names := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		if f.Kind == KindSwitch {
			names = append(names, f.Name)
		}
	}
	return names
}

// GetCollection returns the backing collection path for an entity type
func (r *Registry) GetCollection(entityType string) string {
	schema, ok := r.Get(entityType)
	if !ok {
		return ""
	}
	return schema.Collection
}

// Types returns all registered entity type names, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Package-level convenience functions using the default registry

// GetDefaults returns the default attribute map for an entity type
func GetDefaults(entityType string) models.Record {
	return GetRegistry().GetDefaults(entityType)
}

// GetFields returns the ordered field descriptors for an entity type
func GetFields(entityType string) []FieldDescriptor {
	return GetRegistry().GetFields(entityType)
}

// GetSwitchFields returns the boolean toggle field names for an entity type
func GetSwitchFields(entityType string) []string {
	return GetRegistry().GetSwitchFields(entityType)
}

// GetCollection returns the backing collection path for an entity type
func GetCollection(entityType string) string {
	return GetRegistry().GetCollection(entityType)
}

// Types returns all registered entity type names
func Types() []string {
	return GetRegistry().Types()
}
