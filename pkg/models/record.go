package models

// Record represents a flat attribute map for one entity record
type Record map[string]interface{}

// Helper methods for Record
func (r Record) GetString(key string) string {
	if val, ok := r[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func (r Record) GetBool(key string) bool {
	if val, ok := r[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func (r Record) Get(key string) interface{} {
	return r[key]
}

// Clone returns a shallow copy so callers can hand out records without
// sharing mutable state.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Pick returns a copy restricted to the given keys. Keys absent from the
// record are omitted.
func (r Record) Pick(keys []string) Record {
	out := make(Record, len(keys))
	for _, k := range keys {
		if v, ok := r[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Option is one selectable choice of a select field
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
