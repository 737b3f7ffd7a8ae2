package utils

import (
	"log"

	"github.com/google/uuid"
)

// GenerateID generates a new UUID v4 string. Used for session IDs, view IDs
// and the per-fetch identity tokens of the enrichment orchestrator.
func GenerateID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		log.Printf("Failed to generate UUID: %v", err)
		return ""
	}
	return id.String()
}

// IsValidUUID checks if the string is a valid UUID. Session and view ids
// are opaque to the engine's own code paths; this exists for callers and
// tests that want to sanity-check generated ids.
func IsValidUUID(u string) bool {
	_, err := uuid.Parse(u)
	return err == nil
}
