package constants

// Entity type tags. Adding a new dashboard entity is a data change in
// pkg/entityschema plus (optionally) a layout entry; no new code paths.
const (
	EntityEmployee    = "employee"
	EntityProduct     = "product"
	EntityCustomer    = "customer"
	EntityLead        = "lead"
	EntityOpportunity = "opportunity"
	EntityEmission    = "emission"
)

// EnrichmentSupported reports whether a detail view of the given entity type
// carries the AI enrichment panel.
func EnrichmentSupported(entityType string) bool {
	return entityType == EntityLead || entityType == EntityOpportunity
}

// ScoringSupported reports whether the scoring request is issued for the
// given entity type. Only leads are scored.
func ScoringSupported(entityType string) bool {
	return entityType == EntityLead
}

// LineItemsSupported reports whether a detail view owns an editable
// line-item list.
func LineItemsSupported(entityType string) bool {
	return entityType == EntityOpportunity
}
