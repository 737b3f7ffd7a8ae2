package models

// SuggestedAction is one AI-recommended next step for a record
type SuggestedAction struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueInDays   *int   `json:"due_in_days,omitempty"`
}

// EmailDraft is a generated outreach email. The draft is a local,
// user-editable copy; nothing is auto-saved.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// LeadScore is the response of the scoring endpoint
type LeadScore struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// EnrichmentState holds the per-view AI enrichment slots. Each slot is
// filled independently as its fetch arrives; Error and Loading cover the
// scoring+actions batch, EmailLoading covers email generation alone.
type EnrichmentState struct {
	Score            *float64          `json:"score"`
	ScoreReasons     []string          `json:"score_reasons"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
	EmailDraft       *EmailDraft       `json:"email_draft"`
	Error            string            `json:"error,omitempty"`
	Loading          bool              `json:"loading"`
	EmailLoading     bool              `json:"email_loading"`
}

// LineItem is one row of an opportunity's product list
type LineItem struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
