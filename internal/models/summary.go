package models

// SummaryState tracks the lifecycle of the structured summary for a session.
type SummaryState string

const (
	SummaryStateIdle    SummaryState = "idle"
	SummaryStateLoading SummaryState = "loading"
	SummaryStateReady   SummaryState = "ready"
)

// SourceAnalysis is the per-source section of a structured summary.
type SourceAnalysis struct {
	Title              string   `json:"title"`
	Type               string   `json:"type"`
	Summary            string   `json:"summary"`
	KeyTopics          []string `json:"keyTopics"`
	SuggestedQuestions []string `json:"suggestedQuestions"`
}

// StructuredSummary is the LLM-produced analysis of the selected sources.
// SourcesAnalysis holds exactly one entry per analyzed source, in input order.
type StructuredSummary struct {
	GlobalOverview  string           `json:"globalOverview"`
	SourcesAnalysis []SourceAnalysis `json:"sourcesAnalysis"`
}
