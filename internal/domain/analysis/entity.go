package analysis

import "time"

// Analysis is the structured output of analyzing a single Q&A pair.
// The structured model path fills every field; the degraded text-parsing
// path only fills Analysis and SuggestedQuestions and leaves the rest empty.
type Analysis struct {
	Analysis            string   `json:"analysis"`
	SuggestedQuestions  []string `json:"suggested_questions"`
	ContradictionsFound []string `json:"contradictions_found"`
	MissingInformation  []string `json:"missing_information"`
	KeyEntities         []string `json:"key_entities"`
}

// Mode tells which pipeline branch produced an analysis.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeDegraded   Mode = "degraded"
)

// Outcome is the two-variant result of the extraction pipeline: either the
// structured call succeeded and Result is set, or the pipeline degraded to
// text parsing and RawText holds the unparsed model output.
type Outcome struct {
	Mode    Mode
	Result  *Analysis
	RawText string
}

// RecordID identifier type
type RecordID string

// Record is a persisted analysis result kept for auditing and retrieval
type Record struct {
	ID        RecordID  `json:"id"`
	SessionID string    `json:"session_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Mode      Mode      `json:"mode"`
	Result    string    `json:"result"` // JSON string of the Analysis
	CreatedAt time.Time `json:"created_at"`
}
