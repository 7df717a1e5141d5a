package analysis

import "context"

// Agent is the outbound port to the generative model.
type Agent interface {
	// AnalyzeStructured asks the model for an Analysis conforming to the
	// declared schema. Any schema violation or transport error is returned
	// as an error so the caller can degrade to text parsing.
	AnalyzeStructured(ctx context.Context, prompt string) (*Analysis, error)
	// Complete runs the prompt without a schema and returns raw text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Repository port for persisting and querying analysis records
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	BySession(ctx context.Context, sessionID string, limit int) ([]*Record, error)
	LatestBySession(ctx context.Context, sessionID string) (*Record, error)
}
