package analysis

import "errors"

// ErrQuotaExceeded indicates the model provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("model quota exceeded")

// ErrSchemaViolation indicates the structured call returned output that does
// not conform to the Analysis schema.
var ErrSchemaViolation = errors.New("structured output does not match schema")
