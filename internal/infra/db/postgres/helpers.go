package postgres

import "encoding/json"

// metadataJSON marshals message/session metadata for a jsonb column,
// falling back to an empty object on nil or marshal failure.
func metadataJSON(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// parseMetadata unmarshals a jsonb column, tolerating empty values.
func parseMetadata(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
