package graph

import "time"

// Episode is a timestamped unit of content ingested into the knowledge
// graph, here one Q&A exchange from the interrogation room.
type Episode struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Node is an entity node formatted for frontend rendering.
type Node struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Edge is a relationship between two nodes.
type Edge struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Label    string         `json:"label"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// VisualizationData is the node/edge payload consumed by the graph UI.
type VisualizationData struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Empty returns a payload with no nodes or edges and a note explaining why,
// used when the graph backend is unreachable.
func Empty(note string) *VisualizationData {
	meta := map[string]any{}
	if note != "" {
		meta["error"] = note
	}
	return &VisualizationData{Nodes: []Node{}, Edges: []Edge{}, Metadata: meta}
}
