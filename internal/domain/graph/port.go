package graph

import (
	"context"
	"time"
)

// Store port (interface for the knowledge graph backend)
type Store interface {
	AddEpisode(ctx context.Context, ep *Episode) error
	VisualizationData(ctx context.Context, sessionID string, limit int) (*VisualizationData, error)
	EntitySubgraph(ctx context.Context, entityName string, depth, limit int) (*VisualizationData, error)
	RecentChanges(ctx context.Context, since time.Time, limit int) (*VisualizationData, error)
}
