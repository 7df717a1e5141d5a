package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/MounirKhalil/real-time-investigation-graph/internal/domain/graph"
)

const (
	defaultNodeLimit = 50
	maxSubgraphDepth = 5
)

// Store is the Neo4j-backed knowledge graph adapter.
type Store struct {
	driver neo4j.DriverWithContext
}

func New(ctx context.Context, uri, user, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx2); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}
	return &Store{driver: driver}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Ping implements the health-check contract.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// AddEpisode writes one Q&A exchange as an Episode node. Entity extraction
// and linking run inside the graph backend, not here.
func (s *Store) AddEpisode(ctx context.Context, ep *graph.Episode) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (e:Episode {uuid: $id})
		SET e.content = $content,
			e.source = $source,
			e.created_at = datetime($ts),
			e.session_id = $sessionID,
			e.question = $question,
			e.answer = $answer
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"id":        ep.ID,
		"content":   ep.Content,
		"source":    ep.Source,
		"ts":        ep.Timestamp.UTC().Format(time.RFC3339),
		"sessionID": metaString(ep.Metadata, "session_id"),
		"question":  metaString(ep.Metadata, "question"),
		"answer":    metaString(ep.Metadata, "answer"),
	})
	if err != nil {
		return fmt.Errorf("failed to add episode: %w", err)
	}
	return nil
}

// VisualizationData returns entity nodes and RELATES_TO edges for frontend
// rendering. The session id restricts results when entities carry one;
// entities without a session id remain visible to every session.
func (s *Store) VisualizationData(ctx context.Context, sessionID string, limit int) (*graph.VisualizationData, error) {
	if limit <= 0 {
		limit = defaultNodeLimit
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	entityQuery := `
		MATCH (n:Entity)
		WHERE $sessionID = '' OR n.session_id IS NULL OR n.session_id = $sessionID
		RETURN n.uuid as id, n.name as label, n.entity_type as type,
		       n.created_at as created_at, n.summary as summary
		ORDER BY n.created_at DESC
		LIMIT $limit
	`
	result, err := session.Run(ctx, entityQuery, map[string]interface{}{
		"sessionID": sessionID,
		"limit":     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}

	var nodes []graph.Node
	var ids []string
	for result.Next(ctx) {
		record := result.Record()
		node := graph.Node{
			ID:    getString(record, "id"),
			Label: orDefault(getString(record, "label"), "Unknown"),
			Type:  orDefault(getString(record, "type"), "Entity"),
			Metadata: map[string]any{
				"created_at": getTimeString(record, "created_at"),
				"summary":    getString(record, "summary"),
			},
		}
		nodes = append(nodes, node)
		ids = append(ids, node.ID)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entities: %w", err)
	}

	var edges []graph.Edge
	if len(ids) > 0 {
		edgeQuery := `
			MATCH (source:Entity)-[r:RELATES_TO]->(target:Entity)
			WHERE source.uuid IN $nodeIDs AND target.uuid IN $nodeIDs
			RETURN source.uuid as from_id, target.uuid as to_id,
			       r.relationship_type as label, r.fact as fact,
			       r.created_at as created_at
		`
		result, err = session.Run(ctx, edgeQuery, map[string]interface{}{"nodeIDs": ids})
		if err != nil {
			return nil, fmt.Errorf("failed to query relationships: %w", err)
		}
		for result.Next(ctx) {
			record := result.Record()
			edges = append(edges, graph.Edge{
				From:  getString(record, "from_id"),
				To:    getString(record, "to_id"),
				Label: orDefault(getString(record, "label"), "relates_to"),
				Metadata: map[string]any{
					"fact":       getString(record, "fact"),
					"created_at": getTimeString(record, "created_at"),
				},
			})
		}
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to read relationships: %w", err)
		}
	}

	if nodes == nil {
		nodes = []graph.Node{}
	}
	if edges == nil {
		edges = []graph.Edge{}
	}
	return &graph.VisualizationData{
		Nodes: nodes,
		Edges: edges,
		Metadata: map[string]any{
			"total_nodes": len(nodes),
			"total_edges": len(edges),
			"limit":       limit,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// EntitySubgraph returns the neighborhood around a named entity. Variable
// length bounds cannot be parameterized in Cypher, so depth is clamped and
// inlined.
func (s *Store) EntitySubgraph(ctx context.Context, entityName string, depth, limit int) (*graph.VisualizationData, error) {
	if depth <= 0 {
		depth = 2
	}
	if depth > maxSubgraphDepth {
		depth = maxSubgraphDepth
	}
	if limit <= 0 {
		limit = 30
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH path = (center:Entity {name: $entityName})-[*1..%d]-(neighbor:Entity)
		WITH center, neighbor, relationships(path) as rels
		RETURN DISTINCT center.uuid as center_id, center.name as center_label,
		       center.entity_type as center_type,
		       neighbor.uuid as neighbor_id, neighbor.name as neighbor_label,
		       neighbor.entity_type as neighbor_type,
		       [r IN rels | {
		           from: startNode(r).uuid,
		           to: endNode(r).uuid,
		           label: r.relationship_type,
		           fact: r.fact
		       }] as edges
		LIMIT $limit
	`, depth)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"entityName": entityName,
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query entity subgraph: %w", err)
	}

	nodes := []graph.Node{}
	edges := []graph.Edge{}
	seen := map[string]bool{}
	for result.Next(ctx) {
		record := result.Record()

		centerID := getString(record, "center_id")
		if centerID != "" && !seen[centerID] {
			nodes = append(nodes, graph.Node{
				ID:       centerID,
				Label:    getString(record, "center_label"),
				Type:     orDefault(getString(record, "center_type"), "Entity"),
				Metadata: map[string]any{"central": true},
			})
			seen[centerID] = true
		}

		neighborID := getString(record, "neighbor_id")
		if neighborID != "" && !seen[neighborID] {
			nodes = append(nodes, graph.Node{
				ID:    neighborID,
				Label: getString(record, "neighbor_label"),
				Type:  orDefault(getString(record, "neighbor_type"), "Entity"),
			})
			seen[neighborID] = true
		}

		if raw, ok := record.Get("edges"); ok {
			if list, ok := raw.([]any); ok {
				for _, item := range list {
					m, ok := item.(map[string]any)
					if !ok {
						continue
					}
					edges = append(edges, graph.Edge{
						From:     asString(m["from"]),
						To:       asString(m["to"]),
						Label:    orDefault(asString(m["label"]), "relates_to"),
						Metadata: map[string]any{"fact": asString(m["fact"])},
					})
				}
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entity subgraph: %w", err)
	}

	return &graph.VisualizationData{
		Nodes: nodes,
		Edges: edges,
		Metadata: map[string]any{
			"center_entity": entityName,
			"depth":         depth,
		},
	}, nil
}

// RecentChanges returns entities created after the given instant.
func (s *Store) RecentChanges(ctx context.Context, since time.Time, limit int) (*graph.VisualizationData, error) {
	if limit <= 0 {
		limit = 20
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (n:Entity)
		WHERE $since = '' OR n.created_at > datetime($since)
		RETURN n.uuid as id, n.name as label, n.entity_type as type,
		       n.created_at as created_at, n.summary as summary
		ORDER BY n.created_at DESC
		LIMIT $limit
	`
	sinceParam := ""
	if !since.IsZero() {
		sinceParam = since.UTC().Format(time.RFC3339)
	}
	result, err := session.Run(ctx, query, map[string]interface{}{
		"since": sinceParam,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query recent changes: %w", err)
	}

	nodes := []graph.Node{}
	for result.Next(ctx) {
		record := result.Record()
		nodes = append(nodes, graph.Node{
			ID:    getString(record, "id"),
			Label: orDefault(getString(record, "label"), "Unknown"),
			Type:  orDefault(getString(record, "type"), "Entity"),
			Metadata: map[string]any{
				"created_at": getTimeString(record, "created_at"),
				"summary":    getString(record, "summary"),
			},
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recent changes: %w", err)
	}

	return &graph.VisualizationData{
		Nodes: nodes,
		Edges: []graph.Edge{},
		Metadata: map[string]any{
			"recent_changes": true,
			"since":          sinceParam,
		},
	}, nil
}

func getString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	return asString(val)
}

func asString(val any) string {
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getTimeString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	switch t := val.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func metaString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return asString(m[key])
}
