package investigation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MounirKhalil/real-time-investigation-graph/internal/application"
	appanalysis "github.com/MounirKhalil/real-time-investigation-graph/internal/application/analysis"
	domanalysis "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/analysis"
	"github.com/MounirKhalil/real-time-investigation-graph/internal/domain/graph"
	"github.com/MounirKhalil/real-time-investigation-graph/internal/domain/session"
)

const episodeSource = "investigation_room"

// Service implements use-cases for the investigation room. Graph, Analyses
// and Archive are best-effort collaborators: when they are nil or their
// writes fail, the submission still returns suggested questions.
// Safe for concurrent use.
type Service struct {
	Analysis *appanalysis.Service
	Sessions session.Repository
	Analyses domanalysis.Repository
	Graph    graph.Store
	Archive  session.ArchiveStore
	Clock    application.Clock
	BaseURL  string
}

// SubmitQACommand carries one Q&A pair from the investigation room.
type SubmitQACommand struct {
	Question  string
	Answer    string
	SessionID string
}

// SubmitQAResult mirrors the payload the frontend consumes.
type SubmitQAResult struct {
	SuggestedQuestions []string `json:"suggestedQuestions"`
	GraphURL           string   `json:"graphUrl"`
	Analysis           string   `json:"analysis"`
	SessionID          string   `json:"session_id"`
}

// SubmitQA ingests the pair into the knowledge graph and the session store,
// analyzes it, and assembles the response. Only an analysis failure is
// terminal; storage failures are logged and swallowed.
func (s *Service) SubmitQA(ctx context.Context, cmd SubmitQACommand) (*SubmitQAResult, error) {
	sessionID := cmd.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	// the insert is a no-op for existing ids, so caller-supplied sessions
	// get their row too and message writes never hit a missing FK target
	if err := s.Sessions.CreateSession(ctx, &session.Session{
		ID:        sessionID,
		UserID:    "investigation_system",
		Metadata:  map[string]any{"type": "qa_analysis"},
		CreatedAt: s.Clock.Now(),
	}); err != nil {
		log.Printf("failed to create session %s: %v", sessionID, err)
	}

	// Step 1: add Q&A to the knowledge graph
	if s.Graph != nil {
		ep := &graph.Episode{
			ID:        uuid.New().String(),
			Content:   fmt.Sprintf("Q: %s\nA: %s", cmd.Question, cmd.Answer),
			Source:    episodeSource,
			Timestamp: s.Clock.Now(),
			Metadata: map[string]any{
				"question":   cmd.Question,
				"answer":     cmd.Answer,
				"session_id": sessionID,
			},
		}
		if err := s.Graph.AddEpisode(ctx, ep); err != nil {
			log.Printf("failed to add Q&A to knowledge graph: %v", err)
		}
	} else {
		log.Printf("warning: graph store not configured, skipping graph update")
	}

	// Step 1b: save the pair to the relational message store
	s.appendMessage(ctx, sessionID, session.RoleUser, cmd.Question, "interrogation_question")
	s.appendMessage(ctx, sessionID, session.RoleAssistant, cmd.Answer, "suspect_answer")

	// Step 2: analyze the pair; this is the only terminal failure
	outcome, err := s.Analysis.AnalyzeOutcome(ctx, cmd.Question, cmd.Answer)
	if err != nil {
		return nil, err
	}
	result := s.Analysis.Resolve(outcome)

	// Step 2b: persist the analysis for auditing
	s.saveRecord(ctx, sessionID, cmd, outcome.Mode, result)

	// Step 3: assemble response
	return &SubmitQAResult{
		SuggestedQuestions: result.SuggestedQuestions,
		GraphURL:           s.GraphURL(sessionID),
		Analysis:           result.Analysis,
		SessionID:          sessionID,
	}, nil
}

func (s *Service) appendMessage(ctx context.Context, sessionID string, role session.Role, content, msgType string) {
	m := &session.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Metadata:  map[string]any{"source": episodeSource, "type": msgType},
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Sessions.AppendMessage(ctx, m); err != nil {
		log.Printf("failed to save %s message for session %s: %v", role, sessionID, err)
	}
}

func (s *Service) saveRecord(ctx context.Context, sessionID string, cmd SubmitQACommand, mode domanalysis.Mode, result *domanalysis.Analysis) {
	if s.Analyses == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("failed to marshal analysis for session %s: %v", sessionID, err)
		return
	}
	rec := &domanalysis.Record{
		ID:        domanalysis.RecordID(uuid.New().String()),
		SessionID: sessionID,
		Question:  cmd.Question,
		Answer:    cmd.Answer,
		Mode:      mode,
		Result:    string(payload),
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Analyses.Save(ctx, rec); err != nil {
		log.Printf("failed to save analysis record for session %s: %v", sessionID, err)
	}
}

// GraphURL builds the visualization URL for a session. The query parameter
// is omitted when there is no session id.
func (s *Service) GraphURL(sessionID string) string {
	u := s.BaseURL + "/graph/data"
	if sessionID != "" {
		u += "?session_id=" + sessionID
	}
	return u
}

// GraphData returns nodes and edges for frontend rendering. An unreachable
// graph backend yields empty data with an error note, not a failure.
func (s *Service) GraphData(ctx context.Context, sessionID string, limit int) (*graph.VisualizationData, error) {
	if s.Graph == nil {
		return graph.Empty("Graph not available"), nil
	}
	data, err := s.Graph.VisualizationData(ctx, sessionID, limit)
	if err != nil {
		log.Printf("failed to extract graph visualization data: %v", err)
		return graph.Empty(err.Error()), nil
	}
	return data, nil
}

// EntitySubgraph returns the subgraph centered on a named entity.
func (s *Service) EntitySubgraph(ctx context.Context, entityName string, depth, limit int) (*graph.VisualizationData, error) {
	if s.Graph == nil {
		return graph.Empty("Graph not available"), nil
	}
	data, err := s.Graph.EntitySubgraph(ctx, entityName, depth, limit)
	if err != nil {
		log.Printf("failed to get entity subgraph for %q: %v", entityName, err)
		return graph.Empty(err.Error()), nil
	}
	return data, nil
}

// RecentGraphChanges returns nodes added within the given window.
func (s *Service) RecentGraphChanges(ctx context.Context, since time.Time, limit int) (*graph.VisualizationData, error) {
	if s.Graph == nil {
		return graph.Empty("Graph not available"), nil
	}
	data, err := s.Graph.RecentChanges(ctx, since, limit)
	if err != nil {
		log.Printf("failed to get recent graph changes: %v", err)
		return graph.Empty(err.Error()), nil
	}
	return data, nil
}

// SessionMessages lists stored messages for a session.
func (s *Service) SessionMessages(ctx context.Context, sessionID string, limit int) ([]*session.Message, error) {
	return s.Sessions.Messages(ctx, sessionID, limit)
}

// SessionAnalyses lists stored analysis records for a session.
func (s *Service) SessionAnalyses(ctx context.Context, sessionID string, limit int) ([]*domanalysis.Record, error) {
	if s.Analyses == nil {
		return []*domanalysis.Record{}, nil
	}
	return s.Analyses.BySession(ctx, sessionID, limit)
}

// LatestAnalysis returns the newest stored analysis for a session, or nil
// when none exists.
func (s *Service) LatestAnalysis(ctx context.Context, sessionID string) (*domanalysis.Record, error) {
	if s.Analyses == nil {
		return nil, nil
	}
	return s.Analyses.LatestBySession(ctx, sessionID)
}

// ArchiveSession renders the session transcript and uploads it to the
// archive store, returning the object URL.
func (s *Service) ArchiveSession(ctx context.Context, sessionID string) (string, error) {
	if s.Archive == nil {
		return "", fmt.Errorf("archive store not configured")
	}
	msgs, err := s.Sessions.Messages(ctx, sessionID, 0)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("no messages found for session: %s", sessionID)
	}

	var b strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case session.RoleUser:
			fmt.Fprintf(&b, "Investigator: %s\n", m.Content)
		case session.RoleAssistant:
			fmt.Fprintf(&b, "Suspect: %s\n", m.Content)
		}
	}

	key := fmt.Sprintf("transcripts/%s.md", sessionID)
	return s.Archive.Archive(ctx, key, b.String())
}
