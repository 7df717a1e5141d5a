package analysis

import (
	"context"
	"fmt"
	"log"

	domain "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/analysis"
	"github.com/MounirKhalil/real-time-investigation-graph/internal/infra/ai/prompt"
)

// Service implements the two-stage analysis pipeline: try the structured
// model call first, degrade to text parsing of a plain call when it fails.
// Stateless and safe for concurrent use.
type Service struct {
	agent        domain.Agent
	maxQuestions int

	// OnDegraded, when set, is called each time the pipeline falls back to
	// text parsing. Used for the degraded-analyses counter.
	OnDegraded func()
}

func NewService(agent domain.Agent, maxQuestions int) *Service {
	if maxQuestions <= 0 {
		maxQuestions = domain.DefaultMaxQuestions
	}
	return &Service{agent: agent, maxQuestions: maxQuestions}
}

// Analyze runs the pipeline for one Q&A pair. At most two outbound model
// calls are made: the structured attempt and, on failure, one plain call.
func (s *Service) Analyze(ctx context.Context, question, answer string) (*domain.Analysis, error) {
	out, err := s.dispatch(ctx, prompt.GetQAPrompt(question, answer))
	if err != nil {
		return nil, err
	}
	return s.resolve(out), nil
}

// AnalyzeOutcome is Analyze without resolving the degraded branch, exposing
// which path produced the result.
func (s *Service) AnalyzeOutcome(ctx context.Context, question, answer string) (domain.Outcome, error) {
	return s.dispatch(ctx, prompt.GetQAPrompt(question, answer))
}

// Chat answers a free-form prompt with a single plain call. Stateless; each
// prompt is treated independently.
func (s *Service) Chat(ctx context.Context, userPrompt string) (string, error) {
	answer, err := s.agent.Complete(ctx, userPrompt)
	if err != nil {
		return "", fmt.Errorf("analysis chat failed: %w", err)
	}
	return answer, nil
}

// dispatch resolves which branch to take. The degraded branch is a
// first-class outcome, not an error path: only a failure of the plain
// fallback call itself is returned as an error.
func (s *Service) dispatch(ctx context.Context, p string) (domain.Outcome, error) {
	result, err := s.agent.AnalyzeStructured(ctx, p)
	if err == nil {
		return domain.Outcome{Mode: domain.ModeStructured, Result: result}, nil
	}
	log.Printf("warning: structured output failed, falling back to text parsing: %v", err)
	if s.OnDegraded != nil {
		s.OnDegraded()
	}

	raw, err := s.agent.Complete(ctx, p)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("analysis failed: %w", err)
	}
	return domain.Outcome{Mode: domain.ModeDegraded, RawText: raw}, nil
}

// Resolve turns an outcome into an Analysis: structured results pass
// through, degraded raw text goes through the question parser.
func (s *Service) Resolve(out domain.Outcome) *domain.Analysis {
	return s.resolve(out)
}

func (s *Service) resolve(out domain.Outcome) *domain.Analysis {
	if out.Mode == domain.ModeStructured {
		return out.Result
	}
	return domain.ParseDegraded(out.RawText, s.maxQuestions)
}
