package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/analysis"
)

type fakeAgent struct {
	structuredResult *domain.Analysis
	structuredErr    error
	completeText     string
	completeErr      error

	structuredCalls int
	completeCalls   int
	lastPrompt      string
}

func (f *fakeAgent) AnalyzeStructured(ctx context.Context, prompt string) (*domain.Analysis, error) {
	f.structuredCalls++
	f.lastPrompt = prompt
	return f.structuredResult, f.structuredErr
}

func (f *fakeAgent) Complete(ctx context.Context, prompt string) (string, error) {
	f.completeCalls++
	f.lastPrompt = prompt
	return f.completeText, f.completeErr
}

func TestAnalyzeStructuredPath(t *testing.T) {
	want := &domain.Analysis{
		Analysis:            "The alibi conflicts with the earlier statement.",
		SuggestedQuestions:  []string{"Where were you at 9pm?"},
		ContradictionsFound: []string{"time of arrival"},
		MissingInformation:  []string{"second passenger"},
		KeyEntities:         []string{"Mike"},
	}
	agent := &fakeAgent{structuredResult: want}
	svc := NewService(agent, 0)

	got, err := svc.Analyze(context.Background(), "Where were you?", "At home.")

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, agent.structuredCalls)
	assert.Equal(t, 0, agent.completeCalls, "structured success must not trigger the fallback call")
}

func TestAnalyzePromptInterpolation(t *testing.T) {
	agent := &fakeAgent{structuredResult: &domain.Analysis{SuggestedQuestions: []string{"Who?"}}}
	svc := NewService(agent, 0)

	_, err := svc.Analyze(context.Background(), "Where were you on Friday?", "I was with Mike.")

	require.NoError(t, err)
	assert.Contains(t, agent.lastPrompt, "Question: Where were you on Friday?")
	assert.Contains(t, agent.lastPrompt, "Answer: I was with Mike.")
}

func TestAnalyzeFallsBackToTextParsing(t *testing.T) {
	agent := &fakeAgent{
		structuredErr: domain.ErrSchemaViolation,
		completeText:  "**Analysis:**\nSomething is unclear.\n**Suggested Questions:**\n1. Who is Mike?\n2. What time exactly?",
	}
	svc := NewService(agent, 0)

	got, err := svc.Analyze(context.Background(), "q", "a")

	require.NoError(t, err)
	assert.Equal(t, "Something is unclear.", got.Analysis)
	assert.Equal(t, []string{"Who is Mike?", "What time exactly?"}, got.SuggestedQuestions)
	assert.Empty(t, got.ContradictionsFound)
	assert.Equal(t, 1, agent.structuredCalls)
	assert.Equal(t, 1, agent.completeCalls)
}

func TestAnalyzeFallbackSubstitutesDefaultQuestions(t *testing.T) {
	agent := &fakeAgent{
		structuredErr: errors.New("model refused"),
		completeText:  "No usable structure in this response.",
	}
	svc := NewService(agent, 0)

	got, err := svc.Analyze(context.Background(), "q", "a")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultQuestions(), got.SuggestedQuestions)
}

func TestAnalyzeBothCallsFail(t *testing.T) {
	agent := &fakeAgent{
		structuredErr: errors.New("schema mismatch"),
		completeErr:   errors.New("transport down"),
	}
	svc := NewService(agent, 0)

	_, err := svc.Analyze(context.Background(), "q", "a")

	require.Error(t, err)
	assert.Equal(t, 1, agent.structuredCalls)
	assert.Equal(t, 1, agent.completeCalls, "no retries beyond the single fallback call")
}

func TestAnalyzeFallbackInvokesDegradedHook(t *testing.T) {
	agent := &fakeAgent{
		structuredErr: errors.New("refused"),
		completeText:  "1. Who is Mike?",
	}
	svc := NewService(agent, 0)
	degraded := 0
	svc.OnDegraded = func() { degraded++ }

	_, err := svc.Analyze(context.Background(), "q", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, degraded)

	// structured success must not fire the hook
	agent.structuredErr = nil
	agent.structuredResult = &domain.Analysis{SuggestedQuestions: []string{"Who?"}}
	_, err = svc.Analyze(context.Background(), "q", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, degraded)
}

func TestAnalyzeOutcomeExposesMode(t *testing.T) {
	agent := &fakeAgent{
		structuredErr: errors.New("boom"),
		completeText:  "1. Who called you that night?",
	}
	svc := NewService(agent, 0)

	out, err := svc.AnalyzeOutcome(context.Background(), "q", "a")

	require.NoError(t, err)
	assert.Equal(t, domain.ModeDegraded, out.Mode)
	assert.Equal(t, "1. Who called you that night?", out.RawText)

	resolved := svc.Resolve(out)
	assert.Equal(t, []string{"Who called you that night?"}, resolved.SuggestedQuestions)
}

func TestChat(t *testing.T) {
	agent := &fakeAgent{completeText: "The graph shows two unresolved entities."}
	svc := NewService(agent, 0)

	answer, err := svc.Chat(context.Background(), "summarize the open questions")

	require.NoError(t, err)
	assert.Equal(t, "The graph shows two unresolved entities.", answer)
	assert.Equal(t, 0, agent.structuredCalls)
	assert.Equal(t, 1, agent.completeCalls)
}

func TestChatError(t *testing.T) {
	agent := &fakeAgent{completeErr: errors.New("quota")}
	svc := NewService(agent, 0)

	_, err := svc.Chat(context.Background(), "prompt")

	assert.Error(t, err)
}
