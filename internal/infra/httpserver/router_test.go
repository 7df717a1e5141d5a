package httpserver

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    appanalysis "github.com/MounirKhalil/real-time-investigation-graph/internal/application/analysis"
    appinvestigation "github.com/MounirKhalil/real-time-investigation-graph/internal/application/investigation"
    domanalysis "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/analysis"
    "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/session"
)

type stubAgent struct {
    structuredResult *domanalysis.Analysis
    structuredErr    error
    completeText     string
    completeErr      error
}

func (s *stubAgent) AnalyzeStructured(ctx context.Context, prompt string) (*domanalysis.Analysis, error) {
    return s.structuredResult, s.structuredErr
}

func (s *stubAgent) Complete(ctx context.Context, prompt string) (string, error) {
    return s.completeText, s.completeErr
}

type stubSessions struct {
    messages []*session.Message
}

func (s *stubSessions) CreateSession(ctx context.Context, sess *session.Session) error { return nil }

func (s *stubSessions) Get(ctx context.Context, id string) (*session.Session, error) {
    return &session.Session{ID: id}, nil
}

func (s *stubSessions) AppendMessage(ctx context.Context, m *session.Message) error {
    s.messages = append(s.messages, m)
    return nil
}

func (s *stubSessions) Messages(ctx context.Context, sessionID string, limit int) ([]*session.Message, error) {
    return s.messages, nil
}

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func newTestServer(agent *stubAgent) http.Handler {
    analysisSvc := appanalysis.NewService(agent, 0)
    investigationSvc := &appinvestigation.Service{
        Analysis: analysisSvc,
        Sessions: &stubSessions{},
        Clock:    stubClock{},
        BaseURL:  "http://localhost:8058",
    }
    return NewRouter(investigationSvc, analysisSvc, nil)
}

func okAgent() *stubAgent {
    return &stubAgent{structuredResult: &domanalysis.Analysis{
        Analysis:            "Consistent account.",
        SuggestedQuestions:  []string{"Who else was there?"},
        ContradictionsFound: []string{},
        MissingInformation:  []string{},
        KeyEntities:         []string{},
    }}
}

func TestSubmitQAEndpoint(t *testing.T) {
    srv := newTestServer(okAgent())

    body := `{"question":"Where were you on Friday?","answer":"At the bar."}`
    req := httptest.NewRequest(http.MethodPost, "/investigation/submit-qa", strings.NewReader(body))
    rec := httptest.NewRecorder()
    srv.ServeHTTP(rec, req)

    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

    var resp struct {
        SuggestedQuestions []string `json:"suggestedQuestions"`
        GraphURL           string   `json:"graphUrl"`
        Analysis           string   `json:"analysis"`
        SessionID          string   `json:"session_id"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, []string{"Who else was there?"}, resp.SuggestedQuestions)
    assert.Equal(t, "Consistent account.", resp.Analysis)
    assert.NotEmpty(t, resp.SessionID)
    assert.Equal(t, "http://localhost:8058/graph/data?session_id="+resp.SessionID, resp.GraphURL)
}

func TestSubmitQARejectsMissingFields(t *testing.T) {
    srv := newTestServer(okAgent())

    for _, body := range []string{
        `{"answer":"At the bar."}`,
        `{"question":"Where were you?"}`,
        `not json`,
    } {
        req := httptest.NewRequest(http.MethodPost, "/investigation/submit-qa", strings.NewReader(body))
        rec := httptest.NewRecorder()
        srv.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
    }
}

func TestSubmitQARejectsBadSessionID(t *testing.T) {
    srv := newTestServer(okAgent())

    body := `{"question":"q?","answer":"a","session_id":"has spaces"}`
    req := httptest.NewRequest(http.MethodPost, "/investigation/submit-qa", strings.NewReader(body))
    rec := httptest.NewRecorder()
    srv.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitQAQuotaExceededMapsTo429(t *testing.T) {
    agent := &stubAgent{
        structuredErr: domanalysis.ErrQuotaExceeded,
        completeErr:   domanalysis.ErrQuotaExceeded,
    }
    srv := newTestServer(agent)

    body := `{"question":"q","answer":"a"}`
    req := httptest.NewRequest(http.MethodPost, "/investigation/submit-qa", strings.NewReader(body))
    rec := httptest.NewRecorder()
    srv.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSubmitQAFallbackStillSucceeds(t *testing.T) {
    agent := &stubAgent{
        structuredErr: domanalysis.ErrSchemaViolation,
        completeText:  "Analysis:\nVague answer.\nSuggested Questions:\n1. What time did you arrive?",
    }
    srv := newTestServer(agent)

    body := `{"question":"q","answer":"a"}`
    req := httptest.NewRequest(http.MethodPost, "/investigation/submit-qa", strings.NewReader(body))
    rec := httptest.NewRecorder()
    srv.ServeHTTP(rec, req)

    require.Equal(t, http.StatusOK, rec.Code)
    var resp struct {
        SuggestedQuestions []string `json:"suggestedQuestions"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, []string{"What time did you arrive?"}, resp.SuggestedQuestions)
}

func TestAnalysisChatEndpoint(t *testing.T) {
    srv := newTestServer(&stubAgent{completeText: "The suspect is evasive about the timeline."})

    body := `{"prompt":"Summarize the inconsistencies so far."}`
    req := httptest.NewRequest(http.MethodPost, "/analysis/chat", strings.NewReader(body))
    rec := httptest.NewRecorder()
    srv.ServeHTTP(rec, req)

    require.Equal(t, http.StatusOK, rec.Code)
    var resp map[string]string
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, "The suspect is evasive about the timeline.", resp["answer"])
}

func TestAnalysisChatRejectsEmptyPrompt(t *testing.T) {
    srv := newTestServer(okAgent())

    req := httptest.NewRequest(http.MethodPost, "/analysis/chat", strings.NewReader(`{"prompt":""}`))
    rec := httptest.NewRecorder()
    srv.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphDataWithoutBackend(t *testing.T) {
    srv := newTestServer(okAgent())

    req := httptest.NewRequest(http.MethodGet, "/graph/data", nil)
    rec := httptest.NewRecorder()
    srv.ServeHTTP(rec, req)

    require.Equal(t, http.StatusOK, rec.Code)
    var resp struct {
        Nodes    []any          `json:"nodes"`
        Edges    []any          `json:"edges"`
        Metadata map[string]any `json:"metadata"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Empty(t, resp.Nodes)
    assert.Equal(t, "Graph not available", resp.Metadata["error"])
}

func TestSessionMessagesRejectsBadID(t *testing.T) {
    srv := newTestServer(okAgent())

    req := httptest.NewRequest(http.MethodGet, "/sessions/bad%20id/messages", nil)
    rec := httptest.NewRecorder()
    srv.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLatestAnalysisNotFound(t *testing.T) {
    srv := newTestServer(okAgent())

    req := httptest.NewRequest(http.MethodGet, "/sessions/s1/analyses/latest", nil)
    rec := httptest.NewRecorder()
    srv.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
    srv := newTestServer(okAgent())

    for _, path := range []string{"/health", "/ready", "/live"} {
        req := httptest.NewRequest(http.MethodGet, path, nil)
        rec := httptest.NewRecorder()
        srv.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusOK, rec.Code, path)
    }
}
