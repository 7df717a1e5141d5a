package httpserver

import (
    "database/sql"
    "encoding/json"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"

    appanalysis "github.com/MounirKhalil/real-time-investigation-graph/internal/application/analysis"
    appinvestigation "github.com/MounirKhalil/real-time-investigation-graph/internal/application/investigation"
    domanalysis "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/analysis"
    "github.com/MounirKhalil/real-time-investigation-graph/internal/middleware"
)

type Router struct {
    investigationSvc *appinvestigation.Service
    analysisSvc      *appanalysis.Service
}

func NewRouter(investigationSvc *appinvestigation.Service, analysisSvc *appanalysis.Service, checkers map[string]middleware.HealthChecker) http.Handler {
    r := &Router{investigationSvc: investigationSvc, analysisSvc: analysisSvc}
    mux := chi.NewRouter()

    mux.Get("/health", middleware.HealthHandler(checkers))
    mux.Get("/ready", middleware.ReadinessHandler)
    mux.Get("/live", middleware.LivenessHandler)
    mux.Get("/metrics", middleware.MetricsHandler)

    mux.Route("/investigation", func(rt chi.Router) {
        rt.Post("/submit-qa", r.wrap(r.handleSubmitQA))
    })
    mux.Route("/analysis", func(rt chi.Router) {
        rt.Post("/chat", r.wrap(r.handleAnalysisChat))
    })
    mux.Route("/graph", func(rt chi.Router) {
        rt.Get("/data", r.wrap(r.handleGraphData))
        rt.Get("/entity/{name}", r.wrap(r.handleEntitySubgraph))
        rt.Get("/recent", r.wrap(r.handleGraphRecent))
    })
    mux.Route("/sessions/{id}", func(rt chi.Router) {
        rt.Get("/messages", r.wrap(r.handleSessionMessages))
        rt.Get("/analyses", r.wrap(r.handleSessionAnalyses))
        rt.Get("/analyses/latest", r.wrap(r.handleLatestAnalysis))
        rt.Post("/archive", r.wrap(r.handleArchiveSession))
    })

    return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError carries validation failures through the wrap adapter
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return badRequestError{msg: msg} }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
    return func(w http.ResponseWriter, req *http.Request) {
        if err := h(w, req); err != nil {
            var br badRequestError
            if errors.As(err, &br) {
                http.Error(w, br.msg, http.StatusBadRequest)
                return
            }
            if errors.Is(err, sql.ErrNoRows) {
                http.Error(w, "not found", http.StatusNotFound)
                return
            }
            if errors.Is(err, domanalysis.ErrQuotaExceeded) {
                http.Error(w, "model quota exceeded", http.StatusTooManyRequests)
                return
            }
            http.Error(w, err.Error(), http.StatusInternalServerError)
        }
    }
}

// POST /investigation/submit-qa
// Body: {"question": "...", "answer": "...", "session_id": "<optional>"}
func (r *Router) handleSubmitQA(w http.ResponseWriter, req *http.Request) error {
    var body struct {
        Question  string `json:"question"`
        Answer    string `json:"answer"`
        SessionID string `json:"session_id"`
    }
    if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
        return badRequest("invalid request body")
    }

    body.Question = middleware.SanitizeString(body.Question)
    body.Answer = middleware.SanitizeString(body.Answer)
    if err := middleware.ValidateQuestion(body.Question); err != nil {
        return badRequest(err.Error())
    }
    if err := middleware.ValidateAnswer(body.Answer); err != nil {
        return badRequest(err.Error())
    }
    if err := middleware.ValidateSessionID(body.SessionID); err != nil {
        return badRequest(err.Error())
    }

    middleware.IncrementSubmissions()
    result, err := r.investigationSvc.SubmitQA(req.Context(), appinvestigation.SubmitQACommand{
        Question:  body.Question,
        Answer:    body.Answer,
        SessionID: body.SessionID,
    })
    if err != nil {
        middleware.IncrementSubmissionsFailed()
        return err
    }

    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(result)
}

// POST /analysis/chat
// Stateless: each prompt is answered independently, no history is kept.
func (r *Router) handleAnalysisChat(w http.ResponseWriter, req *http.Request) error {
    var body struct {
        Prompt string `json:"prompt"`
    }
    if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
        return badRequest("invalid request body")
    }
    if err := middleware.ValidatePrompt(body.Prompt); err != nil {
        return badRequest(err.Error())
    }

    answer, err := r.analysisSvc.Chat(req.Context(), body.Prompt)
    if err != nil {
        return err
    }

    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(map[string]string{"answer": answer})
}

// GET /graph/data?session_id=&limit=
func (r *Router) handleGraphData(w http.ResponseWriter, req *http.Request) error {
    sessionID := req.URL.Query().Get("session_id")
    if err := middleware.ValidateSessionID(sessionID); err != nil {
        return badRequest(err.Error())
    }
    limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

    data, err := r.investigationSvc.GraphData(req.Context(), sessionID, middleware.ValidateLimit(limit))
    if err != nil {
        return err
    }

    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(data)
}

// GET /graph/entity/{name}?depth=&limit=
func (r *Router) handleEntitySubgraph(w http.ResponseWriter, req *http.Request) error {
    name := chi.URLParam(req, "name")
    if err := middleware.ValidateEntityName(name); err != nil {
        return badRequest(err.Error())
    }
    depth, _ := strconv.Atoi(req.URL.Query().Get("depth"))
    limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

    data, err := r.investigationSvc.EntitySubgraph(req.Context(), name,
        middleware.ValidateDepth(depth), middleware.ValidateLimit(limit))
    if err != nil {
        return err
    }

    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(data)
}

// GET /graph/recent?minutes=&limit=
func (r *Router) handleGraphRecent(w http.ResponseWriter, req *http.Request) error {
    minutes, _ := strconv.Atoi(req.URL.Query().Get("minutes"))
    if minutes <= 0 {
        minutes = 60
    }
    limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

    since := time.Now().Add(-time.Duration(minutes) * time.Minute)
    data, err := r.investigationSvc.RecentGraphChanges(req.Context(), since, middleware.ValidateLimit(limit))
    if err != nil {
        return err
    }

    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(data)
}

// GET /sessions/{id}/messages?limit=
func (r *Router) handleSessionMessages(w http.ResponseWriter, req *http.Request) error {
    id := chi.URLParam(req, "id")
    if err := middleware.ValidateSessionID(id); err != nil || id == "" {
        return badRequest("invalid session ID")
    }
    limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

    msgs, err := r.investigationSvc.SessionMessages(req.Context(), id, middleware.ValidateLimit(limit))
    if err != nil {
        return err
    }

    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(msgs)
}

// GET /sessions/{id}/analyses?limit=
func (r *Router) handleSessionAnalyses(w http.ResponseWriter, req *http.Request) error {
    id := chi.URLParam(req, "id")
    if err := middleware.ValidateSessionID(id); err != nil || id == "" {
        return badRequest("invalid session ID")
    }
    limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

    records, err := r.investigationSvc.SessionAnalyses(req.Context(), id, middleware.ValidateLimit(limit))
    if err != nil {
        return err
    }

    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(records)
}

// GET /sessions/{id}/analyses/latest
func (r *Router) handleLatestAnalysis(w http.ResponseWriter, req *http.Request) error {
    id := chi.URLParam(req, "id")
    if err := middleware.ValidateSessionID(id); err != nil || id == "" {
        return badRequest("invalid session ID")
    }

    record, err := r.investigationSvc.LatestAnalysis(req.Context(), id)
    if err != nil {
        return err
    }
    if record == nil {
        return sql.ErrNoRows
    }

    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(record)
}

// POST /sessions/{id}/archive
func (r *Router) handleArchiveSession(w http.ResponseWriter, req *http.Request) error {
    id := chi.URLParam(req, "id")
    if err := middleware.ValidateSessionID(id); err != nil || id == "" {
        return badRequest("invalid session ID")
    }

    url, err := r.investigationSvc.ArchiveSession(req.Context(), id)
    if err != nil {
        return err
    }

    w.Header().Set("Content-Type", "application/json")
    return json.NewEncoder(w).Encode(map[string]string{"transcript_url": url, "session_id": id})
}
