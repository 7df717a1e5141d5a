package postgres

import (
    "context"
    "database/sql"
    "strings"
    "time"

    domain "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/analysis"
)

type AnalysisRepository struct {
    db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
    return &AnalysisRepository{db: db}
}

// Save inserts or updates an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
    const q = `
INSERT INTO qa_analyses
  (id, session_id, question, answer, mode, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  session_id=EXCLUDED.session_id,
  question=EXCLUDED.question,
  answer=EXCLUDED.answer,
  mode=EXCLUDED.mode,
  result_json=EXCLUDED.result_json;
`
    result := a.Result
    if strings.TrimSpace(result) == "" {
        result = "{}"
    }
    createdAt := a.CreatedAt
    if createdAt.IsZero() {
        createdAt = time.Now()
    }
    _, err := r.db.ExecContext(ctx, q, a.ID, a.SessionID, a.Question, a.Answer, string(a.Mode), result, createdAt)
    return err
}

// BySession returns analysis records for a session ordered by created_at desc
func (r *AnalysisRepository) BySession(ctx context.Context, sessionID string, limit int) ([]*domain.Record, error) {
    if limit <= 0 {
        limit = 20
    }
    const q = `
SELECT id, session_id, question, answer, mode, result_json, created_at
FROM qa_analyses
WHERE session_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2;
`
    rows, err := r.db.QueryContext(ctx, q, sessionID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*domain.Record
    for rows.Next() {
        var a domain.Record
        var mode string
        if err := rows.Scan(&a.ID, &a.SessionID, &a.Question, &a.Answer, &mode, &a.Result, &a.CreatedAt); err != nil {
            return nil, err
        }
        a.Mode = domain.Mode(mode)
        out = append(out, &a)
    }
    return out, rows.Err()
}

// LatestBySession returns the most recent analysis for a session
func (r *AnalysisRepository) LatestBySession(ctx context.Context, sessionID string) (*domain.Record, error) {
    const q = `
SELECT id, session_id, question, answer, mode, result_json, created_at
FROM qa_analyses
WHERE session_id=$1
ORDER BY created_at DESC, id DESC
LIMIT 1;`
    row := r.db.QueryRowContext(ctx, q, sessionID)
    var a domain.Record
    var mode string
    if err := row.Scan(&a.ID, &a.SessionID, &a.Question, &a.Answer, &mode, &a.Result, &a.CreatedAt); err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    a.Mode = domain.Mode(mode)
    return &a, nil
}
