package postgres

import (
    "context"
    "database/sql"
    "time"

    domain "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/session"
)

type SessionRepository struct {
    db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
    return &SessionRepository{db: db}
}

// CreateSession inserts a session row; re-submitting the same id is a no-op
func (r *SessionRepository) CreateSession(ctx context.Context, s *domain.Session) error {
    const q = `
INSERT INTO sessions (id, user_id, metadata, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO NOTHING;
`
    createdAt := s.CreatedAt
    if createdAt.IsZero() {
        createdAt = time.Now()
    }
    _, err := r.db.ExecContext(ctx, q, s.ID, s.UserID, metadataJSON(s.Metadata), createdAt)
    return err
}

// Get by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
    const q = `
SELECT id, user_id, metadata, created_at
FROM sessions
WHERE id=$1 LIMIT 1;
`
    row := r.db.QueryRowContext(ctx, q, id)

    var s domain.Session
    var meta []byte
    if err := row.Scan(&s.ID, &s.UserID, &meta, &s.CreatedAt); err != nil {
        return nil, err
    }
    s.Metadata = parseMetadata(meta)
    return &s, nil
}

// AppendMessage inserts one message row
func (r *SessionRepository) AppendMessage(ctx context.Context, m *domain.Message) error {
    const q = `
INSERT INTO messages (id, session_id, role, content, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
    createdAt := m.CreatedAt
    if createdAt.IsZero() {
        createdAt = time.Now()
    }
    _, err := r.db.ExecContext(ctx, q, m.ID, m.SessionID, string(m.Role), m.Content, metadataJSON(m.Metadata), createdAt)
    return err
}

// Messages returns a session's messages in insertion order
func (r *SessionRepository) Messages(ctx context.Context, sessionID string, limit int) ([]*domain.Message, error) {
    if limit <= 0 {
        limit = 200
    }
    const q = `
SELECT id, session_id, role, content, metadata, created_at
FROM messages
WHERE session_id=$1
ORDER BY created_at ASC, id ASC
LIMIT $2;
`
    rows, err := r.db.QueryContext(ctx, q, sessionID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*domain.Message
    for rows.Next() {
        var m domain.Message
        var role string
        var meta []byte
        if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &meta, &m.CreatedAt); err != nil {
            return nil, err
        }
        m.Role = domain.Role(role)
        m.Metadata = parseMetadata(meta)
        out = append(out, &m)
    }
    return out, rows.Err()
}
