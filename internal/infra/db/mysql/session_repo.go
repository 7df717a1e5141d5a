package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/session"
)

// SessionRepository is the MySQL variant of the session store for
// deployments that cannot run Postgres.
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
VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE id=id;
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
WHERE id=? LIMIT 1;
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
VALUES (?,?,?,?,?,?);
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
WHERE session_id=?
ORDER BY created_at ASC, id ASC
LIMIT ?;
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

func metadataJSON(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func parseMetadata(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
