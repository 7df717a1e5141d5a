package session

import "context"

// Repository port (interface for session/message persistence)
type Repository interface {
	CreateSession(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	AppendMessage(ctx context.Context, m *Message) error
	Messages(ctx context.Context, sessionID string, limit int) ([]*Message, error)
}

// ArchiveStore port (interface for transcript archival)
type ArchiveStore interface {
	// Archive uploads a rendered transcript under key and returns its URL.
	Archive(ctx context.Context, key, content string) (string, error)
}
