package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
)

// Document names, one per entity type. The post queue is not listed: it is
// in-memory only and lost on restart.
const (
	DocUsers     = "users"
	DocAuditLogs = "audit_logs"
	DocCaptions  = "captions"
	DocMedia     = "media"
	DocTemplates = "templates"
)

// DocStore keeps one JSON document per entity type in an embedded sqlite
// database. Reads decode the whole document; writes replace it in a single
// statement, so a partial write can never corrupt a document.
type DocStore struct {
	db *sql.DB
}

func NewDocStore(db *sql.DB) (*DocStore, error) {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(query); err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	return &DocStore{db: db}, nil
}

// Load decodes the named document into v. It reports false when the
// document does not exist yet, leaving v untouched.
func (s *DocStore) Load(ctx context.Context, name string, v any) (bool, error) {
	var data []byte
	query := "SELECT data FROM documents WHERE name = ?"
	err := s.db.QueryRowContext(ctx, query, name).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Error(err.Error())
		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		slog.Error(err.Error())
		return false, err
	}
	return true, nil
}

// Save replaces the named document with the JSON encoding of v.
func (s *DocStore) Save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	query := `
		INSERT INTO documents (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, name, data); err != nil {
		slog.Error(err.Error())
		return err
	}
	return nil
}
