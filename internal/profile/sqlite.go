package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const DefaultSQLitePath = "autofill.sqlite"

// SQLiteStore keeps the storage area in a key/value table.
type SQLiteStore struct {
	DB *sql.DB
}

// OpenSQLiteStore opens (and migrates) a SQLite database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultSQLitePath
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	s := &SQLiteStore{DB: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite %q: %w", path, err)
	}

	return s, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`)
	return err
}

func (s *SQLiteStore) GetFormData(ctx context.Context) (*FormData, error) {
	var value string
	row := s.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, FormDataKey)

	switch err := row.Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("query profile: %w", err)
	}

	p, err := decodeJSON([]byte(value))
	if err != nil {
		return nil, err
	}

	return &FormData{UserData: p}, nil
}

func (s *SQLiteStore) SaveFormData(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		FormDataKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

var (
	_ Store  = (*SQLiteStore)(nil)
	_ Writer = (*SQLiteStore)(nil)
)
