package cache

import (
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/models"
	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS prompt_cache (
    username    TEXT NOT NULL,
    repository  TEXT NOT NULL,
    payload     TEXT NOT NULL,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (username, repository)
);
`

// SQLiteStore keeps every key as one row of a local database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, domainErrors.ErrCacheOpen.
			WithError(err).
			WithContext("path", dbPath)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, domainErrors.ErrCacheOpen.
			WithError(err).
			WithContext("path", dbPath)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, domainErrors.ErrCacheOpen.
			WithError(err).
			WithContext("path", dbPath).
			WithContext("stage", "schema")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(username, repo string) []models.BranchPromptRecord {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM prompt_cache WHERE username = ? AND repository = ?`,
		username, repo,
	).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("error reading prompt cache",
				"error", err,
				"user", username,
				"repo", repo)
		}
		return []models.BranchPromptRecord{}
	}
	return decodeRecords([]byte(payload))
}

func (s *SQLiteStore) Save(username, repo string, records []models.BranchPromptRecord) error {
	data, err := encodeRecords(records)
	if err != nil {
		return domainErrors.ErrCacheWrite.WithError(err)
	}

	_, err = s.db.Exec(
		`INSERT INTO prompt_cache (username, repository, payload) VALUES (?, ?, ?)
		 ON CONFLICT(username, repository) DO UPDATE SET payload = excluded.payload, updated_at = datetime('now')`,
		username, repo, string(data),
	)
	if err != nil {
		return domainErrors.ErrCacheWrite.
			WithError(err).
			WithContext("user", username).
			WithContext("repo", repo)
	}
	return nil
}

func (s *SQLiteStore) Clean() error {
	if _, err := s.db.Exec(`DELETE FROM prompt_cache`); err != nil {
		return domainErrors.ErrCacheWrite.WithError(err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
