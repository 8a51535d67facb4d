package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/models"
)

var _ Store = (*FileStore)(nil)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileStore keeps one JSON file per (username, repository) in a directory.
type FileStore struct {
	cacheDir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, domainErrors.ErrCacheOpen.
			WithError(err).
			WithContext("path", dir)
	}
	return &FileStore{cacheDir: dir}, nil
}

// FileName is the cache file used for a key.
func FileName(username, repo string) string {
	return fmt.Sprintf("prompts.%s.%s.json", sanitizeKey(username), sanitizeKey(repo))
}

func sanitizeKey(part string) string {
	return unsafeKeyChars.ReplaceAllString(part, "_")
}

func (s *FileStore) path(username, repo string) string {
	return filepath.Join(s.cacheDir, FileName(username, repo))
}

func (s *FileStore) Load(username, repo string) []models.BranchPromptRecord {
	data, err := os.ReadFile(s.path(username, repo))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("error reading prompt cache",
				"error", err,
				"user", username,
				"repo", repo)
		}
		return []models.BranchPromptRecord{}
	}
	return decodeRecords(data)
}

func (s *FileStore) Save(username, repo string, records []models.BranchPromptRecord) error {
	data, err := encodeRecords(records)
	if err != nil {
		return domainErrors.ErrCacheWrite.WithError(err)
	}

	if err := os.WriteFile(s.path(username, repo), data, 0644); err != nil {
		return domainErrors.ErrCacheWrite.
			WithError(err).
			WithContext("user", username).
			WithContext("repo", repo)
	}
	return nil
}

// Clean removes every cache file of the store and leaves other files alone.
func (s *FileStore) Clean() error {
	files, err := filepath.Glob(filepath.Join(s.cacheDir, "prompts.*.json"))
	if err != nil {
		return domainErrors.ErrCacheWrite.WithError(err)
	}

	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return domainErrors.ErrCacheWrite.
				WithError(err).
				WithContext("path", f)
		}
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
