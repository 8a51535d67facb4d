package cache

import (
	"encoding/json"
	"log/slog"

	"github.com/thomas-vilte/evalusense/internal/config"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/models"
)

// Store persists the prompt records of one (username, repository) pair.
// Load never fails: a missing or unreadable entry is an empty list.
type Store interface {
	Load(username, repo string) []models.BranchPromptRecord
	Save(username, repo string, records []models.BranchPromptRecord) error
	Clean() error
	Close() error
}

// NewStore opens the backend selected by cfg.CacheBackend.
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendSQLite:
		return NewSQLiteStore(cfg.CacheLocation())
	case config.CacheBackendFile, "":
		return NewFileStore(cfg.CacheLocation())
	default:
		return nil, domainErrors.ErrCacheOpen.
			WithContext("backend", cfg.CacheBackend)
	}
}

func encodeRecords(records []models.BranchPromptRecord) ([]byte, error) {
	if records == nil {
		records = []models.BranchPromptRecord{}
	}
	return json.Marshal(records)
}

// decodeRecords validates every entry field by field and drops the ones
// that do not look like a record. Unknown fields are ignored. A branch
// appears at most once: the first entry wins.
func decodeRecords(data []byte) []models.BranchPromptRecord {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("discarding unparsable prompt cache", "error", err)
		return []models.BranchPromptRecord{}
	}

	records := make([]models.BranchPromptRecord, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, entry := range raw {
		record, ok := decodeRecord(entry)
		if !ok {
			slog.Warn("dropping malformed prompt cache entry", "index", i)
			continue
		}
		if seen[record.Branch] {
			slog.Warn("dropping duplicate prompt cache entry", "branch", record.Branch, "index", i)
			continue
		}
		seen[record.Branch] = true
		records = append(records, record)
	}
	return records
}

func decodeRecord(entry json.RawMessage) (models.BranchPromptRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return models.BranchPromptRecord{}, false
	}

	var record models.BranchPromptRecord
	if !requiredField(fields, "branch", &record.Branch) || record.Branch == "" {
		return record, false
	}
	if !requiredField(fields, "prompt", &record.Prompt) {
		return record, false
	}
	if !requiredField(fields, "filesCount", &record.FileCount) || record.FileCount < 0 {
		return record, false
	}
	if !requiredField(fields, "generatedAt", &record.GeneratedAt) {
		return record, false
	}
	if !optionalField(fields, "result", &record.Result) {
		return record, false
	}
	if !optionalField(fields, "truncated", &record.Truncated) {
		return record, false
	}

	return record, true
}

func requiredField(fields map[string]json.RawMessage, name string, dst interface{}) bool {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func optionalField(fields map[string]json.RawMessage, name string, dst interface{}) bool {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return true
	}
	return json.Unmarshal(raw, dst) == nil
}
