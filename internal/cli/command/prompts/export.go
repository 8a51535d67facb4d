package prompts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/thomas-vilte/evalusense/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "txt"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

type exportedRecord struct {
	Branch      string `json:"branch" yaml:"branch"`
	FileCount   int    `json:"filesCount" yaml:"files_count"`
	GeneratedAt string `json:"generatedAt" yaml:"generated_at"`
	Truncated   bool   `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Prompt      string `json:"prompt" yaml:"prompt"`
	Result      string `json:"result,omitempty" yaml:"result,omitempty"`
}

// IsSupportedFormat reports whether format can be passed to Export.
func IsSupportedFormat(format string) bool {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// ExportFileName is the file written for branch. Characters that are not
// safe in file names, such as the slash of "feature/x", become "_".
func ExportFileName(branch, format string) string {
	return unsafeFileChars.ReplaceAllString(branch, "_") + "." + format
}

// Export writes one file per record into dir and returns the paths in
// record order. The txt format holds only the prompt.
func Export(dir, format string, records []models.BranchPromptRecord) ([]string, error) {
	if !IsSupportedFormat(format) {
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating export directory: %w", err)
	}

	paths := make([]string, 0, len(records))
	for _, r := range records {
		data, err := encode(format, r)
		if err != nil {
			return paths, fmt.Errorf("error encoding prompt of %s: %w", r.Branch, err)
		}

		path := filepath.Join(dir, ExportFileName(r.Branch, format))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("error writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func encode(format string, r models.BranchPromptRecord) ([]byte, error) {
	out := exportedRecord{
		Branch:      r.Branch,
		FileCount:   r.FileCount,
		GeneratedAt: r.GeneratedAt,
		Truncated:   r.Truncated,
		Prompt:      r.Prompt,
		Result:      r.Result,
	}

	switch format {
	case FormatJSON:
		return json.MarshalIndent(out, "", "  ")
	case FormatYAML:
		return yaml.Marshal(out)
	default:
		return []byte(r.Prompt), nil
	}
}
