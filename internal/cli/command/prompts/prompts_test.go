package prompts

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/evalusense/internal/cli/session"
	"github.com/thomas-vilte/evalusense/internal/config"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/models"
	"github.com/thomas-vilte/evalusense/internal/services"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

type MockReader struct {
	mock.Mock
}

func (m *MockReader) CachedRecords(s services.Session) ([]models.BranchPromptRecord, error) {
	args := m.Called(s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BranchPromptRecord), args.Error(1)
}

func cachedRecords() []models.BranchPromptRecord {
	return []models.BranchPromptRecord{
		{Branch: "alice", FileCount: 2, GeneratedAt: "2024-05-01T10:00:00.000Z", Prompt: "prompt da alice"},
		{
			Branch:      "feature/x",
			FileCount:   1,
			GeneratedAt: "2024-05-01T10:01:00.000Z",
			Prompt:      "prompt da feature",
			Result:      "{\n  \"branch\": \"feature/x\",\n  \"nota\": 8,\n  \"feedback\": \"bom\"\n}",
		},
	}
}

func run(t *testing.T, reader recordReader, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	cfg := config.Default(filepath.Join(t.TempDir(), "config.json"))
	cfg.Username = "ana"

	var out bytes.Buffer
	app := &cli.Command{
		Name:      "evalusense",
		Writer:    &out,
		ErrWriter: &bytes.Buffer{},
		Flags:     session.GlobalFlags(translations),
		Commands:  []*cli.Command{NewPromptsCommandFactory(reader).CreateCommand(translations, cfg)},
	}
	err = app.Run(context.Background(), append([]string{"evalusense"}, args...))
	return out.String(), err
}

func TestPromptsCommand(t *testing.T) {
	t.Run("should list the cached records", func(t *testing.T) {
		// Arrange
		reader := &MockReader{}
		reader.On("CachedRecords", mock.MatchedBy(func(s services.Session) bool {
			return s.Username == "ana" && s.Repository == "poo"
		})).Return(cachedRecords(), nil)

		// Act
		out, err := run(t, reader, "prompts", "poo")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out, "BRANCH")
		assert.Contains(t, out, "alice")
		assert.Contains(t, out, "evaluated (8)")
		assert.NotContains(t, out, "prompt da alice")
		reader.AssertExpectations(t)
	})

	t.Run("should show the prompt and verdict of one branch", func(t *testing.T) {
		reader := &MockReader{}
		reader.On("CachedRecords", mock.Anything).Return(cachedRecords(), nil)

		out, err := run(t, reader, "prompts", "poo", "feature/x")

		require.NoError(t, err)
		assert.Contains(t, out, "prompt da feature")
		assert.Contains(t, out, "Score: 8")
		assert.Contains(t, out, "Feedback: bom")
		assert.NotContains(t, out, "prompt da alice")
	})

	t.Run("should only print the prompt of a pending branch", func(t *testing.T) {
		reader := &MockReader{}
		reader.On("CachedRecords", mock.Anything).Return(cachedRecords(), nil)

		out, err := run(t, reader, "prompts", "poo", "alice")

		require.NoError(t, err)
		assert.Equal(t, "prompt da alice\n", out)
	})

	t.Run("should fail on an unknown branch", func(t *testing.T) {
		reader := &MockReader{}
		reader.On("CachedRecords", mock.Anything).Return(cachedRecords(), nil)

		_, err := run(t, reader, "prompts", "poo", "carol")

		assert.ErrorIs(t, err, domainErrors.ErrRecordNotFound)
	})

	t.Run("should tell the user to load branches first", func(t *testing.T) {
		reader := &MockReader{}
		reader.On("CachedRecords", mock.Anything).Return([]models.BranchPromptRecord{}, nil)

		out, err := run(t, reader, "prompts", "poo")

		require.NoError(t, err)
		assert.Contains(t, out, "evalusense branches poo")
	})

	t.Run("should reject an unknown format before reading the cache", func(t *testing.T) {
		reader := &MockReader{}

		_, err := run(t, reader, "prompts", "--format", "csv", "poo")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "csv")
		reader.AssertNotCalled(t, "CachedRecords", mock.Anything)
	})

	t.Run("should require the repository", func(t *testing.T) {
		reader := &MockReader{}

		_, err := run(t, reader, "prompts")

		assert.ErrorIs(t, err, domainErrors.ErrRepositoryMissing)
	})

	t.Run("should export every record", func(t *testing.T) {
		reader := &MockReader{}
		reader.On("CachedRecords", mock.Anything).Return(cachedRecords(), nil)
		dir := filepath.Join(t.TempDir(), "out")

		out, err := run(t, reader, "prompts", "--export", dir, "poo")

		require.NoError(t, err)
		assert.Contains(t, out, "2 prompts exported")
		content, err := os.ReadFile(filepath.Join(dir, "feature_x.txt"))
		require.NoError(t, err)
		assert.Equal(t, "prompt da feature", string(content))
		assert.FileExists(t, filepath.Join(dir, "alice.txt"))
	})
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		branch string
		format string
		want   string
	}{
		{"alice", FormatText, "alice.txt"},
		{"feature/x", FormatJSON, "feature_x.json"},
		{"joão silva", FormatYAML, "jo_o_silva.yaml"},
		{"v1.2-final", FormatText, "v1.2-final.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportFileName(tt.branch, tt.format))
		})
	}
}

func TestExport(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()

		// Act
		paths, err := Export(dir, FormatJSON, cachedRecords()[1:])

		// Assert
		require.NoError(t, err)
		require.Len(t, paths, 1)
		data, err := os.ReadFile(paths[0])
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "feature/x", got["branch"])
		assert.Equal(t, float64(1), got["filesCount"])
		assert.Equal(t, "prompt da feature", got["prompt"])
		assert.Contains(t, got["result"], "\"nota\": 8")
		assert.NotContains(t, got, "truncated")
	})

	t.Run("yaml", func(t *testing.T) {
		dir := t.TempDir()
		records := cachedRecords()[:1]
		records[0].Truncated = true

		paths, err := Export(dir, FormatYAML, records)

		require.NoError(t, err)
		data, err := os.ReadFile(paths[0])
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, yaml.Unmarshal(data, &got))
		assert.Equal(t, "alice", got["branch"])
		assert.Equal(t, 2, got["files_count"])
		assert.Equal(t, true, got["truncated"])
		assert.NotContains(t, got, "result")
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := Export(t.TempDir(), "csv", cachedRecords())

		assert.Error(t, err)
	})
}
