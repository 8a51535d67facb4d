package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/models"
)

func newTestTranslations(t *testing.T) *i18n.Translations {
	color.NoColor = true
	trans, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	return trans
}

func TestFprintAppError(t *testing.T) {
	trans := newTestTranslations(t)

	t.Run("prints message, details and suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		err := domainErrors.ErrGitHubRateLimit.
			WithError(errors.New("403 API rate limit exceeded")).
			WithSuggestion("Wait a few minutes\nor set a token")

		FprintAppError(&buf, err, trans)

		out := buf.String()
		assert.Contains(t, out, "❌ VCS: GitHub API rate limit exceeded")
		assert.Contains(t, out, "Details: 403 API rate limit exceeded")
		assert.Contains(t, out, "💡 Try: Wait a few minutes\n       or set a token\n")
	})

	t.Run("prints plain errors on one line", func(t *testing.T) {
		var buf bytes.Buffer

		FprintAppError(&buf, errors.New("boom"), nil)

		assert.Equal(t, "❌ boom\n", buf.String())
	})

	t.Run("skips errors a command already reported", func(t *testing.T) {
		var buf bytes.Buffer
		err := Reported(domainErrors.ErrGeminiQuotaExceeded)

		FprintAppError(&buf, err, trans)

		assert.Empty(t, buf.String())
		assert.ErrorIs(t, err, domainErrors.ErrGeminiQuotaExceeded)
		assert.Nil(t, Reported(nil))
	})

	t.Run("ignores nil", func(t *testing.T) {
		var buf bytes.Buffer
		FprintAppError(&buf, nil, trans)
		assert.Empty(t, buf.String())
	})
}

func TestPrintRecords(t *testing.T) {
	trans := newTestTranslations(t)
	records := []models.BranchPromptRecord{
		{Branch: "alice", FileCount: 2, GeneratedAt: "2024-05-01T10:00:00.000Z", Result: "{\n  \"nota\": \"9\"\n}"},
		{Branch: "bob", FileCount: 0, GeneratedAt: "2024-05-01T10:00:01.000Z", Truncated: true},
		{Branch: "carol", FileCount: 1, GeneratedAt: "2024-05-01T10:00:02.000Z", Running: true},
	}

	var buf bytes.Buffer
	PrintRecords(&buf, records, trans)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "BRANCH"))
	assert.Contains(t, lines[1], "evaluated (9)")
	assert.Contains(t, lines[2], "pending, truncated tree")
	assert.Contains(t, lines[3], "running")
	assert.Equal(t, strings.Index(lines[0], "FILES"), strings.Index(lines[1], "2"))
}

func TestPrintVerdict(t *testing.T) {
	trans := newTestTranslations(t)

	t.Run("summarises a verdict", func(t *testing.T) {
		var buf bytes.Buffer
		PrintVerdict(&buf, "alice", `{"branch":"alice","nota":8.5,"feedback":"Bom uso de classes"}`, trans)

		out := buf.String()
		assert.Contains(t, out, "Score: 8.5")
		assert.Contains(t, out, "Feedback: Bom uso de classes")
		assert.NotContains(t, out, "Observations:")
	})

	t.Run("prints free text as is", func(t *testing.T) {
		var buf bytes.Buffer
		PrintVerdict(&buf, "bob", "Nota 7, faltou tratamento de erros.", trans)

		assert.Contains(t, buf.String(), "Nota 7, faltou tratamento de erros.\n")
		assert.NotContains(t, buf.String(), "Score:")
	})
}
