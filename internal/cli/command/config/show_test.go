package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowCommand(t *testing.T) {
	t.Run("should display every key with secrets masked", func(t *testing.T) {
		// Arrange
		cfg, translations, path := setupConfigTest(t)
		t.Setenv("GITHUB_TOKEN", "")
		cfg.Username = "clavison"
		cfg.GitHubToken = "ghp_1234567890abcdef"

		// Act
		out, err := runConfig(t, cfg, translations, "show")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out, path)
		assert.Contains(t, out, "username: clavison")
		assert.Contains(t, out, "github_token: ghp_...cdef")
		assert.NotContains(t, out, "ghp_1234567890abcdef")
		assert.Contains(t, out, "source_extensions: .java")
		assert.Contains(t, out, "cache_backend: file")
	})

	t.Run("should show the resolved cache location", func(t *testing.T) {
		cfg, translations, _ := setupConfigTest(t)

		out, err := runConfig(t, cfg, translations, "show")

		require.NoError(t, err)
		assert.Contains(t, out, "cache_path: "+cfg.CacheLocation())
	})
}
