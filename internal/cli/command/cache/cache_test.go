package cache

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storeCache "github.com/thomas-vilte/evalusense/internal/cache"
	"github.com/thomas-vilte/evalusense/internal/config"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/models"
	"github.com/urfave/cli/v3"
)

type failingStore struct{}

func (failingStore) Clean() error { return domainErrors.ErrCacheWrite }

func run(t *testing.T, store cleaner) (string, error) {
	t.Helper()
	color.NoColor = true

	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	cfg := config.Default(filepath.Join(t.TempDir(), "config.json"))

	var out bytes.Buffer
	app := &cli.Command{
		Name:     "evalusense",
		Writer:   &out,
		Commands: []*cli.Command{NewCacheCommandFactory(store).CreateCommand(translations, cfg)},
	}
	err = app.Run(context.Background(), []string{"evalusense", "cache", "clean"})
	return out.String(), err
}

func TestCacheClean(t *testing.T) {
	t.Run("should remove every cached list", func(t *testing.T) {
		// Arrange
		store, err := storeCache.NewFileStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, store.Save("ana", "poo", []models.BranchPromptRecord{{Branch: "b", Prompt: "p", GeneratedAt: "t"}}))

		// Act
		out, err := run(t, store)

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out, "cache deleted")
		assert.Empty(t, store.Load("ana", "poo"))
	})

	t.Run("should return the store error", func(t *testing.T) {
		_, err := run(t, failingStore{})

		assert.ErrorIs(t, err, domainErrors.ErrCacheWrite)
	})
}
