package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/evalusense/internal/config"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/urfave/cli/v3"
)

type mockCommandFactory struct {
	name string
}

func (m *mockCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name: m.name,
	}
}

func newTranslations(t *testing.T) *i18n.Translations {
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	return translations
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register new factory successfully", func(t *testing.T) {
		// Arrange
		registry := NewRegistry(&config.Config{}, newTranslations(t))
		factory := &mockCommandFactory{name: "repos"}

		// Act
		err := registry.Register("repos", factory)

		// Assert
		assert.NoError(t, err)
		assert.Len(t, registry.factories, 1)
		assert.Contains(t, registry.factories, "repos")
	})

	t.Run("should return error when registering duplicate factory", func(t *testing.T) {
		// Arrange
		registry := NewRegistry(&config.Config{}, newTranslations(t))
		factory := &mockCommandFactory{name: "repos"}

		// Act
		_ = registry.Register("repos", factory)
		err := registry.Register("repos", factory)

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "repos")
		assert.Len(t, registry.factories, 1)
	})
}

func TestRegistry_CreateCommands(t *testing.T) {
	t.Run("should create commands in registration order", func(t *testing.T) {
		// Arrange
		registry := NewRegistry(&config.Config{}, newTranslations(t))
		for _, name := range []string{"repos", "branches", "execute", "config"} {
			require.NoError(t, registry.Register(name, &mockCommandFactory{name: name}))
		}

		// Act
		commands := registry.CreateCommands()

		// Assert
		require.Len(t, commands, 4)
		names := []string{commands[0].Name, commands[1].Name, commands[2].Name, commands[3].Name}
		assert.Equal(t, []string{"repos", "branches", "execute", "config"}, names)
	})

	t.Run("should return empty slice when no factories registered", func(t *testing.T) {
		registry := NewRegistry(&config.Config{}, newTranslations(t))

		commands := registry.CreateCommands()

		assert.Empty(t, commands)
	})
}

func TestNewRegistry(t *testing.T) {
	cfg := &config.Config{}
	translations := newTranslations(t)

	registry := NewRegistry(cfg, translations)

	assert.NotNil(t, registry)
	assert.Empty(t, registry.factories)
	assert.Equal(t, cfg, registry.config)
	assert.Equal(t, translations, registry.t)
}
