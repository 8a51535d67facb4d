package version

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/urfave/cli/v3"
)

type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) CheckForUpdates(ctx context.Context) (string, bool) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1)
}

func runVersion(t *testing.T, checker updateChecker) string {
	t.Helper()
	color.NoColor = true

	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	var out bytes.Buffer
	app := &cli.Command{
		Name:     "evalusense",
		Writer:   &out,
		Commands: []*cli.Command{NewVersionCommandFactory("v0.3.0", checker).CreateCommand(translations, nil)},
	}
	require.NoError(t, app.Run(context.Background(), []string{"evalusense", "version"}))
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	t.Run("should print the version and the available update", func(t *testing.T) {
		checker := &MockChecker{}
		checker.On("CheckForUpdates", mock.Anything).Return("v0.4.0", true)

		out := runVersion(t, checker)

		assert.Contains(t, out, "evalusense v0.3.0")
		assert.Contains(t, out, "v0.4.0")
	})

	t.Run("should print only the version when up to date", func(t *testing.T) {
		checker := &MockChecker{}
		checker.On("CheckForUpdates", mock.Anything).Return("v0.3.0", false)

		out := runVersion(t, checker)

		assert.Contains(t, out, "evalusense v0.3.0")
		assert.NotContains(t, out, "v0.4.0")
		checker.AssertExpectations(t)
	})
}
