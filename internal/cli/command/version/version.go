package version

import (
	"context"

	"github.com/thomas-vilte/evalusense/internal/config"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/ui"
	"github.com/urfave/cli/v3"
)

type updateChecker interface {
	CheckForUpdates(ctx context.Context) (string, bool)
}

type VersionCommandFactory struct {
	currentVersion string
	checker        updateChecker
}

func NewVersionCommandFactory(currentVersion string, checker updateChecker) *VersionCommandFactory {
	return &VersionCommandFactory{
		currentVersion: currentVersion,
		checker:        checker,
	}
}

func (f *VersionCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: t.GetMessage("version_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			w := command.Root().Writer

			ui.PrintInfo(w, t.GetMessage("version_current", 0, map[string]interface{}{
				"Version": f.currentVersion,
			}))

			if latest, ok := f.checker.CheckForUpdates(ctx); ok {
				ui.PrintWarning(w, t.GetMessage("update_available", 0, map[string]interface{}{
					"Latest":  latest,
					"Current": f.currentVersion,
				}))
			}
			return nil
		},
	}
}
