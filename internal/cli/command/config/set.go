package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/evalusense/internal/config"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newSetCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     t.GetMessage("config_set_usage", 0, nil),
		ArgsUsage: "<key> <value>",
		ShellComplete: func(ctx context.Context, command *cli.Command) {
			if command.NArg() > 0 {
				return
			}
			for _, key := range config.Keys {
				_, _ = fmt.Fprintln(command.Root().Writer, key)
			}
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.NArg() < 2 {
				return domainErrors.NewAppError(domainErrors.TypeConfiguration,
					t.GetMessage("error_missing_argument", 0, map[string]interface{}{"Name": "<key> <value>"}), nil).
					WithSuggestion(t.GetMessage("config_keys", 0, nil) + ": " + strings.Join(config.Keys, ", "))
			}

			key := command.Args().Get(0)
			value := strings.Join(command.Args().Slice()[1:], " ")

			updated := *cfg
			updated.SourceExtensions = append([]string(nil), cfg.SourceExtensions...)
			if err := updated.Set(key, value); err != nil {
				return err
			}
			if err := config.SaveConfig(&updated); err != nil {
				return err
			}
			*cfg = updated

			ui.PrintSuccess(command.Root().Writer, t.GetMessage("config_saved", 0, map[string]interface{}{
				"Key": key,
			}))
			return nil
		},
	}
}
