package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/thomas-vilte/evalusense/internal/config"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			w := command.Root().Writer
			masked := cfg.Masked()

			ui.PrintSectionBanner(w, t.GetMessage("config_usage", 0, nil))
			ui.PrintKeyValue(w, t.GetMessage("config_path", 0, nil), cfg.PathFile)
			_, _ = fmt.Fprintln(w)

			values := map[string]string{
				"username":          masked.Username,
				"github_token":      masked.GitHubToken,
				"gemini_api_key":    masked.GeminiAPIKey,
				"model":             string(masked.Model),
				"language":          masked.Language,
				"source_extensions": strings.Join(masked.SourceExtensions, ","),
				"use_base64":        strconv.FormatBool(masked.UseBase64),
				"cache_backend":     masked.CacheBackend,
				"cache_path":        cfg.CacheLocation(),
			}

			for _, key := range config.Keys {
				ui.PrintKeyValue(w, key, values[key])
			}
			return nil
		},
	}
}
