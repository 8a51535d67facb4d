package cache

import (
	"context"

	"github.com/thomas-vilte/evalusense/internal/config"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/logger"
	"github.com/thomas-vilte/evalusense/internal/ui"
	"github.com/urfave/cli/v3"
)

type cleaner interface {
	Clean() error
}

type CacheCommandFactory struct {
	store cleaner
}

func NewCacheCommandFactory(store cleaner) *CacheCommandFactory {
	return &CacheCommandFactory{
		store: store,
	}
}

func (f *CacheCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: t.GetMessage("cache_usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "clean",
				Usage: t.GetMessage("cache_clean_usage", 0, nil),
				Action: func(ctx context.Context, command *cli.Command) error {
					if err := f.store.Clean(); err != nil {
						return err
					}
					logger.Info(ctx, "prompt cache cleaned", "location", cfg.CacheLocation())
					ui.PrintSuccess(command.Root().Writer, t.GetMessage("cache_cleaned", 0, nil))
					return nil
				},
			},
		},
	}
}
