package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/thomas-vilte/evalusense/internal/ai/gemini"
	storeCache "github.com/thomas-vilte/evalusense/internal/cache"
	"github.com/thomas-vilte/evalusense/internal/cli/command/branches"
	"github.com/thomas-vilte/evalusense/internal/cli/command/cache"
	"github.com/thomas-vilte/evalusense/internal/cli/command/completion"
	"github.com/thomas-vilte/evalusense/internal/cli/command/config"
	"github.com/thomas-vilte/evalusense/internal/cli/command/execute"
	"github.com/thomas-vilte/evalusense/internal/cli/command/prompts"
	"github.com/thomas-vilte/evalusense/internal/cli/command/repos"
	versionCmd "github.com/thomas-vilte/evalusense/internal/cli/command/version"
	"github.com/thomas-vilte/evalusense/internal/cli/registry"
	"github.com/thomas-vilte/evalusense/internal/cli/session"
	cfg "github.com/thomas-vilte/evalusense/internal/config"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/logger"
	"github.com/thomas-vilte/evalusense/internal/services"
	"github.com/thomas-vilte/evalusense/internal/ui"
	"github.com/thomas-vilte/evalusense/internal/vcs/github"
	"github.com/thomas-vilte/evalusense/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	os.Exit(run())
}

func run() int {
	app, translations, closeStore, err := initializeApp()
	if err != nil {
		ui.HandleAppError(err, translations)
		return 1
	}
	defer closeStore()

	if err := app.Run(context.Background(), os.Args); err != nil {
		ui.HandleAppError(err, translations)
		return 1
	}
	return 0
}

func initializeApp() (*cli.Command, *i18n.Translations, func(), error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not get the user home directory: %w", err)
	}

	cfgApp, err := cfg.LoadConfig(homeDir)
	if err != nil {
		return nil, nil, nil, err
	}

	translations, err := i18n.NewTranslations(cfg.GetLocaleConfig(cfgApp.Language))
	if err != nil {
		log.Fatalf("Error loading translations: %v", err)
	}

	store, err := storeCache.NewStore(cfgApp)
	if err != nil {
		return nil, translations, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: could not close the prompt cache: %v", err)
		}
	}

	evaluationService, err := services.NewEvaluationService(
		services.WithRepositoryClientProvider(github.NewProvider()),
		services.WithGenerator(gemini.NewGenerationClient(string(cfgApp.Model))),
		services.WithStore(store),
		services.WithSourceExtensions(cfgApp.SourceExtensions),
	)
	if err != nil {
		closeStore()
		return nil, translations, nil, err
	}

	checker := services.NewVersionChecker(version.FullVersion(), filepath.Dir(cfgApp.PathFile), nil)

	registerCommand := registry.NewRegistry(cfgApp, translations)
	factories := []struct {
		name    string
		factory registry.CommandFactory
	}{
		{"repos", repos.NewReposCommandFactory(evaluationService)},
		{"branches", branches.NewBranchesCommandFactory(evaluationService)},
		{"rebuild", branches.NewRebuildCommandFactory(evaluationService)},
		{"prompts", prompts.NewPromptsCommandFactory(evaluationService)},
		{"execute", execute.NewExecuteCommandFactory(evaluationService)},
		{"config", config.NewConfigCommandFactory()},
		{"cache", cache.NewCacheCommandFactory(store)},
		{"version", versionCmd.NewVersionCommandFactory(version.FullVersion(), checker)},
	}
	for _, f := range factories {
		if err := registerCommand.Register(f.name, f.factory); err != nil {
			log.Fatalf("Error registering command '%s': %v", f.name, err)
		}
	}

	commands := registerCommand.CreateCommands()
	commands = append(commands, completion.NewCompletionCommand(translations))

	return &cli.Command{
		Name:        "evalusense",
		Usage:       translations.GetMessage("app_description", 0, nil),
		Version:     version.Version,
		Description: translations.GetMessage("app_description", 0, nil),
		Flags:       session.GlobalFlags(translations),
		Commands:    commands,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Initialize(cmd.Bool("debug"), cmd.Bool("verbose"))
			return ctx, nil
		},
		EnableShellCompletion: true,
	}, translations, closeStore, nil
}
