package repos

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/evalusense/internal/cli/completion_helper"
	"github.com/thomas-vilte/evalusense/internal/cli/session"
	"github.com/thomas-vilte/evalusense/internal/config"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/models"
	"github.com/thomas-vilte/evalusense/internal/services"
	"github.com/thomas-vilte/evalusense/internal/ui"
	"github.com/urfave/cli/v3"
)

type repositoryLister interface {
	ListRepositories(ctx context.Context, session services.Session) ([]models.Repository, error)
}

type ReposCommandFactory struct {
	service repositoryLister
}

func NewReposCommandFactory(service repositoryLister) *ReposCommandFactory {
	return &ReposCommandFactory{
		service: service,
	}
}

func (f *ReposCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "repos",
		Aliases:       []string{"r"},
		Usage:         t.GetMessage("repos_usage", 0, nil),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.createAction(t, cfg),
	}
}

func (f *ReposCommandFactory) createAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		w := command.Root().Writer

		sess, err := session.New(command, cfg, "")
		if err != nil {
			return err
		}

		var repos []models.Repository
		err = ui.WithSpinner(t.GetMessage("repos_loading", 0, nil), func() error {
			var listErr error
			repos, listErr = f.service.ListRepositories(ctx, sess)
			return listErr
		})
		if err != nil {
			ui.PrintError(command.Root().ErrWriter, t.GetMessage("repos_error", 0, nil))
			return ui.Reported(err)
		}

		if len(repos) == 0 {
			ui.PrintInfo(w, t.GetMessage("repos_empty", 0, nil))
			return nil
		}

		for _, r := range repos {
			_, _ = fmt.Fprintln(w, r.Name)
		}
		_, _ = fmt.Fprintln(w)
		ui.PrintInfo(w, t.GetMessage("repos_count", len(repos), map[string]interface{}{
			"Count": len(repos),
		}))
		return nil
	}
}
