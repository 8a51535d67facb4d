package execute

import (
	"context"
	"errors"
	"strings"

	"github.com/thomas-vilte/evalusense/internal/cli/completion_helper"
	"github.com/thomas-vilte/evalusense/internal/cli/session"
	"github.com/thomas-vilte/evalusense/internal/config"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/models"
	"github.com/thomas-vilte/evalusense/internal/services"
	"github.com/thomas-vilte/evalusense/internal/ui"
	"github.com/urfave/cli/v3"
)

type promptExecutor interface {
	Execute(ctx context.Context, session services.Session, branch string) (models.BranchPromptRecord, error)
	ExecuteAll(ctx context.Context, session services.Session, progress models.ProgressFunc) (services.ExecuteSummary, error)
}

type ExecuteCommandFactory struct {
	service promptExecutor
}

func NewExecuteCommandFactory(service promptExecutor) *ExecuteCommandFactory {
	return &ExecuteCommandFactory{
		service: service,
	}
}

func (f *ExecuteCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "execute",
		Aliases:       []string{"x"},
		Usage:         t.GetMessage("execute_usage", 0, nil),
		ArgsUsage:     "<repo> [branch]",
		Flags:         f.createFlags(t),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.createAction(t, cfg),
	}
}

func (f *ExecuteCommandFactory) createFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"a"},
			Usage:   t.GetMessage("flag_all", 0, nil),
		},
		&cli.StringFlag{
			Name:  session.FlagGeminiKey,
			Usage: t.GetMessage("flag_gemini_key", 0, nil),
		},
	}
}

func (f *ExecuteCommandFactory) createAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		errW := command.Root().ErrWriter

		repo := strings.TrimSpace(command.Args().First())
		if repo == "" {
			return domainErrors.ErrRepositoryMissing
		}
		branch := strings.TrimSpace(command.Args().Get(1))

		all := command.Bool("all")
		if !all && branch == "" {
			return domainErrors.NewAppError(domainErrors.TypeConfiguration,
				t.GetMessage("error_missing_argument", 0, map[string]interface{}{"Name": "branch"}), nil).
				WithSuggestion("evalusense execute " + repo + " <branch>  |  evalusense execute " + repo + " --all")
		}

		sess, err := session.New(command, cfg, repo)
		if err != nil {
			return err
		}
		if key := strings.TrimSpace(command.String(session.FlagGeminiKey)); key != "" {
			sess.GenerationKey = key
		}

		if all {
			err = f.executeAll(ctx, command, t, sess)
		} else {
			err = f.executeOne(ctx, command, t, sess, branch)
		}

		switch {
		case err == nil:
		case errors.Is(err, domainErrors.ErrAPIKeyMissing):
			ui.PrintError(errW, t.GetMessage("execute_missing_key", 0, nil))
			return ui.Reported(err)
		case errors.Is(err, domainErrors.ErrExecutionInProgress):
			ui.PrintWarning(errW, t.GetMessage("execute_in_progress", 0, map[string]interface{}{
				"Branch": branch,
			}))
			return ui.Reported(err)
		case domainErrors.IsType(err, domainErrors.TypeAI):
			ui.PrintError(errW, t.GetMessage("execute_error", 0, nil))
			return ui.Reported(err)
		}
		return err
	}
}

func (f *ExecuteCommandFactory) executeOne(ctx context.Context, command *cli.Command, t *i18n.Translations, sess services.Session, branch string) error {
	w := command.Root().Writer

	var record models.BranchPromptRecord
	err := ui.WithSpinner(t.GetMessage("execute_running", 0, map[string]interface{}{"Branch": branch}), func() error {
		var execErr error
		record, execErr = f.service.Execute(ctx, sess, branch)
		return execErr
	})
	if err != nil && record.Branch == "" {
		return err
	}

	ui.PrintSuccess(w, t.GetMessage("execute_done", 0, map[string]interface{}{"Branch": branch}))
	ui.PrintVerdict(w, branch, record.Result, t)
	return err
}

func (f *ExecuteCommandFactory) executeAll(ctx context.Context, command *cli.Command, t *i18n.Translations, sess services.Session) error {
	w := command.Root().Writer
	errW := command.Root().ErrWriter

	spinner := ui.NewSmartSpinner(t.GetMessage("execute_running", 0, map[string]interface{}{"Branch": sess.Repository}))
	progress := func(event models.ProgressEvent) {
		if event.Type == models.ProgressExecuteStarted {
			spinner.UpdateMessage(t.GetMessage("execute_running", 0, map[string]interface{}{
				"Branch": event.Branch,
			}))
		}
	}

	spinner.Start()
	summary, err := f.service.ExecuteAll(ctx, sess, progress)
	spinner.Stop()

	if len(summary.Executed) == 0 && len(summary.Failed) == 0 {
		if err == nil {
			ui.PrintInfo(w, t.GetMessage("execute_nothing_pending", 0, nil))
		}
		return err
	}

	if len(summary.Failed) > 0 {
		ui.PrintWarning(errW, t.GetMessage("branches_failed", len(summary.Failed), map[string]interface{}{
			"Count":    len(summary.Failed),
			"Branches": strings.Join(summary.Failed, ", "),
		}))
	}
	if len(summary.Executed) > 0 {
		ui.PrintSuccess(w, t.GetMessage("execute_all_done", len(summary.Executed), map[string]interface{}{
			"Count": len(summary.Executed),
		}))
	}
	return err
}
