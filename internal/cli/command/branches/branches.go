package branches

import (
	"context"
	"io"
	"strings"
	"time"

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

type branchLoader interface {
	LoadBranches(ctx context.Context, session services.Session, progress models.ProgressFunc) (services.LoadResult, error)
	Rebuild(ctx context.Context, session services.Session, progress models.ProgressFunc) (services.LoadResult, error)
}

type loadFunc func(ctx context.Context, session services.Session, progress models.ProgressFunc) (services.LoadResult, error)

// BranchesCommandFactory builds both "branches" and "rebuild"; they differ
// only in whether the cached records are kept while refreshing.
type BranchesCommandFactory struct {
	service branchLoader
	rebuild bool
}

func NewBranchesCommandFactory(service branchLoader) *BranchesCommandFactory {
	return &BranchesCommandFactory{service: service}
}

func NewRebuildCommandFactory(service branchLoader) *BranchesCommandFactory {
	return &BranchesCommandFactory{service: service, rebuild: true}
}

func (f *BranchesCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	name, aliases, usage := "branches", []string{"b"}, "branches_usage"
	if f.rebuild {
		name, aliases, usage = "rebuild", nil, "rebuild_usage"
	}

	return &cli.Command{
		Name:          name,
		Aliases:       aliases,
		Usage:         t.GetMessage(usage, 0, nil),
		ArgsUsage:     "<repo>",
		Flags:         session.InstructionFlags(t, cfg),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.createAction(t, cfg),
	}
}

func (f *BranchesCommandFactory) createAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		w := command.Root().Writer
		errW := command.Root().ErrWriter

		repo := strings.TrimSpace(command.Args().First())
		if repo == "" {
			return domainErrors.ErrRepositoryMissing
		}

		sess, err := session.New(command, cfg, repo)
		if err != nil {
			return err
		}
		sess.UseEncoded = command.Bool(session.FlagBase64)

		sess.Instructions, err = session.Instructions(ctx, command)
		if err != nil {
			return err
		}

		load := loadFunc(f.service.LoadBranches)
		if f.rebuild {
			load = f.service.Rebuild
		}

		spinner := ui.NewSmartSpinner(t.GetMessage("branches_loading", 0, nil))
		var truncated []string
		progress := func(event models.ProgressEvent) {
			switch event.Type {
			case models.ProgressBranchStarted:
				spinner.UpdateMessage(t.GetMessage("branch_progress", 0, map[string]interface{}{
					"Branch": event.Branch,
				}))
			case models.ProgressTreeTruncated:
				truncated = append(truncated, event.Branch)
			}
		}

		start := time.Now()
		spinner.Start()
		result, err := load(ctx, sess, progress)
		spinner.Stop()

		if err != nil && len(result.Branches) == 0 && len(result.Records) == 0 {
			ui.PrintError(errW, t.GetMessage("branches_error", 0, nil))
			return ui.Reported(err)
		}

		report(w, errW, t, result, truncated, time.Since(start))
		return err
	}
}

func report(w, errW io.Writer, t *i18n.Translations, result services.LoadResult, truncated []string, elapsed time.Duration) {
	for _, branch := range truncated {
		ui.PrintWarning(errW, t.GetMessage("tree_truncated_warning", 0, map[string]interface{}{
			"Branch": branch,
		}))
	}

	if len(result.Failed) > 0 {
		ui.PrintWarning(errW, t.GetMessage("branches_failed", len(result.Failed), map[string]interface{}{
			"Count":    len(result.Failed),
			"Branches": strings.Join(result.Failed, ", "),
		}))
	}

	if len(result.Records) == 0 {
		ui.PrintInfo(w, t.GetMessage("branches_empty", 0, nil))
		return
	}

	ui.PrintRecords(w, result.Records, t)
	ui.PrintDuration(w, t.GetMessage("branches_done", 0, nil), elapsed)
}
