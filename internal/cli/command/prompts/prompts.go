package prompts

import (
	"context"
	"fmt"
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

type recordReader interface {
	CachedRecords(session services.Session) ([]models.BranchPromptRecord, error)
}

type PromptsCommandFactory struct {
	service recordReader
}

func NewPromptsCommandFactory(service recordReader) *PromptsCommandFactory {
	return &PromptsCommandFactory{
		service: service,
	}
}

func (f *PromptsCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "prompts",
		Aliases:       []string{"p"},
		Usage:         t.GetMessage("prompts_usage", 0, nil),
		ArgsUsage:     "<repo> [branch]",
		Flags:         f.createFlags(t),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.createAction(t, cfg),
	}
}

func (f *PromptsCommandFactory) createFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "export",
			Aliases: []string{"o"},
			Usage:   t.GetMessage("flag_export", 0, nil),
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   FormatText,
			Usage:   t.GetMessage("flag_format", 0, nil),
		},
	}
}

func (f *PromptsCommandFactory) createAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		w := command.Root().Writer

		repo := strings.TrimSpace(command.Args().First())
		if repo == "" {
			return domainErrors.ErrRepositoryMissing
		}
		branch := strings.TrimSpace(command.Args().Get(1))

		format := strings.ToLower(command.String("format"))
		if !IsSupportedFormat(format) {
			return fmt.Errorf("%s", t.GetMessage("invalid_format", 0, map[string]interface{}{
				"Format": format,
			}))
		}

		sess, err := session.New(command, cfg, repo)
		if err != nil {
			return err
		}

		records, err := f.service.CachedRecords(sess)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			ui.PrintInfo(w, t.GetMessage("prompts_empty", 0, map[string]interface{}{
				"Repo": repo,
			}))
			return nil
		}

		if branch != "" {
			record, ok := find(records, branch)
			if !ok {
				return domainErrors.ErrRecordNotFound.
					WithContext("branch", branch).
					WithContext("repo", repo)
			}
			records = []models.BranchPromptRecord{record}
		}

		if dir := strings.TrimSpace(command.String("export")); dir != "" {
			paths, err := Export(dir, format, records)
			if err != nil {
				return err
			}
			ui.PrintSuccess(w, t.GetMessage("prompts_exported", len(paths), map[string]interface{}{
				"Count": len(paths),
				"Dir":   dir,
			}))
			return nil
		}

		if branch == "" {
			ui.PrintRecords(w, records, t)
			return nil
		}

		record := records[0]
		_, _ = fmt.Fprintln(w, record.Prompt)
		if record.HasResult() {
			ui.PrintVerdict(w, record.Branch, record.Result, t)
		}
		return nil
	}
}

func find(records []models.BranchPromptRecord, branch string) (models.BranchPromptRecord, bool) {
	for _, r := range records {
		if r.Branch == branch {
			return r, true
		}
	}
	return models.BranchPromptRecord{}, false
}
