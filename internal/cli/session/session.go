// Package session turns command line flags and the configuration into the
// services.Session every command works with.
package session

import (
	"context"
	"os"
	"strings"

	"github.com/thomas-vilte/evalusense/internal/config"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/models"
	"github.com/thomas-vilte/evalusense/internal/prompt"
	"github.com/thomas-vilte/evalusense/internal/services"
	"github.com/urfave/cli/v3"
)

const (
	FlagUser      = "user"
	FlagToken     = "token"
	FlagGeminiKey = "gemini-key"
	FlagBase64    = "base64"

	flagInstructions        = "instructions"
	flagAssessment          = "assessment"
	flagCriteria            = "criteria"
	flagExampleOutput       = "example-output"
	flagReferenceAssessment = "reference-assessment"
	fileSuffix              = "-file"
)

// GlobalFlags are declared on the root command and read by every subcommand.
func GlobalFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: t.GetMessage("flag_verbose", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: t.GetMessage("flag_debug", 0, nil),
		},
		&cli.StringFlag{
			Name:    FlagUser,
			Aliases: []string{"u"},
			Usage:   t.GetMessage("flag_user", 0, nil),
		},
		&cli.StringFlag{
			Name:  FlagToken,
			Usage: t.GetMessage("flag_token", 0, nil),
		},
	}
}

// New builds the session for repo. Flags win over the environment, which
// wins over the configuration file.
func New(cmd *cli.Command, cfg *config.Config, repo string) (services.Session, error) {
	username := strings.TrimSpace(cmd.String(FlagUser))
	if username == "" {
		username = strings.TrimSpace(cfg.Username)
	}
	if username == "" {
		return services.Session{}, domainErrors.ErrUsernameMissing
	}

	token := strings.TrimSpace(cmd.String(FlagToken))
	if token == "" {
		token = cfg.EffectiveGitHubToken()
	}

	return services.Session{
		Username:      username,
		Token:         token,
		Repository:    strings.TrimSpace(repo),
		GenerationKey: cfg.EffectiveGeminiAPIKey(),
		UseEncoded:    cfg.UseBase64,
	}, nil
}

// InstructionFlags are the grading instruction flags shared by the
// commands that build prompts. Every text flag has a -file twin.
func InstructionFlags(t *i18n.Translations, cfg *config.Config) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    flagInstructions,
			Aliases: []string{"i"},
			Usage:   t.GetMessage("flag_instructions", 0, nil),
		},
		&cli.BoolFlag{
			Name:  FlagBase64,
			Value: cfg.UseBase64,
			Usage: t.GetMessage("flag_base64", 0, nil),
		},
	}

	for _, name := range []string{flagAssessment, flagCriteria, flagExampleOutput, flagReferenceAssessment} {
		msgID := "flag_" + strings.ReplaceAll(name, "-", "_")
		flags = append(flags,
			&cli.StringFlag{
				Name:  name,
				Usage: t.GetMessage(msgID, 0, nil),
			},
			&cli.StringFlag{
				Name:  name + fileSuffix,
				Usage: t.GetMessage(msgID+"_file", 0, nil),
			},
		)
	}

	return flags
}

// Instructions reads the YAML instructions file first and then applies the
// individual flags on top. An inline value wins over its -file twin.
func Instructions(ctx context.Context, cmd *cli.Command) (models.GradingInstructions, error) {
	var base models.GradingInstructions
	if path := strings.TrimSpace(cmd.String(flagInstructions)); path != "" {
		loaded, err := prompt.LoadInstructions(ctx, path)
		if err != nil {
			return models.GradingInstructions{}, err
		}
		base = loaded
	}

	var override models.GradingInstructions
	fields := []struct {
		name string
		dst  *string
	}{
		{flagAssessment, &override.Assessment},
		{flagCriteria, &override.Criteria},
		{flagExampleOutput, &override.ExampleOutput},
		{flagReferenceAssessment, &override.ReferenceAssessment},
	}
	for _, f := range fields {
		value, err := textOrFile(cmd, f.name)
		if err != nil {
			return models.GradingInstructions{}, err
		}
		*f.dst = value
	}

	return prompt.Merge(base, override), nil
}

func textOrFile(cmd *cli.Command, name string) (string, error) {
	if value := strings.TrimSpace(cmd.String(name)); value != "" {
		return value, nil
	}

	path := strings.TrimSpace(cmd.String(name + fileSuffix))
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", domainErrors.NewAppError(domainErrors.TypeConfiguration, "failed to read instructions file", err).
			WithContext("flag", name+fileSuffix).
			WithContext("path", path)
	}
	return strings.TrimSpace(string(data)), nil
}
