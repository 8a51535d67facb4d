package completion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/ui"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `#! /bin/bash

_evalusense_bash_autocomplete() {
  if [[ "${COMP_WORDS[0]}" != "source" ]]; then
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    local cmd_context=("${COMP_WORDS[@]:0:$COMP_CWORD}")
    opts=$( "${cmd_context[@]}" --generate-shell-completion )
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
  fi
}

complete -o bashdefault -o default -o nospace -F _evalusense_bash_autocomplete evalusense
`

const zshCompletionScript = `#compdef evalusense

_evalusense() {
  local -a opts
  local cmd_context=("${(@)words[1,$CURRENT-1]}")
  opts=("${(@f)$("${cmd_context[@]}" --generate-shell-completion)}")
  _describe 'values' opts
}

compdef _evalusense evalusense
`

const installMarker = "# evalusense shell completion"

const installInfo = `
` + installMarker + `
if command -v evalusense >/dev/null 2>&1; then
	source <(evalusense completion %s)
fi
`

func NewCompletionCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "completion",
		Usage: t.GetMessage("completion_usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "bash",
				Usage: t.GetMessage("completion_bash_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, _ = fmt.Fprint(cmd.Root().Writer, bashCompletionScript)
					return nil
				},
			},
			{
				Name:  "zsh",
				Usage: t.GetMessage("completion_zsh_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, _ = fmt.Fprint(cmd.Root().Writer, zshCompletionScript)
					return nil
				},
			},
			{
				Name:  "install",
				Usage: t.GetMessage("completion_install_usage", 0, nil),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					home, err := os.UserHomeDir()
					if err != nil {
						return fmt.Errorf("%s: %w", t.GetMessage("completion_error_home_dir", 0, nil), err)
					}
					configFile, shellName, err := shellConfig(os.Getenv("SHELL"), home)
					if err != nil {
						return fmt.Errorf("%s", t.GetMessage("completion_error_unsupported_shell", 0, map[string]interface{}{
							"Shell": os.Getenv("SHELL"),
						}))
					}

					installed, err := install(configFile, shellName)
					if err != nil {
						return fmt.Errorf("%s: %w", t.GetMessage("completion_error_write_config", 0, nil), err)
					}

					w := cmd.Root().Writer
					msgID := "completion_installed_success"
					if !installed {
						msgID = "completion_already_installed"
					}
					ui.PrintSuccess(w, t.GetMessage(msgID, 0, map[string]interface{}{"File": configFile}))
					ui.PrintInfo(w, t.GetMessage("completion_restart_shell", 0, nil))
					_, _ = fmt.Fprintf(w, "  source %s\n", configFile)
					return nil
				},
			},
		},
	}
}

func shellConfig(shell, home string) (string, string, error) {
	switch {
	case strings.Contains(shell, "zsh"):
		return filepath.Join(home, ".zshrc"), "zsh", nil
	case strings.Contains(shell, "bash"):
		return filepath.Join(home, ".bashrc"), "bash", nil
	default:
		return "", "", fmt.Errorf("unsupported shell: %q", shell)
	}
}

// install appends the completion snippet to configFile. It reports false
// when the snippet is already there.
func install(configFile, shellName string) (bool, error) {
	content, err := os.ReadFile(configFile)
	if err == nil && strings.Contains(string(content), installMarker) {
		return false, nil
	}

	f, err := os.OpenFile(configFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := fmt.Fprintf(f, installInfo, shellName); err != nil {
		return false, err
	}
	return true, nil
}
