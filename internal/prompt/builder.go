// Package prompt assembles the evaluation prompt sent to the AI for a
// student's branch. Rendering is pure: the same input always yields the same
// bytes, and files are emitted in the order they are given.
package prompt

import (
	"bytes"
	"text/template"

	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/models"
)

const (
	// NotProvided replaces any grading instruction left empty.
	NotProvided = "(não informado)"

	textLabel   = "(conteúdo em texto)"
	base64Label = "(conteúdo em base64)"
	separator   = "----------------------------------------"

	// FileMarker prefixes the header line of every file block.
	FileMarker = "### ARQUIVO: "
)

const evaluationTemplate = `[EvalusenseIA]
ALUNO (branch): {{.Branch}}
REPOSITÓRIO: {{.Repository}}

Instruções do professor (opcionais):
- Avaliação: {{or .Instructions.Assessment .Placeholder}}
- Critérios: {{or .Instructions.Criteria .Placeholder}}
- Exemplo de saída: {{or .Instructions.ExampleOutput .Placeholder}}
- Avaliação modelo: {{or .Instructions.ReferenceAssessment .Placeholder}}

{{range $i, $f := .Files}}{{if $i}}

{{end}}` + FileMarker + `{{$f.Name}}
{{$.ContentLabel}}
` + separator + `
{{$f.Content}}
` + separator + `{{end}}

Tarefa da IA:
1) Avalie o código do ALUNO (branch {{.Branch}}) conforme os CRITÉRIOS e, se fornecida, a AVALIAÇÃO MODELO.
2) Responda no seguinte formato:
{
  "branch": "{{.Branch}}",
  "nota": "<0..10>",
  "feedback": "<texto objetivo>",
  "observacoes": "<opcional>"
}
`

var tmpl = template.Must(template.New("evaluationPrompt").Parse(evaluationTemplate))

// Input holds everything a prompt is built from.
type Input struct {
	Repository   string
	Branch       string
	Files        []models.FilePayload
	Instructions models.GradingInstructions
	// UseEncoded embeds the raw base64 content instead of the decoded text.
	UseEncoded bool
}

type fileView struct {
	Name    string
	Content string
}

type templateData struct {
	Repository   string
	Branch       string
	Instructions models.GradingInstructions
	Placeholder  string
	ContentLabel string
	Files        []fileView
}

// Build renders the evaluation prompt for one branch.
func Build(input Input) (string, error) {
	data := templateData{
		Repository:   input.Repository,
		Branch:       input.Branch,
		Instructions: input.Instructions,
		Placeholder:  NotProvided,
		ContentLabel: textLabel,
		Files:        make([]fileView, 0, len(input.Files)),
	}
	if input.UseEncoded {
		data.ContentLabel = base64Label
	}

	for _, f := range input.Files {
		content := f.Decoded
		if input.UseEncoded {
			content = f.Encoded
		}
		data.Files = append(data.Files, fileView{Name: f.FileName, Content: content})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", domainErrors.ErrPromptRender.
			WithContext("branch", input.Branch).
			WithError(err)
	}

	return buf.String(), nil
}
