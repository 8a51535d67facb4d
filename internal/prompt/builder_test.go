package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/evalusense/internal/models"
)

func sampleFiles() []models.FilePayload {
	return []models.FilePayload{
		{FileName: "Main.java", Decoded: "class Main {}", Encoded: "Y2xhc3MgTWFpbiB7fQ=="},
		{FileName: "Util.java", Decoded: "class Util {}", Encoded: "Y2xhc3MgVXRpbCB7fQ=="},
	}
}

func TestBuild(t *testing.T) {
	t.Run("renders the full document", func(t *testing.T) {
		out, err := Build(Input{
			Repository: "demo",
			Branch:     "alice",
			Files:      sampleFiles()[:1],
			Instructions: models.GradingInstructions{
				Criteria: "compila e passa nos testes",
			},
		})
		require.NoError(t, err)

		expected := "[EvalusenseIA]\n" +
			"ALUNO (branch): alice\n" +
			"REPOSITÓRIO: demo\n" +
			"\n" +
			"Instruções do professor (opcionais):\n" +
			"- Avaliação: (não informado)\n" +
			"- Critérios: compila e passa nos testes\n" +
			"- Exemplo de saída: (não informado)\n" +
			"- Avaliação modelo: (não informado)\n" +
			"\n" +
			"### ARQUIVO: Main.java\n" +
			"(conteúdo em texto)\n" +
			"----------------------------------------\n" +
			"class Main {}\n" +
			"----------------------------------------\n" +
			"\n" +
			"Tarefa da IA:\n" +
			"1) Avalie o código do ALUNO (branch alice) conforme os CRITÉRIOS e, se fornecida, a AVALIAÇÃO MODELO.\n" +
			"2) Responda no seguinte formato:\n" +
			"{\n" +
			"  \"branch\": \"alice\",\n" +
			"  \"nota\": \"<0..10>\",\n" +
			"  \"feedback\": \"<texto objetivo>\",\n" +
			"  \"observacoes\": \"<opcional>\"\n" +
			"}\n"

		assert.Equal(t, expected, out)
	})

	t.Run("is deterministic", func(t *testing.T) {
		in := Input{Repository: "demo", Branch: "bob", Files: sampleFiles()}
		first, err := Build(in)
		require.NoError(t, err)
		second, err := Build(in)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("keeps the input file order", func(t *testing.T) {
		files := sampleFiles()
		forward, err := Build(Input{Repository: "demo", Branch: "bob", Files: files})
		require.NoError(t, err)
		reversed, err := Build(Input{Repository: "demo", Branch: "bob", Files: []models.FilePayload{files[1], files[0]}})
		require.NoError(t, err)

		assert.Less(t, strings.Index(forward, "Main.java"), strings.Index(forward, "Util.java"))
		assert.Less(t, strings.Index(reversed, "Util.java"), strings.Index(reversed, "Main.java"))
		assert.Equal(t, 2, strings.Count(forward, FileMarker))
		assert.Contains(t, forward, "----------------------------------------\n\n### ARQUIVO: Util.java")
	})

	t.Run("embeds base64 when requested", func(t *testing.T) {
		out, err := Build(Input{Repository: "demo", Branch: "bob", Files: sampleFiles(), UseEncoded: true})
		require.NoError(t, err)

		assert.Contains(t, out, "(conteúdo em base64)")
		assert.Contains(t, out, "Y2xhc3MgTWFpbiB7fQ==")
		assert.NotContains(t, out, "class Main {}")
	})

	t.Run("passes content through verbatim", func(t *testing.T) {
		raw := "<html>&amp; {{.Not}} a template\x00"
		out, err := Build(Input{
			Repository: "demo",
			Branch:     "bob",
			Files:      []models.FilePayload{{FileName: "odd.java", Decoded: raw}},
		})
		require.NoError(t, err)
		assert.Contains(t, out, raw)
	})

	t.Run("renders with no files", func(t *testing.T) {
		out, err := Build(Input{Repository: "demo", Branch: "carol"})
		require.NoError(t, err)

		assert.NotContains(t, out, FileMarker)
		assert.Contains(t, out, "- Avaliação modelo: (não informado)\n\n\n\nTarefa da IA:")
	})
}
