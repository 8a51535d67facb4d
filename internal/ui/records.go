package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/thomas-vilte/evalusense/internal/ai"
	"github.com/thomas-vilte/evalusense/internal/i18n"
	"github.com/thomas-vilte/evalusense/internal/models"
)

// PrintRecords renders the records as an aligned table. Colors are left out
// because escape codes break the column widths.
func PrintRecords(w io.Writer, records []models.BranchPromptRecord, t *i18n.Translations) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		t.GetMessage("table_branch", 0, nil),
		t.GetMessage("table_files", 0, nil),
		t.GetMessage("table_generated", 0, nil),
		t.GetMessage("table_status", 0, nil))

	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Branch, r.FileCount, r.GeneratedAt, recordStatus(r, t))
	}
	_ = tw.Flush()
}

func recordStatus(r models.BranchPromptRecord, t *i18n.Translations) string {
	var status string
	switch {
	case r.Running:
		status = t.GetMessage("status_running", 0, nil)
	case r.HasResult():
		status = t.GetMessage("status_done", 0, nil)
		if v, ok := ai.ParseVerdict(r.Result); ok && v.ScoreText() != "" {
			status += " (" + v.ScoreText() + ")"
		}
	default:
		status = t.GetMessage("status_pending", 0, nil)
	}

	if r.Truncated {
		status += ", " + t.GetMessage("status_truncated", 0, nil)
	}
	return status
}

// PrintVerdict shows an evaluation result. Results that parse as a verdict
// are summarised field by field; anything else is printed as is.
func PrintVerdict(w io.Writer, branch, result string, t *i18n.Translations) {
	PrintSectionBanner(w, branch)

	v, ok := ai.ParseVerdict(result)
	if !ok {
		_, _ = fmt.Fprintln(w, result)
		return
	}

	if score := v.ScoreText(); score != "" {
		PrintKeyValue(w, t.GetMessage("verdict_score", 0, nil), score)
	}
	if v.Feedback != "" {
		PrintKeyValue(w, t.GetMessage("verdict_feedback", 0, nil), strings.TrimSpace(v.Feedback))
	}
	if v.Observations != "" {
		PrintKeyValue(w, t.GetMessage("verdict_observations", 0, nil), strings.TrimSpace(v.Observations))
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, Dim.Sprint(result))
}
