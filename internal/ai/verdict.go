package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// NoResult is stored when the model returns an empty response.
const NoResult = "Nenhum resultado retornado."

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?")
	trailingFence = regexp.MustCompile("```$")
)

// StripCodeFence removes a surrounding markdown fence. Only a leading
// "```" optionally tagged "json" (any case) and a trailing "```" are
// recognised; anything else is returned trimmed and otherwise untouched.
func StripCodeFence(text string) string {
	clean := strings.TrimSpace(text)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = leadingFence.ReplaceAllString(clean, "")
	clean = trailingFence.ReplaceAllString(clean, "")
	return strings.TrimSpace(clean)
}

// NormalizeVerdict converts a model response into the stored result: the
// unfenced JSON in canonical form when it parses, the raw text verbatim
// when it does not.
func NormalizeVerdict(response string) string {
	if strings.TrimSpace(response) == "" {
		return NoResult
	}

	candidate := StripCodeFence(response)
	if !json.Valid([]byte(candidate)) {
		return response
	}

	canonical, err := CanonicalJSON(candidate)
	if err != nil {
		return response
	}
	return canonical
}

// Verdict is the evaluation shape the prompt asks the model for.
type Verdict struct {
	Branch       string          `json:"branch"`
	Score        json.RawMessage `json:"nota"`
	Feedback     string          `json:"feedback"`
	Observations string          `json:"observacoes,omitempty"`
}

// ParseVerdict decodes a normalized result. ok is false when the result is
// not a JSON object.
func ParseVerdict(result string) (Verdict, bool) {
	var v Verdict
	if err := json.Unmarshal([]byte(result), &v); err != nil {
		return Verdict{}, false
	}
	return v, true
}

// ScoreText renders the score whether the model sent it as a string or a
// number.
func (v Verdict) ScoreText() string {
	if len(v.Score) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v.Score, &s); err == nil {
		return s
	}
	return string(v.Score)
}
