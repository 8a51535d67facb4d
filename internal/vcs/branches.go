package vcs

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/thomas-vilte/evalusense/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ReferenceBranch holds the instructor's solution and is never evaluated.
const ReferenceBranch = "main"

var collationTag = language.BrazilianPortuguese

// newCollator compares ignoring case and accents. Collators are not safe for
// concurrent use, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(collationTag, collate.Loose)
}

// SortRepositories sorts in place by name, locale-aware and case-insensitive.
func SortRepositories(repos []models.Repository) {
	c := newCollator()
	sort.SliceStable(repos, func(i, j int) bool {
		return c.CompareString(repos[i].Name, repos[j].Name) < 0
	})
}

// SortBranches sorts in place by name, locale-aware and case-insensitive.
func SortBranches(branches []models.BranchRef) {
	c := newCollator()
	sort.SliceStable(branches, func(i, j int) bool {
		return c.CompareString(branches[i].Name, branches[j].Name) < 0
	})
}

// FilterSubmissionBranches drops the reference branch (any case) and returns
// a new slice; the input is left untouched.
func FilterSubmissionBranches(branches []models.BranchRef) []models.BranchRef {
	filtered := make([]models.BranchRef, 0, len(branches))
	for _, b := range branches {
		if strings.EqualFold(b.Name, ReferenceBranch) {
			continue
		}
		filtered = append(filtered, b)
	}
	return filtered
}

// SourceFilter selects the blobs whose path ends in one of the configured
// extensions, ignoring case.
type SourceFilter struct {
	pattern *regexp.Regexp
}

// NewSourceFilter accepts extensions with or without the leading dot.
func NewSourceFilter(extensions []string) (*SourceFilter, error) {
	alternatives := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}
		alternatives = append(alternatives, regexp.QuoteMeta("."+ext))
	}
	if len(alternatives) == 0 {
		return nil, fmt.Errorf("at least one source extension is required")
	}

	re, err := regexp.Compile(`(?i)(?:` + strings.Join(alternatives, "|") + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid source extensions %v: %w", extensions, err)
	}
	return &SourceFilter{pattern: re}, nil
}

// Match reports whether the node is a source-file blob.
func (f *SourceFilter) Match(node models.TreeNode) bool {
	return node.Type == models.TreeNodeBlob && f.pattern.MatchString(node.Path)
}

// Select keeps the matching nodes in their original order.
func (f *SourceFilter) Select(nodes []models.TreeNode) []models.TreeNode {
	selected := make([]models.TreeNode, 0)
	for _, n := range nodes {
		if f.Match(n) {
			selected = append(selected, n)
		}
	}
	return selected
}

// String returns the compiled pattern.
func (f *SourceFilter) String() string {
	return f.pattern.String()
}
