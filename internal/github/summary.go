package github

import (
	"fmt"
	"os"
	"strings"
)

// DocStatus represents the processing status of a document.
type DocStatus string

const (
	StatusUpdated   DocStatus = "updated"
	StatusUnchanged DocStatus = "unchanged"
	StatusSkipped   DocStatus = "skipped"
	StatusError     DocStatus = "error"
)

// DocResult holds the result of processing a single document.
type DocResult struct {
	Path       string
	Status     DocStatus
	Options    int    // options written into the managed section
	SkipReason string // reason if skipped
	Error      string // error message if failed
}

// UpdateSummary holds the complete summary of a run.
type UpdateSummary struct {
	Docs        []DocResult
	Options     int // options extracted from the source tree
	Files       int // source files scanned
	Total       int
	Updated     int
	Unchanged   int
	Skipped     int
	Errors      int
	CheckResult *CheckResult // optional check results
}

// NewUpdateSummary creates a new UpdateSummary.
func NewUpdateSummary() *UpdateSummary {
	return &UpdateSummary{
		Docs: make([]DocResult, 0),
	}
}

// AddDoc adds a document result to the summary.
func (s *UpdateSummary) AddDoc(result DocResult) {
	s.Docs = append(s.Docs, result)
	s.Total++

	switch result.Status {
	case StatusUpdated:
		s.Updated++
	case StatusUnchanged:
		s.Unchanged++
	case StatusSkipped:
		s.Skipped++
	case StatusError:
		s.Errors++
	}
}

// SetCheckResult sets the check results for the summary.
func (s *UpdateSummary) SetCheckResult(result *CheckResult) {
	s.CheckResult = result
}

// WriteGitHubSummary appends the summary to GITHUB_STEP_SUMMARY when running
// in GitHub Actions.
func (s *UpdateSummary) WriteGitHubSummary() error {
	if os.Getenv("GITHUB_ACTIONS") != "true" {
		return nil
	}

	summaryFile := os.Getenv("GITHUB_STEP_SUMMARY")
	if summaryFile == "" {
		return nil
	}

	f, err := os.OpenFile(summaryFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening summary file: %w", err)
	}
	defer f.Close()

	_, err = f.WriteString(s.Markdown())
	return err
}

// Markdown renders the summary as GitHub-flavored Markdown.
func (s *UpdateSummary) Markdown() string {
	var sb strings.Builder

	sb.WriteString("## 📚 Nix Options Documentation\n\n")

	sb.WriteString("### Statistics\n\n")
	sb.WriteString("| Metric | Count |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Source Files | %d |\n", s.Files)
	fmt.Fprintf(&sb, "| Options | %d |\n", s.Options)
	if s.Total > 0 {
		fmt.Fprintf(&sb, "| Documents Processed | %d |\n", s.Total)
		fmt.Fprintf(&sb, "| ✅ Updated | %d |\n", s.Updated)
		fmt.Fprintf(&sb, "| ➖ Unchanged | %d |\n", s.Unchanged)
		fmt.Fprintf(&sb, "| ⏭️ Skipped | %d |\n", s.Skipped)
		fmt.Fprintf(&sb, "| ❌ Errors | %d |\n", s.Errors)
	}
	sb.WriteString("\n")

	if updated := s.docsByStatus(StatusUpdated); len(updated) > 0 {
		collapse := len(updated) > 10
		if collapse {
			sb.WriteString("<details>\n")
			fmt.Fprintf(&sb, "<summary><strong>Updated Documents (%d)</strong></summary>\n\n", len(updated))
		} else {
			fmt.Fprintf(&sb, "### Updated Documents (%d)\n\n", len(updated))
		}
		sb.WriteString("| Document | Options |\n")
		sb.WriteString("|----------|---------|\n")
		for _, d := range updated {
			fmt.Fprintf(&sb, "| %s | %d |\n", d.Path, d.Options)
		}
		sb.WriteString("\n")
		if collapse {
			sb.WriteString("</details>\n\n")
		}
	}

	if skipped := s.docsByStatus(StatusSkipped); len(skipped) > 0 {
		sb.WriteString("<details>\n")
		fmt.Fprintf(&sb, "<summary><strong>Skipped Documents (%d)</strong></summary>\n\n", len(skipped))
		sb.WriteString("| Document | Reason |\n")
		sb.WriteString("|----------|--------|\n")
		for _, d := range skipped {
			fmt.Fprintf(&sb, "| %s | %s |\n", d.Path, d.SkipReason)
		}
		sb.WriteString("\n</details>\n\n")
	}

	if failed := s.docsByStatus(StatusError); len(failed) > 0 {
		fmt.Fprintf(&sb, "### ❌ Errors (%d)\n\n", len(failed))
		sb.WriteString("| Document | Error |\n")
		sb.WriteString("|----------|-------|\n")
		for _, d := range failed {
			fmt.Fprintf(&sb, "| %s | %s |\n", d.Path, strings.ReplaceAll(d.Error, "|", "\\|"))
		}
		sb.WriteString("\n")
	}

	if s.CheckResult != nil && s.CheckResult.HasIssues() {
		sb.WriteString("### 🔍 Coverage Check Results\n\n")
		writeDetails(&sb, "Undocumented Options", "options", s.CheckResult.Undocumented)
		writeDetails(&sb, "Untyped Options", "options", s.CheckResult.Untyped)
		writeDetails(&sb, "Parse Failures", "files", s.CheckResult.ParseFailures)
		writeDetails(&sb, "Missing Options Sections", "docs", s.CheckResult.MissingSections)
	}

	return sb.String()
}

func writeDetails(sb *strings.Builder, title, noun string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "**%s:** %d %s\n", title, len(items), noun)
	fmt.Fprintf(sb, "<details>\n<summary>Show %s</summary>\n\n", noun)
	for _, item := range items {
		fmt.Fprintf(sb, "- `%s`\n", item)
	}
	sb.WriteString("\n</details>\n\n")
}

// docsByStatus returns all documents with the given status.
func (s *UpdateSummary) docsByStatus(status DocStatus) []DocResult {
	var results []DocResult
	for _, d := range s.Docs {
		if d.Status == status {
			results = append(results, d)
		}
	}
	return results
}
