package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultIssueLabel labels the tracking issue managed by the check command.
const DefaultIssueLabel = "nix-options-doc"

// CheckResult holds the results of coverage checks.
type CheckResult struct {
	Undocumented    []string // Options without a description
	Untyped         []string // Options without a declared type
	ParseFailures   []string // Files that could not be parsed, as "file: reason"
	MissingSections []string // Docs without the managed options section
}

// HasIssues returns true if there are any problems.
func (r *CheckResult) HasIssues() bool {
	return r.TotalIssues() > 0
}

// TotalIssues returns the total number of issues.
func (r *CheckResult) TotalIssues() int {
	return len(r.Undocumented) + len(r.Untyped) + len(r.ParseFailures) + len(r.MissingSections)
}

// Runner executes a gh subcommand and returns its stdout.
type Runner func(ctx context.Context, args ...string) (string, error)

// IssueManager handles GitHub issue creation and management.
type IssueManager struct {
	repo        string // Repository in format "owner/repo"
	workflowURL string // URL to the workflow run
	branch      string // Branch used for blob links
	run         Runner
	logger      *log.Logger
}

// NewIssueManager creates a new GitHub issue manager backed by the gh CLI.
func NewIssueManager(repo, workflowURL string, logger *log.Logger) *IssueManager {
	if logger == nil {
		logger = log.Default()
	}
	return &IssueManager{
		repo:        repo,
		workflowURL: workflowURL,
		branch:      "main",
		run:         runGH,
		logger:      logger,
	}
}

// WithRunner replaces the gh invocation, mainly for tests.
func (m *IssueManager) WithRunner(run Runner) *IssueManager {
	m.run = run
	return m
}

// WithBranch sets the branch used when linking to files.
func (m *IssueManager) WithBranch(branch string) *IssueManager {
	if branch != "" {
		m.branch = branch
	}
	return m
}

// GenerateIssueBody generates the markdown body for a GitHub issue.
func (m *IssueManager) GenerateIssueBody(result *CheckResult) string {
	var builder strings.Builder

	builder.WriteString("## 📝 Option Documentation Status\n\n")

	writeList(&builder, "Undocumented Options", "Options declared without a description:", result.Undocumented)
	writeList(&builder, "Untyped Options", "Options declared without a type:", result.Untyped)
	writeList(&builder, "Parse Failures", "Files that could not be parsed:", result.ParseFailures)

	if len(result.MissingSections) > 0 {
		fmt.Fprintf(&builder, "### Missing Options Sections (%d)\n", len(result.MissingSections))
		builder.WriteString("Documentation pages without the managed options section:\n\n")
		for _, doc := range result.MissingSections {
			link := fmt.Sprintf("https://github.com/%s/blob/%s/%s", m.repo, m.branch, doc)
			fmt.Fprintf(&builder, "- [ ] [%s](%s)\n", extractDocName(doc), link)
		}
		builder.WriteString("\n")
	}

	builder.WriteString("---\n")
	if m.workflowURL != "" {
		fmt.Fprintf(&builder, "**Workflow run:** [link](%s)\n", m.workflowURL)
	}
	builder.WriteString("*This issue is automatically managed by nix-options-doc*\n")

	return builder.String()
}

func writeList(b *strings.Builder, title, intro string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s (%d)\n", title, len(items))
	b.WriteString(intro + "\n\n")
	for _, item := range items {
		fmt.Fprintf(b, "- [ ] `%s`\n", item)
	}
	b.WriteString("\n")
}

// GenerateIssueTitle generates the issue title.
func (m *IssueManager) GenerateIssueTitle(result *CheckResult) string {
	return fmt.Sprintf("[Nix Options] %d documentation issue(s) found", result.TotalIssues())
}

// OutputGitHubActions writes step outputs for subsequent workflow steps.
// It does nothing outside GitHub Actions.
func (m *IssueManager) OutputGitHubActions(result *CheckResult) error {
	if os.Getenv("GITHUB_ACTIONS") != "true" {
		return nil
	}
	outputFile := os.Getenv("GITHUB_OUTPUT")
	if outputFile == "" {
		return nil
	}

	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening GITHUB_OUTPUT: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	fmt.Fprintf(&sb, "has_issues=%t\n", result.HasIssues())
	fmt.Fprintf(&sb, "total_issues=%d\n", result.TotalIssues())
	fmt.Fprintf(&sb, "undocumented=%d\n", len(result.Undocumented))
	fmt.Fprintf(&sb, "untyped=%d\n", len(result.Untyped))
	fmt.Fprintf(&sb, "parse_failures=%d\n", len(result.ParseFailures))
	fmt.Fprintf(&sb, "missing_sections=%d\n", len(result.MissingSections))

	// Multiline values use the heredoc delimiter syntax.
	if result.HasIssues() {
		fmt.Fprintf(&sb, "issue_title=%s\n", m.GenerateIssueTitle(result))
		fmt.Fprintf(&sb, "issue_body<<EOF\n%s\nEOF\n", m.GenerateIssueBody(result))
	}

	_, err = f.WriteString(sb.String())
	return err
}

// extractDocName extracts a clean document name from a path.
func extractDocName(path string) string {
	parts := strings.Split(path, "/")
	return strings.TrimSuffix(parts[len(parts)-1], ".md")
}

// GetWorkflowURL attempts to construct the workflow URL from environment variables.
func GetWorkflowURL() string {
	serverURL := os.Getenv("GITHUB_SERVER_URL")
	repo := os.Getenv("GITHUB_REPOSITORY")
	runID := os.Getenv("GITHUB_RUN_ID")

	if serverURL == "" || repo == "" || runID == "" {
		return ""
	}

	return fmt.Sprintf("%s/%s/actions/runs/%s", serverURL, repo, runID)
}

// GetRepository returns the repository from environment variables.
func GetRepository() string {
	return os.Getenv("GITHUB_REPOSITORY")
}

// ghIssue represents a GitHub issue from gh CLI JSON output.
type ghIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
}

// Action reports what ManageIssue did.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionClosed  Action = "closed"
	ActionNone    Action = "none"
)

// ManageIssue creates, updates, or closes the tracking issue based on check
// results. The default runner needs an installed and authenticated gh CLI.
func (m *IssueManager) ManageIssue(ctx context.Context, result *CheckResult, label string) (Action, int, error) {
	existing, err := m.findExistingIssue(ctx, label)
	if err != nil {
		return ActionNone, 0, fmt.Errorf("finding existing issue: %w", err)
	}

	if !result.HasIssues() {
		if existing == nil || existing.State == "CLOSED" {
			m.logger.Info("No issues found and no open tracking issue exists")
			return ActionNone, 0, nil
		}
		num := strconv.Itoa(existing.Number)
		if _, err := m.run(ctx, "issue", "unpin", "--repo", m.repo, num); err != nil {
			m.logger.Warn("Could not unpin issue", "number", existing.Number, "err", err)
		}
		if _, err := m.run(ctx, "issue", "comment", "--repo", m.repo, num,
			"--body", "✅ All option documentation checks passed! Closing this issue."); err != nil {
			m.logger.Warn("Could not add closing comment", "number", existing.Number, "err", err)
		}
		if _, err := m.run(ctx, "issue", "close", "--repo", m.repo, num); err != nil {
			return ActionNone, 0, fmt.Errorf("closing issue: %w", err)
		}
		m.logger.Info("Closed issue", "number", existing.Number)
		return ActionClosed, existing.Number, nil
	}

	title := m.GenerateIssueTitle(result)
	body := m.GenerateIssueBody(result)

	if existing != nil {
		num := strconv.Itoa(existing.Number)
		if _, err := m.run(ctx, "issue", "edit", "--repo", m.repo, num, "--title", title, "--body", body); err != nil {
			return ActionNone, 0, fmt.Errorf("updating issue: %w", err)
		}
		if existing.State == "CLOSED" {
			if _, err := m.run(ctx, "issue", "reopen", "--repo", m.repo, num); err != nil {
				return ActionNone, 0, fmt.Errorf("reopening issue: %w", err)
			}
		}
		m.pin(ctx, existing.Number)
		m.logger.Info("Updated issue", "number", existing.Number)
		return ActionUpdated, existing.Number, nil
	}

	out, err := m.run(ctx, "issue", "create", "--repo", m.repo, "--title", title, "--body", body, "--label", label)
	if err != nil {
		return ActionNone, 0, fmt.Errorf("creating issue: %w", err)
	}
	num, err := parseIssueNumber(out)
	if err != nil {
		return ActionNone, 0, err
	}
	m.pin(ctx, num)
	m.logger.Info("Created issue", "number", num)
	return ActionCreated, num, nil
}

func (m *IssueManager) pin(ctx context.Context, number int) {
	// Pinning fails when already pinned or without permission.
	if _, err := m.run(ctx, "issue", "pin", "--repo", m.repo, strconv.Itoa(number)); err != nil {
		m.logger.Debug("Could not pin issue", "number", number, "err", err)
	}
}

// findExistingIssue finds an existing issue with the given label.
func (m *IssueManager) findExistingIssue(ctx context.Context, label string) (*ghIssue, error) {
	out, err := m.run(ctx, "issue", "list",
		"--repo", m.repo,
		"--label", label,
		"--state", "all",
		"--limit", "1",
		"--json", "number,title,state")
	if err != nil {
		return nil, err
	}

	var issues []ghIssue
	if err := json.Unmarshal([]byte(out), &issues); err != nil {
		return nil, fmt.Errorf("parsing issue list: %w", err)
	}
	if len(issues) == 0 {
		return nil, nil
	}
	return &issues[0], nil
}

// parseIssueNumber reads the number from the issue URL printed by
// "gh issue create", e.g. "https://github.com/owner/repo/issues/123".
func parseIssueNumber(output string) (int, error) {
	output = strings.TrimSpace(output)
	parts := strings.Split(output, "/")
	if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("could not parse issue number from: %s", output)
}

func runGH(ctx context.Context, args ...string) (string, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return "", fmt.Errorf("gh CLI not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, "gh", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}
