package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/saltyorg/nix-options-doc/internal/collect"
	"github.com/saltyorg/nix-options-doc/internal/config"
	"github.com/saltyorg/nix-options-doc/internal/github"
	"github.com/saltyorg/nix-options-doc/internal/parser"
)

var checkOpts struct {
	sourceFlags
	manageIssue bool
	issueLabel  string
	strict      bool
}

var checkCmd = &cobra.Command{
	Use:   "check [doc.md|dir]...",
	Short: "Run documentation coverage checks",
	Long: `Run documentation coverage checks and optionally manage a GitHub issue.

Checks for:
  - Options without a description
  - Options without a declared type
  - Source files that failed to parse
  - Documents without the managed options section

Use --manage-issue to automatically create, update, or close a GitHub issue
based on the check results. This requires the gh CLI to be installed and
authenticated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := checkOpts.apply(cmd, cfg); err != nil {
			return err
		}
		if cmd.Flags().Changed("issue-label") {
			cfg.Check.IssueLabel = checkOpts.issueLabel
		}
		return runChecks(cmd, cfg, args)
	},
}

func init() {
	checkOpts.register(checkCmd)
	flags := checkCmd.Flags()
	flags.BoolVar(&checkOpts.manageIssue, "manage-issue", false, "create/update/close GitHub issue based on results (requires gh CLI)")
	flags.StringVar(&checkOpts.issueLabel, "issue-label", github.DefaultIssueLabel, "label to use for the managed GitHub issue")
	flags.BoolVar(&checkOpts.strict, "strict", false, "exit non-zero when any issue is found")
	rootCmd.AddCommand(checkCmd)
}

func runChecks(cmd *cobra.Command, cfg *config.Config, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	manager := newDocManager(cfg)
	targets, err := docTargets(manager, args, cfg.Docs.Paths)
	if err != nil {
		return err
	}

	var progress = cmd.ErrOrStderr()
	if !checkOpts.progress {
		progress = nil
	}
	extraction, err := extract(cmd.Context(), cfg, logger, progress)
	if err != nil {
		return err
	}

	result := buildCheckResult(cfg, extraction, missingSections(manager, targets, logger))
	printCheckResults(cmd.OutOrStdout(), result)

	issueManager := github.NewIssueManager(github.GetRepository(), github.GetWorkflowURL(), logger).
		WithBranch(cfg.Git.Branch)
	if err := issueManager.OutputGitHubActions(result); err != nil {
		logger.Warn("Could not write GITHUB_OUTPUT", "err", err)
	}

	summary := github.NewUpdateSummary()
	summary.Files = len(extraction.Files)
	summary.Options = len(extraction.Options)
	summary.SetCheckResult(result)
	if err := summary.WriteGitHubSummary(); err != nil {
		logger.Warn("Could not write step summary", "err", err)
	}

	if checkOpts.manageIssue {
		if _, _, err := issueManager.ManageIssue(cmd.Context(), result, cfg.Check.IssueLabel); err != nil {
			return fmt.Errorf("managing GitHub issue: %w", err)
		}
	}

	if checkOpts.strict && result.HasIssues() {
		return &ExitError{Code: 1, Err: fmt.Errorf("found %d issue(s)", result.TotalIssues())}
	}
	return nil
}

// buildCheckResult gathers coverage problems among the options selected by
// the configured filter.
func buildCheckResult(cfg *config.Config, extraction *collect.Result, missing []string) *github.CheckResult {
	result := &github.CheckResult{MissingSections: missing}
	for _, opt := range parser.FilterOptions(extraction.Options, baseFilter(cfg)) {
		if cfg.Check.RequireDescription && !opt.HasDescription() {
			result.Undocumented = append(result.Undocumented, opt.Name)
		}
		if cfg.Check.RequireType && !opt.Type.IsDeclared() {
			result.Untyped = append(result.Untyped, opt.Name)
		}
	}
	for _, s := range extraction.Skipped {
		result.ParseFailures = append(result.ParseFailures, fmt.Sprintf("%s: %v", s.File, s.Err))
	}
	return result
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	passStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// printCheckResults prints the check results in a formatted way.
func printCheckResults(w io.Writer, result *github.CheckResult) {
	var sb strings.Builder

	section := func(title, hint string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", title, len(items))) + "\n")
		sb.WriteString(hint + "\n")
		for _, item := range items {
			sb.WriteString(itemStyle.Render("  - "+item) + "\n")
		}
		sb.WriteString("\n")
	}

	section("Undocumented Options", "Options declared without a description:", result.Undocumented)
	section("Untyped Options", "Options declared without a type:", result.Untyped)
	section("Parse Failures", "Files that could not be parsed:", result.ParseFailures)
	section("Missing Options Sections", "Documents without the managed options section:", result.MissingSections)

	if result.HasIssues() {
		sb.WriteString(failStyle.Render(fmt.Sprintf("✗ Found %d issue(s)", result.TotalIssues())) + "\n")
	} else {
		sb.WriteString(passStyle.Render("✓ All checks passed!") + "\n")
	}
	fmt.Fprint(w, sb.String())
}
