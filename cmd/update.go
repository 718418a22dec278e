package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saltyorg/nix-options-doc/internal/collect"
	"github.com/saltyorg/nix-options-doc/internal/config"
	"github.com/saltyorg/nix-options-doc/internal/docs"
	"github.com/saltyorg/nix-options-doc/internal/github"
	"github.com/saltyorg/nix-options-doc/internal/render"
)

var updateOpts struct {
	sourceFlags
	dryRun       bool
	failOnChange bool
	runCheck     bool
	insert       bool
}

// noSectionReason is the skip reason for documents without the managed
// options section.
const noSectionReason = "no managed options section (use --insert to add one)"

var updateCmd = &cobra.Command{
	Use:   "update [doc.md|dir]...",
	Short: "Update documentation files in place",
	Long: `Render the extracted options into the managed section of each document.

The section is delimited by <!-- BEGIN NIX OPTIONS --> and
<!-- END NIX OPTIONS --> (the name is configurable). A document's YAML
frontmatter can narrow what it receives:

  nix_options_doc:
    disabled: false
    prefix: services.foo
    strip_prefix: services
    hide: [services.foo.internal]
    layout: table   # compact table instead of full entries

Without arguments the docs.paths entries from the config file are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := updateOpts.apply(cmd, cfg); err != nil {
			return err
		}
		return runUpdate(cmd, cfg, args)
	},
}

func init() {
	updateOpts.register(updateCmd)
	flags := updateCmd.Flags()
	flags.BoolVar(&updateOpts.dryRun, "dry-run", false, "report what would change without writing")
	flags.BoolVar(&updateOpts.failOnChange, "fail-on-change", false, "exit with status 2 when any document is out of date")
	flags.BoolVar(&updateOpts.runCheck, "check", false, "include coverage check results in the summary")
	flags.BoolVar(&updateOpts.insert, "insert", false, "append a managed section to documents that lack one")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, cfg *config.Config, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	manager := newDocManager(cfg)
	targets, err := docTargets(manager, args, cfg.Docs.Paths)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return errors.New("no documents to update: pass paths or set docs.paths in the config file")
	}

	renderer, err := render.New(render.Config{Fs: appFs})
	if err != nil {
		return err
	}

	var progress = cmd.ErrOrStderr()
	if !updateOpts.progress {
		progress = nil
	}
	result, err := extract(cmd.Context(), cfg, logger, progress)
	if err != nil {
		return err
	}

	summary := github.NewUpdateSummary()
	summary.Files = len(result.Files)
	summary.Options = len(result.Options)

	for _, path := range targets {
		res := updateDocument(cfg, manager, renderer, result, path)
		switch res.Status {
		case github.StatusUpdated:
			logger.Info("Updated", "doc", path, "options", res.Options)
		case github.StatusSkipped:
			logger.Debug("Skipped", "doc", path, "reason", res.SkipReason)
		case github.StatusError:
			logger.Error("Failed", "doc", path, "err", res.Error)
		default:
			logger.Debug("Unchanged", "doc", path)
		}
		summary.AddDoc(res)
	}

	if updateOpts.runCheck {
		summary.SetCheckResult(buildCheckResult(cfg, result, missingSections(manager, targets, logger)))
	}
	if err := summary.WriteGitHubSummary(); err != nil {
		logger.Warn("Could not write step summary", "err", err)
	}

	verb := "Updated"
	if updateOpts.dryRun {
		verb = "Would update"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d, unchanged %d, skipped %d, errors %d\n",
		verb, summary.Updated, summary.Unchanged, summary.Skipped, summary.Errors)

	if summary.Errors > 0 {
		return fmt.Errorf("%d document(s) failed to update", summary.Errors)
	}
	if updateOpts.failOnChange && summary.Updated > 0 {
		return &ExitError{Code: 2, Err: fmt.Errorf("%d document(s) out of date", summary.Updated)}
	}
	return nil
}

func updateDocument(cfg *config.Config, manager *docs.Manager, renderer *render.Renderer, result *collect.Result, path string) github.DocResult {
	res := github.DocResult{Path: path}
	fail := func(err error) github.DocResult {
		res.Status = github.StatusError
		res.Error = err.Error()
		return res
	}

	doc, err := manager.LoadDocument(path)
	if err != nil {
		return fail(err)
	}
	if manager.IsAutomationDisabled(doc) {
		res.Status = github.StatusSkipped
		res.SkipReason = "disabled in frontmatter"
		return res
	}
	insert := !manager.HasOptionsSection(doc)
	if insert && !updateOpts.insert {
		res.Status = github.StatusSkipped
		res.SkipReason = noSectionReason
		return res
	}

	options := optionsForDoc(cfg, doc.Config(), result.Options)
	renderSection := renderer.Section
	if doc.Config().UseTable() {
		renderSection = renderer.Table
	}
	section, err := renderSection(options)
	if err != nil {
		return fail(err)
	}
	changed := true
	if insert {
		err = manager.InsertOptionsSection(doc, section)
	} else {
		changed, err = manager.UpdateOptionsSection(doc, section)
	}
	if err != nil {
		return fail(err)
	}
	res.Options = len(options)
	if !changed {
		res.Status = github.StatusUnchanged
		return res
	}
	if !updateOpts.dryRun {
		if err := manager.SaveDocument(doc); err != nil {
			return fail(fmt.Errorf("writing: %w", err))
		}
	}
	res.Status = github.StatusUpdated
	return res
}
