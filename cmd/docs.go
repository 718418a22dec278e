package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/saltyorg/nix-options-doc/internal/config"
	"github.com/saltyorg/nix-options-doc/internal/docs"
	"github.com/saltyorg/nix-options-doc/internal/parser"
)

func newDocManager(cfg *config.Config) *docs.Manager {
	return docs.NewManager(appFs, docs.MarkerConfig{Options: cfg.Markers.Options})
}

// docTargets expands document arguments, falling back to the configured
// doc paths. Directories contribute every Markdown file beneath them.
func docTargets(manager *docs.Manager, args, configured []string) ([]string, error) {
	if len(args) == 0 {
		args = configured
	}

	var targets []string
	seen := make(map[string]bool)
	for _, arg := range args {
		info, err := appFs.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		paths := []string{arg}
		if info.IsDir() {
			if paths, err = manager.ListDocFiles(arg); err != nil {
				return nil, fmt.Errorf("listing docs in %s: %w", arg, err)
			}
		}
		for _, p := range paths {
			p = filepath.Clean(p)
			if !seen[p] {
				seen[p] = true
				targets = append(targets, p)
			}
		}
	}
	return targets, nil
}

// optionsForDoc narrows options for one document. The document's own
// strip_prefix replaces the global one.
func optionsForDoc(cfg *config.Config, docCfg *docs.DocConfig, options []parser.Option) []parser.Option {
	options = docCfg.Apply(options, baseFilter(cfg))
	if docCfg == nil || docCfg.StripPrefix == "" {
		options = parser.StripPrefix(options, cfg.Filter.StripPrefix)
	}
	if cfg.Output.Sort {
		options = parser.SortOptions(options)
	}
	return parser.RewritePaths(options, cfg.PathPrefix)
}

// missingSections lists documents that want generated options but have no
// managed section.
func missingSections(manager *docs.Manager, targets []string, logger *log.Logger) []string {
	var missing []string
	for _, path := range targets {
		doc, err := manager.LoadDocument(path)
		if err != nil {
			logger.Warn("Failed to load document", "path", path, "err", err)
			continue
		}
		if manager.IsAutomationDisabled(doc) {
			logger.Debug("Automation disabled", "path", path)
			continue
		}
		if !manager.HasOptionsSection(doc) {
			missing = append(missing, filepath.ToSlash(path))
		}
	}
	return missing
}
