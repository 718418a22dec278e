package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/nix-options-doc/internal/collect"
	"github.com/saltyorg/nix-options-doc/internal/config"
	"github.com/saltyorg/nix-options-doc/internal/parser"
	"github.com/saltyorg/nix-options-doc/internal/source"
)

// sourceFlags are the flags shared by every command that extracts options.
type sourceFlags struct {
	path           string
	branch         string
	depth          int
	exclude        []string
	replace        []string
	followSymlinks bool
	extension      string
	jobs           int
	progress       bool

	prefix         string
	stripPrefix    string
	search         string
	typeFilter     string
	hasDefault     bool
	hasDescription bool
	sort           bool
	pathPrefix     string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.path, "path", "p", ".", "directory or git repository URL to scan")
	flags.StringVarP(&f.branch, "branch", "b", "", "branch to clone when --path is a repository URL")
	flags.IntVarP(&f.depth, "depth", "d", 1, "clone depth when --path is a repository URL")
	flags.StringSliceVarP(&f.exclude, "exclude-dir", "e", nil, "directories to skip (repeatable, comma separated)")
	flags.StringArrayVar(&f.replace, "replace", nil, "substitute ${key} with value in names and descriptions (key=value, repeatable)")
	flags.BoolVar(&f.followSymlinks, "follow-symlinks", true, "follow symbolic links")
	flags.StringVar(&f.extension, "extension", "nix", "source file extension")
	flags.IntVarP(&f.jobs, "jobs", "j", 0, "parallel parser workers (0 = number of CPUs)")
	flags.BoolVarP(&f.progress, "progress", "P", false, "show progress while parsing")

	flags.StringVar(&f.prefix, "prefix", "", "only include options starting with this prefix")
	flags.StringVar(&f.stripPrefix, "strip-prefix", "", "remove this prefix from option names")
	flags.StringVar(&f.search, "search", "", "only include options whose name or description contains this text")
	flags.StringVar(&f.typeFilter, "type-filter", "", "only include options whose type contains this text")
	flags.BoolVar(&f.hasDefault, "has-default", false, "only include options with a default value")
	flags.BoolVar(&f.hasDescription, "has-description", false, "only include options with a description")
	flags.BoolVarP(&f.sort, "sort", "s", false, "sort options by name")
	flags.StringVar(&f.pathPrefix, "path-prefix", "", "prefix for source links, e.g. a repository blob URL")
}

// apply overlays explicitly set flags on cfg.
func (f *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("path") {
		cfg.Path = f.path
	}
	if changed("branch") {
		cfg.Git.Branch = f.branch
	}
	if changed("depth") {
		cfg.Git.Depth = f.depth
	}
	if changed("exclude-dir") {
		cfg.Exclude = append(cfg.Exclude, f.exclude...)
	}
	if changed("replace") {
		table, err := config.ParseReplacements(f.replace)
		if err != nil {
			return err
		}
		if cfg.Replacements == nil {
			cfg.Replacements = make(map[string]string, len(table))
		}
		for k, v := range table {
			cfg.Replacements[k] = v
		}
	}
	if changed("follow-symlinks") {
		cfg.FollowSymlinks = f.followSymlinks
	}
	if changed("extension") {
		cfg.Extension = f.extension
	}
	if changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if changed("prefix") {
		cfg.Filter.Prefix = f.prefix
	}
	if changed("strip-prefix") {
		cfg.Filter.StripPrefix = f.stripPrefix
	}
	if changed("search") {
		cfg.Filter.Search = f.search
	}
	if changed("type-filter") {
		cfg.Filter.Type = f.typeFilter
	}
	if changed("has-default") {
		cfg.Filter.HasDefault = f.hasDefault
	}
	if changed("has-description") {
		cfg.Filter.HasDescription = f.hasDescription
	}
	if changed("sort") {
		cfg.Output.Sort = f.sort
	}
	if changed("path-prefix") {
		cfg.PathPrefix = f.pathPrefix
	}
	return cfg.Validate()
}

// extract resolves the source tree and collects every option in it.
func extract(ctx context.Context, cfg *config.Config, logger *log.Logger, progress io.Writer) (*collect.Result, error) {
	checkout, err := source.Resolve(ctx, cfg.Path, source.Options{
		Branch: cfg.Git.Branch,
		Depth:  cfg.Git.Depth,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := checkout.Close(); err != nil {
			logger.Warn("Could not remove clone", "dir", checkout.Dir, "err", err)
		}
	}()

	opts := collect.Options{
		Exclude:        cfg.Exclude,
		Replacements:   cfg.Replacements,
		FollowSymlinks: cfg.FollowSymlinks,
		Extension:      cfg.Extension,
		Jobs:           cfg.Jobs,
		Logger:         logger,
	}
	if progress != nil {
		opts.Progress = progressPrinter(progress)
	}

	result, err := collect.New(appFs, opts).Collect(ctx, checkout.Dir)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		fmt.Fprintln(progress)
	}

	logger.Debug("Collected options",
		"files", len(result.Files),
		"options", len(result.Options),
		"skipped", len(result.Skipped),
		"duplicates", result.Duplicates,
	)
	return result, nil
}

// progressPrinter redraws a single "parsed n/total files" status line.
// Workers report concurrently, so writes are serialized.
func progressPrinter(w io.Writer) collect.ProgressFunc {
	var mu sync.Mutex
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "\rParsed %d/%d files", done, total)
	}
}

// baseFilter converts the configured filter.
func baseFilter(cfg *config.Config) parser.Filter {
	return parser.Filter{
		Prefix:         cfg.Filter.Prefix,
		Search:         cfg.Filter.Search,
		Type:           cfg.Filter.Type,
		HasDefault:     cfg.Filter.HasDefault,
		HasDescription: cfg.Filter.HasDescription,
	}
}

// postProcess filters, renames, sorts and relinks options for output.
func postProcess(cfg *config.Config, options []parser.Option) []parser.Option {
	options = parser.FilterOptions(options, baseFilter(cfg))
	options = parser.StripPrefix(options, cfg.Filter.StripPrefix)
	if cfg.Output.Sort {
		options = parser.SortOptions(options)
	}
	return parser.RewritePaths(options, cfg.PathPrefix)
}
