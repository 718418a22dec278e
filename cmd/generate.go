package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/saltyorg/nix-options-doc/internal/config"
	"github.com/saltyorg/nix-options-doc/internal/render"
)

// stdoutTarget as the --out value prints instead of writing a file.
const stdoutTarget = "stdout"

var generateOpts struct {
	sourceFlags
	out      string
	format   string
	template string
	pretty   bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate option documentation",
	Long: `Generate documentation for every option declared under --path.

--path may be a local directory or a git repository URL, which is cloned
to a temporary directory first. Use --out stdout to print the result;
with --pretty, Markdown printed to a terminal is styled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyGenerateFlags(cmd, cfg); err != nil {
			return err
		}
		return runGenerate(cmd, cfg)
	},
}

func init() {
	generateOpts.register(generateCmd)
	flags := generateCmd.Flags()
	flags.StringVarP(&generateOpts.out, "out", "o", "nix-options.md", `output file ("stdout" to print)`)
	flags.StringVarP(&generateOpts.format, "format", "f", "markdown", "output format (markdown, json, html, csv)")
	flags.StringVar(&generateOpts.template, "template", "", "custom Markdown template file")
	flags.BoolVar(&generateOpts.pretty, "pretty", false, "style Markdown for the terminal when printing to stdout")
	rootCmd.AddCommand(generateCmd)
}

func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("out") {
		cfg.Output.File = generateOpts.out
	}
	if changed("format") {
		cfg.Output.Format = generateOpts.format
	}
	if changed("template") {
		cfg.Output.Template = generateOpts.template
	}
	if changed("pretty") {
		cfg.Output.Pretty = generateOpts.pretty
	}
	return generateOpts.apply(cmd, cfg)
}

func runGenerate(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	format, err := render.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	renderer, err := render.New(render.Config{Template: cfg.Output.Template, Fs: appFs})
	if err != nil {
		return err
	}

	var progress = cmd.ErrOrStderr()
	if !generateOpts.progress {
		progress = nil
	}
	result, err := extract(cmd.Context(), cfg, logger, progress)
	if err != nil {
		return err
	}
	options := postProcess(cfg, result.Options)

	output, err := renderer.Render(format, options)
	if err != nil {
		return err
	}

	if cfg.Output.File == stdoutTarget {
		if cfg.Output.Pretty && format == render.Markdown {
			if output, err = render.Terminal(output, 0); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(cmd.OutOrStdout(), output)
		return err
	}

	if dir := filepath.Dir(cfg.Output.File); dir != "." {
		if err := appFs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := afero.WriteFile(appFs, cfg.Output.File, []byte(output), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output.File, err)
	}
	logger.Info("Wrote documentation",
		"file", cfg.Output.File,
		"format", format,
		"options", len(options),
		"files", len(result.Files),
	)
	return nil
}
