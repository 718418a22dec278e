package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/saltyorg/nix-options-doc/internal/config"
	"github.com/saltyorg/nix-options-doc/internal/docs"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and frontmatter",
	Long:  "Validate configuration files and documentation frontmatter.",
}

var validateConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate the config file",
	Long:  "Validate the configuration file for unknown keys and invalid values.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := GetConfigPath()
		if path == "" {
			return fmt.Errorf("no config file found (looked for %v)", config.DefaultFiles)
		}
		// Load validates.
		if _, err := config.Load(appFs, path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid\n", path)
		return nil
	},
}

var validateFrontmatterCmd = &cobra.Command{
	Use:   "frontmatter [doc.md|dir]...",
	Short: "Validate frontmatter and section markers in doc files",
	Long: `Validate the nix_options_doc frontmatter and managed section markers
of documentation files. Without arguments the configured docs.paths are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return validateFrontmatter(cmd, cfg, args)
	},
}

func init() {
	validateCmd.AddCommand(validateConfigCmd)
	validateCmd.AddCommand(validateFrontmatterCmd)
	rootCmd.AddCommand(validateCmd)
}

// validateFrontmatter validates frontmatter in all documentation files.
func validateFrontmatter(cmd *cobra.Command, cfg *config.Config, args []string) error {
	out := cmd.OutOrStdout()
	manager := newDocManager(cfg)
	targets, err := docTargets(manager, args, cfg.Docs.Paths)
	if err != nil {
		return err
	}

	valid, invalid, noFrontmatter := 0, 0, 0
	for _, docPath := range targets {
		content, err := afero.ReadFile(appFs, docPath)
		if err != nil {
			fmt.Fprintf(out, "❌ %s: %v\n", docPath, err)
			invalid++
			continue
		}

		if problems := docs.ValidateManagedSections(string(content)); len(problems) > 0 {
			for _, p := range problems {
				fmt.Fprintf(out, "❌ %s: %s\n", docPath, p)
			}
			invalid++
			continue
		}

		fm, _, err := docs.ParseFrontmatter(string(content))
		if err != nil {
			fmt.Fprintf(out, "❌ %s: %v\n", docPath, err)
			invalid++
			continue
		}
		if fm == nil {
			noFrontmatter++
			if IsVerbose() {
				fmt.Fprintf(out, "⚠️  %s: no frontmatter\n", docPath)
			}
			continue
		}

		if err := fm.NixOptionsDoc.Validate(); err != nil {
			fmt.Fprintf(out, "❌ %s: nix_options_doc: %v\n", docPath, err)
			invalid++
			continue
		}

		valid++
		if IsVerbose() {
			fmt.Fprintf(out, "✅ %s\n", docPath)
		}
	}

	fmt.Fprintf(out, "\nValidation complete: %d valid, %d invalid, %d without frontmatter\n",
		valid, invalid, noFrontmatter)

	if invalid > 0 {
		return fmt.Errorf("found %d invalid files", invalid)
	}
	return nil
}
