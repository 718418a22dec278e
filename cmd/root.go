package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/saltyorg/nix-options-doc/internal/config"
	"github.com/saltyorg/nix-options-doc/internal/runtime"
)

var (
	cfgFile  string
	verbose  bool
	logLevel string

	// appFs is the filesystem every command reads and writes through.
	appFs afero.Fs = afero.NewOsFs()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nix-options-doc",
	Short: "Generate documentation for NixOS module options",
	Long: `nix-options-doc extracts option declarations (mkOption, mkEnableOption)
from a tree of Nix modules and renders them as documentation.

It performs the following core functions:
  - Option extraction from a local directory or a git repository
  - Markdown, JSON, HTML and CSV rendering
  - Managed-section updates of existing Markdown documents
  - Documentation coverage checking with GitHub issue management`,
	SilenceUsage: true, // Don't print usage on errors unrelated to flags
}

// ExitError carries a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(runtime.ResolvedVersion()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: .nix-options-doc.{yml,yaml,toml} when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// GetConfigPath returns the config file to load, or "" for built-in defaults.
func GetConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.Find(appFs, ".")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// loadConfig loads the config file if one is configured or found, falling
// back to defaults.
func loadConfig() (*config.Config, error) {
	path := GetConfigPath()
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(appFs, path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger. --verbose forces debug level.
func newLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: "nix-options-doc",
	}), nil
}
