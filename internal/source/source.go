// Package source resolves the directory to scan: a local path, or a
// shallow clone of a remote git repository.
package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

var remotePrefixes = []string{"https://", "http://", "git@", "ssh://", "git://", "file://"}

// IsRemote reports whether path names a git repository rather than a local
// directory.
func IsRemote(path string) bool {
	for _, p := range remotePrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Runner executes git with the given arguments.
type Runner func(ctx context.Context, args ...string) error

// Options configures cloning.
type Options struct {
	Branch string
	Depth  int
	Logger *log.Logger
	// Git overrides the git invocation, mainly for tests.
	Git Runner
}

// Checkout is a resolved source directory. Close removes any temporary
// clone; it is a no-op for local paths.
type Checkout struct {
	Dir    string
	Remote bool
	tmp    string
}

// Close removes the temporary clone, if any.
func (c *Checkout) Close() error {
	if c.tmp == "" {
		return nil
	}
	return os.RemoveAll(c.tmp)
}

// Resolve returns a local directory for path, cloning it first when it is a
// remote repository URL.
func Resolve(ctx context.Context, path string, opts Options) (*Checkout, error) {
	if !IsRemote(path) {
		return &Checkout{Dir: path}, nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	git := opts.Git
	if git == nil {
		git = runGit
	}

	tmp, err := os.MkdirTemp("", "nix-options-doc-")
	if err != nil {
		return nil, fmt.Errorf("creating clone directory: %w", err)
	}

	args := []string{"clone", "--quiet"}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	args = append(args, "--", path, tmp)

	logger.Info("Cloning repository", "url", path, "branch", opts.Branch, "depth", opts.Depth)
	if err := git(ctx, args...); err != nil {
		_ = os.RemoveAll(tmp)
		return nil, fmt.Errorf("cloning %s: %w", path, err)
	}

	return &Checkout{Dir: tmp, Remote: true, tmp: tmp}, nil
}

func runGit(ctx context.Context, args ...string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return nil
}
