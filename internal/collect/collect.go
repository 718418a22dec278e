// Package collect finds Nix sources under a root directory and extracts
// their option declarations on a bounded worker pool.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/saltyorg/nix-options-doc/internal/parser"
)

// DefaultExtension is the source file extension collected when none is set.
const DefaultExtension = "nix"

var (
	// ErrRootNotFound is returned when the collection root does not exist.
	ErrRootNotFound = errors.New("root directory not found")

	// ErrRootNotDir is returned when the collection root is not a directory.
	ErrRootNotDir = errors.New("root is not a directory")
)

// ProgressFunc receives the number of processed files and the total. It is
// called from worker goroutines and must be safe for concurrent use.
type ProgressFunc func(done, total int)

// Options configures a Collector.
type Options struct {
	Exclude        []string          // Paths to skip; relative entries are joined to the root
	Replacements   map[string]string // ${name} substitution table
	FollowSymlinks bool              // Descend into symlinked directories and files
	Extension      string            // Source extension without the dot
	Jobs           int               // Worker count; 0 means runtime.NumCPU()
	Progress       ProgressFunc      // Optional progress callback
	Logger         *log.Logger       // Optional logger
}

// SkippedFile is a source that contributed nothing because it could not be
// read or parsed.
type SkippedFile struct {
	File string
	Err  error
}

// Result is the outcome of a collection pass.
type Result struct {
	Options    []parser.Option // Deduplicated options in enumeration order
	Files      []string        // Root-relative paths of every enumerated file
	Skipped    []SkippedFile   // Files that failed to read or parse
	Duplicates int             // Options dropped because an earlier file declared the name
}

// Collector walks a directory tree and extracts options from every source.
type Collector struct {
	fs     afero.Fs
	opts   Options
	parser *parser.Parser
	logger *log.Logger
}

// New creates a new Collector reading from fs.
func New(fs afero.Fs, opts Options) *Collector {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	opts.Extension = strings.TrimPrefix(opts.Extension, ".")
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collector{
		fs:     fs,
		opts:   opts,
		parser: parser.New(opts.Replacements, logger),
		logger: logger,
	}
}

// Collect extracts every option declared under root. When the same name
// is declared in several files the first file in enumeration order wins.
// A missing root is an error; unreadable or unparsable files are logged
// and recorded in Result.Skipped.
func (c *Collector) Collect(ctx context.Context, root string) (*Result, error) {
	info, err := c.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("reading root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	for key, value := range c.opts.Replacements {
		c.logger.Debug("Using replacement", "placeholder", "${"+key+"}", "value", value)
	}

	files, err := c.enumerate(root)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Found source files", "count", len(files), "root", root)

	result := &Result{Files: make([]string, len(files))}
	for i, f := range files {
		result.Files[i] = relPath(root, f)
	}

	perFile, skipped, err := c.process(ctx, files, result.Files)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i, opts := range perFile {
		if skipped[i] != nil {
			result.Skipped = append(result.Skipped, SkippedFile{File: result.Files[i], Err: skipped[i]})
			continue
		}
		for _, opt := range opts {
			if seen[opt.Name] {
				result.Duplicates++
				c.logger.Debug("Duplicate option", "name", opt.Name, "file", opt.File, "line", opt.Line)
				continue
			}
			seen[opt.Name] = true
			result.Options = append(result.Options, opt)
		}
	}

	c.logger.Debug("Total options found", "count", len(result.Options))
	return result, nil
}

// process parses files on the worker pool. Each worker writes only its own
// slot of the returned slices.
func (c *Collector) process(ctx context.Context, files, rel []string) ([][]parser.Option, []error, error) {
	results := make([][]parser.Option, len(files))
	skipped := make([]error, len(files))
	total := len(files)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Jobs)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], skipped[i] = c.parseFile(file, rel[i])
			n := done.Add(1)
			if c.opts.Progress != nil {
				c.opts.Progress(int(n), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return results, skipped, nil
}

func (c *Collector) parseFile(path, rel string) ([]parser.Option, error) {
	c.logger.Debug("Processing file", "file", rel)
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		c.logger.Warn("Error reading file", "file", rel, "err", err)
		return nil, fmt.Errorf("reading file: %w", err)
	}
	opts, err := c.parser.Parse(data, rel)
	if err != nil {
		c.logger.Warn("Error parsing file", "file", rel, "err", err)
		return nil, err
	}
	return opts, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
