package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// enumerate lists candidate source files under root in lexical order.
// Hidden entries are pruned, excluded paths are skipped, and symlinked
// directories are followed once per chain when FollowSymlinks is set.
func (c *Collector) enumerate(root string) ([]string, error) {
	excludes := c.exclusions(root)
	for _, ex := range excludes {
		c.logger.Debug("Excluding path", "path", ex)
	}

	rootInfo, err := c.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading root: %w", err)
	}

	var files []string
	if err := c.walkDir(root, excludes, []os.FileInfo{rootInfo}, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Collector) walkDir(dir string, excludes []string, ancestors []os.FileInfo, files *[]string) error {
	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		if isExcluded(path, excludes) {
			c.logger.Debug("Skipping excluded path", "path", path)
			continue
		}
		if strings.HasPrefix(name, ".") {
			continue
		}

		info := entry
		if entry.Mode()&os.ModeSymlink != 0 {
			if !c.opts.FollowSymlinks {
				continue
			}
			target, err := c.fs.Stat(path)
			if err != nil {
				c.logger.Warn("Skipping broken symlink", "path", path, "err", err)
				continue
			}
			info = target
		}

		switch {
		case info.IsDir():
			if inChain(info, ancestors) {
				c.logger.Debug("Skipping symlink cycle", "path", path)
				continue
			}
			if err := c.walkDir(path, excludes, append(ancestors, info), files); err != nil {
				return err
			}
		case info.Mode().IsRegular() && filepath.Ext(name) == "."+c.opts.Extension:
			*files = append(*files, path)
		}
	}
	return nil
}

func (c *Collector) exclusions(root string) []string {
	out := make([]string, 0, len(c.opts.Exclude))
	for _, ex := range c.opts.Exclude {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}
		switch {
		case !filepath.IsAbs(ex):
			ex = filepath.Join(root, ex)
		case !filepath.IsAbs(root):
			// Express absolute exclusions relative to a relative root so
			// they compare against walked paths.
			if absRoot, err := filepath.Abs(root); err == nil {
				if rel, err := filepath.Rel(absRoot, ex); err == nil && !strings.HasPrefix(rel, "..") {
					ex = filepath.Join(root, rel)
				}
			}
		}
		out = append(out, filepath.Clean(ex))
	}
	return out
}

// isExcluded matches whole path components, so "foo" excludes "foo/x"
// but not "foobar".
func isExcluded(path string, excludes []string) bool {
	path = filepath.Clean(path)
	for _, ex := range excludes {
		if path == ex || strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func inChain(info os.FileInfo, ancestors []os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(info, a) {
			return true
		}
	}
	return false
}
