package manpage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Manpaths asks the manpath binary where manual pages live.
func Manpaths() ([]string, error) {
	out, err := exec.Command("manpath").Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: manpath", ErrMissingDependency)
		}
		return nil, fmt.Errorf("manpath failed: %w", err)
	}
	var roots []string
	for _, p := range strings.Split(strings.TrimSpace(string(out)), ":") {
		if p = strings.TrimSpace(p); p != "" {
			roots = append(roots, p)
		}
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("manpath returned no directories")
	}
	return roots, nil
}

// Discover walks each root (following symlinks) and parses every manual
// page found, keeping only the sections named in keep.
//
// Files are deduplicated two ways: by resolved path, so a page is never
// rendered twice, and by page id, so locale copies and aliases of the
// same "name (section)" merge into one page with several recorded paths.
// Unparseable files are logged and skipped; only a missing external
// dependency aborts the walk.
func Discover(roots []string, keep []string) ([]*Page, error) {
	byPath := make(map[string]*Page)
	byID := make(map[string]*Page)
	var pages []*Page

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			logrus.WithField("root", root).Debug("skipping unreadable manpath root")
			continue
		}
		err := walkFollowingLinks(root, func(path string) error {
			real, err := filepath.EvalSymlinks(path)
			if err != nil {
				logrus.WithField("path", path).Debug("cannot resolve path, skipping")
				return nil
			}
			if seen, ok := byPath[real]; ok {
				if seen != nil && path != real {
					seen.RecordPath(path)
				}
				return nil
			}

			page, err := New(real, keep)
			if err != nil {
				if errors.Is(err, ErrMissingDependency) {
					return err
				}
				if errors.Is(err, ErrNotManualPage) {
					logrus.WithField("path", real).Debug("not a manual page, skipping")
				} else {
					logrus.WithField("path", real).WithError(err).Warn("cannot parse manual page, skipping")
				}
				byPath[real] = nil
				return nil
			}
			byPath[real] = page

			if prev, ok := byID[page.ID()]; ok {
				prev.RecordPath(real)
				byPath[real] = prev
				return nil
			}
			if path != real {
				page.RecordPath(path)
			}
			byID[page.ID()] = page
			pages = append(pages, page)
			logrus.WithFields(logrus.Fields{"id": page.ID(), "path": real}).Debug("indexed manual page")
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return pages, nil
}

// walkFollowingLinks is filepath.WalkDir except that directory symlinks
// are descended into. Manual hierarchies routinely symlink whole section
// directories. Link loops are cut by the resolved-path dedupe in the
// caller plus a visited set here.
func walkFollowingLinks(root string, fn func(path string) error) error {
	visited := make(map[string]struct{})
	var walk func(dir string) error
	walk = func(dir string) error {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return nil
		}
		if _, ok := visited[real]; ok {
			return nil
		}
		visited[real] = struct{}{}

		return filepath.WalkDir(real, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logrus.WithField("path", path).Debug("walk error, skipping")
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				st, err := os.Stat(path)
				if err != nil {
					return nil
				}
				if st.IsDir() {
					return walk(path)
				}
				return fn(path)
			}
			if d.IsDir() {
				return nil
			}
			return fn(path)
		})
	}
	return walk(root)
}
