// Package discover finds parseable source files in a directory tree.
package discover

import (
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/treemap/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // Relative to the walk root, slash separated
	Language *lang.Language
}

// DefaultIgnore lists directory names that are never descended into.
// Entries containing glob metacharacters match whole path segments.
var DefaultIgnore = []string{
	".git", "node_modules", "__pycache__", "venv", ".venv", "env",
	"dist", "build", ".tox", ".mypy_cache", ".pytest_cache", ".ruff_cache",
	".next", ".nuxt", "target", "out", ".eggs", "*.egg-info",
	".claude", ".idea", ".vscode", "coverage", "htmlcov",
}

// Walker enumerates the supported files under a root directory.
type Walker struct {
	root      string
	registry  *lang.Registry
	names     map[string]struct{}
	patterns  []string
	gitignore bool
	langs     map[string]struct{}
}

// Option configures a Walker.
type Option func(*Walker)

// WithIgnore adds directory names (or segment globs) to the ignore set.
func WithIgnore(names ...string) Option {
	return func(w *Walker) {
		for _, n := range names {
			w.addIgnore(n)
		}
	}
}

// WithGitignore makes the walker skip files matched by the root .gitignore.
func WithGitignore(enabled bool) Option {
	return func(w *Walker) { w.gitignore = enabled }
}

// WithLanguages restricts the walk to the named languages.
func WithLanguages(names ...string) Option {
	return func(w *Walker) {
		for _, n := range names {
			if w.langs == nil {
				w.langs = make(map[string]struct{})
			}
			w.langs[n] = struct{}{}
		}
	}
}

// New returns a walker over root that resolves languages through registry.
func New(root string, registry *lang.Registry, opts ...Option) *Walker {
	w := &Walker{
		root:     root,
		registry: registry,
		names:    make(map[string]struct{}),
	}
	for _, n := range DefaultIgnore {
		w.addIgnore(n)
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Walker) addIgnore(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if strings.ContainsAny(name, "*?[{") {
		if doublestar.ValidatePattern(name) {
			w.patterns = append(w.patterns, name)
			return
		}
		slog.Warn("discover.bad_ignore_pattern", "pattern", name)
	}
	w.names[name] = struct{}{}
}

// Ignored reports whether a single path segment is in the ignore set.
func (w *Walker) Ignored(segment string) bool {
	if _, ok := w.names[segment]; ok {
		return true
	}
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, segment); ok {
			return true
		}
	}
	return false
}

// Files returns a lazy sequence of supported files. Each range over the
// sequence walks the tree again, so it can be restarted. Unreadable entries
// are skipped.
func (w *Walker) Files() iter.Seq[FileEntry] {
	return func(yield func(FileEntry) bool) {
		var gi *ignore.GitIgnore
		if w.gitignore {
			gi = loadGitignore(w.root)
		}

		_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip errors
			}

			if d.IsDir() {
				if path == w.root {
					return nil
				}
				if w.Ignored(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			// Skip symlinks and other non-regular files
			if !d.Type().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(w.root, path)
			if err != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if gi != nil && gi.MatchesPath(rel) {
				return nil
			}

			l, ok := w.registry.Resolve(filepath.Ext(d.Name()))
			if !ok {
				return nil
			}
			if len(w.langs) > 0 {
				if _, ok := w.langs[l.Name]; !ok {
					return nil
				}
			}

			if !yield(FileEntry{Path: rel, Language: l}) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Collect walks the tree once and returns every file sorted by path.
func (w *Walker) Collect() []FileEntry {
	var results []FileEntry
	for f := range w.Files() {
		results = append(results, f)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results
}

// Root returns the directory being walked.
func (w *Walker) Root() string {
	return w.root
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		slog.Warn("discover.gitignore_unreadable", "path", path, "err", err)
		return nil
	}
	return gi
}
