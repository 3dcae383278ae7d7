package analyze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/treemap/internal/config"
	"github.com/phobologic/treemap/internal/discover"
	"github.com/phobologic/treemap/internal/graph"
	"github.com/phobologic/treemap/internal/lang"
	"github.com/phobologic/treemap/internal/model"
	"github.com/phobologic/treemap/internal/similarity"
	"github.com/phobologic/treemap/internal/unused"
)

// Progress receives parse-phase progress. Step may be called from several
// goroutines, but never concurrently.
type Progress interface {
	Start(total int)
	Step(path string)
	Finish()
}

// Analyzer runs the per-file pipeline over a directory tree, then the
// corpus-wide passes.
type Analyzer struct {
	registry *lang.Registry
	cfg      *config.Config
	progress Progress
	workers  int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithProgress reports parse-phase progress to p.
func WithProgress(p Progress) Option {
	return func(a *Analyzer) { a.progress = p }
}

// WithWorkers overrides the configured parse concurrency.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// New creates an Analyzer. A nil cfg means config.Default().
func New(registry *lang.Registry, cfg *config.Config, opts ...Option) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &Analyzer{registry: registry, cfg: cfg, workers: cfg.Workers}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers <= 0 {
		a.workers = runtime.GOMAXPROCS(0)
	}
	return a
}

// parsed pairs a walk entry with its per-file result.
type parsed struct {
	entry  discover.FileEntry
	result *FileResult
}

// Run analyzes every supported file under root. Files that cannot be read
// or parsed contribute nothing; only a bad root or a canceled context fail
// the run.
func (a *Analyzer) Run(ctx context.Context, root string) (*model.Report, error) {
	start := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	walker := discover.New(root, a.registry,
		discover.WithIgnore(a.cfg.Ignore...),
		discover.WithGitignore(a.cfg.Gitignore),
		discover.WithLanguages(a.cfg.Languages...),
	)
	entries := walker.Collect()
	slog.Debug("analyze.discovered", "root", root, "files", len(entries))

	results, err := a.parseAll(ctx, root, entries)
	if err != nil {
		return nil, err
	}

	report := &model.Report{}
	var (
		bodies  []model.FunctionBody
		modules []graph.Module
	)
	for _, p := range results {
		res, l := p.result, p.entry.Language
		report.Files = append(report.Files, res.Record)
		report.Findings = append(report.Findings, res.Findings...)
		bodies = append(bodies, res.Bodies...)

		if l.HasImportGraph() {
			m := graph.Module{Key: l.ModuleKey(res.Record.Path), File: res.Record.Path}
			for _, stmt := range res.RawImports {
				m.Imports = append(m.Imports, l.ImportedModules(stmt)...)
			}
			modules = append(modules, m)
		}
	}

	// Corpus passes need every file, so they run only after the parse phase.
	cycles := graph.DetectCycles(graph.BuildImportGraph(modules))
	report.Findings = append(report.Findings, cycles...)

	for _, p := range results {
		if l := p.entry.Language; l.HasImportBindings() {
			report.Findings = append(report.Findings, unused.Check(p.result.Record.Path, p.result.Source, p.result.ImportSpans, l)...)
		}
	}

	report.Findings = append(report.Findings, similarity.FindDuplicates(bodies, a.cfg.Thresholds.DuplicateRatio)...)

	slog.Info("analyze.done",
		"files", len(report.Files),
		"skipped", len(entries)-len(report.Files),
		"findings", len(report.Findings),
		"cycles", len(cycles),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return report, nil
}

// parseAll runs AnalyzeFile over entries with bounded concurrency. Each
// worker owns one parser per language. Results keep walk order; files that
// failed are dropped.
func (a *Analyzer) parseAll(ctx context.Context, root string, entries []discover.FileEntry) ([]parsed, error) {
	if a.progress != nil {
		a.progress.Start(len(entries))
		defer a.progress.Finish()
	}

	results := make([]*FileResult, len(entries))
	work := make(chan int)

	var progressMu sync.Mutex
	step := func(path string) {
		if a.progress == nil {
			return
		}
		progressMu.Lock()
		a.progress.Step(path)
		progressMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		for i := range entries {
			select {
			case work <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers := min(a.workers, max(len(entries), 1))
	for range workers {
		g.Go(func() error {
			parsers := make(map[string]*sitter.Parser)
			defer func() {
				for _, p := range parsers {
					p.Close()
				}
			}()

			for idx := range work {
				if err := gctx.Err(); err != nil {
					return err
				}
				e := entries[idx]
				parser, ok := parsers[e.Language.Name]
				if !ok {
					parser = e.Language.NewParser()
					parsers[e.Language.Name] = parser
				}
				results[idx] = a.analyzeEntry(gctx, root, e, parser)
				step(e.Path)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		// A parse cut short by cancellation is indistinguishable from a
		// failed file, so check the caller's context as well.
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("analysis interrupted: %w", err)
		}
		return nil, err
	}

	out := make([]parsed, 0, len(entries))
	for i, res := range results {
		if res != nil {
			out = append(out, parsed{entry: entries[i], result: res})
		}
	}
	return out, nil
}

func (a *Analyzer) analyzeEntry(ctx context.Context, root string, e discover.FileEntry, parser *sitter.Parser) *FileResult {
	source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(e.Path)))
	if err != nil {
		slog.Debug("analyze.read_failed", "path", e.Path, "error", err)
		return nil
	}
	res, err := AnalyzeFile(ctx, e.Language, parser, e.Path, source, a.cfg.Thresholds)
	if err != nil {
		slog.Debug("analyze.parse_failed", "path", e.Path, "error", err)
		return nil
	}
	return res
}
