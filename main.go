// treemap maps the structure of a codebase with tree-sitter and reports
// heuristic code smells.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/phobologic/treemap/internal/analyze"
	"github.com/phobologic/treemap/internal/config"
	"github.com/phobologic/treemap/internal/gitmeta"
	"github.com/phobologic/treemap/internal/lang"
	"github.com/phobologic/treemap/internal/report"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// flagBindings maps config keys to the root command flags that override them.
var flagBindings = map[string]string{
	"thresholds.long_function_lines": "long-function",
	"thresholds.god_class_methods":   "god-class",
	"thresholds.nesting_depth":       "nesting",
	"thresholds.max_params":          "params",
	"thresholds.large_file_lines":    "large-file",
	"skip":                           "skip",
	"ignore":                         "ignore",
	"languages":                      "langs",
	"gitignore":                      "gitignore",
	"workers":                        "workers",
}

type rootOptions struct {
	configFile string
	progress   bool
	noGit      bool
	verbose    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "treemap [path]",
		Short: "Map codebase structure and report code smells",
		Long: `treemap parses every supported source file under path (default: the
current directory) with tree-sitter, prints a per-directory structural map,
and reports heuristic code smells grouped by severity.

Thresholds and filters are read from .treemap.yaml in the analyzed root,
then TREEMAP_* environment variables, then flags.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	d := config.DefaultThresholds()
	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "config file (default: <path>/"+config.FileName+")")
	f.Int("long-function", d.LongFunctionLines, "flag functions longer than this many lines")
	f.Int("god-class", d.GodClassMethods, "flag classes with more methods than this")
	f.Int("nesting", d.NestingDepth, "flag functions nested deeper than this")
	f.Int("params", d.MaxParams, "flag functions with more parameters than this")
	f.Int("large-file", d.LargeFileLines, "flag files longer than this many lines")
	f.StringSlice("skip", nil, "finding kind to suppress (repeatable)")
	f.StringSlice("ignore", nil, "extra directory name or glob to skip (repeatable)")
	f.StringSliceP("langs", "l", nil, "languages to include (default: all)")
	f.Bool("gitignore", false, "also skip paths matched by the root .gitignore")
	f.Int("workers", 0, "parallel parsers (default: GOMAXPROCS)")
	f.BoolVar(&opts.progress, "progress", false, "show a progress bar on stderr")
	f.BoolVar(&opts.noGit, "no-git", false, "omit the git HEAD line")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress details to stderr")

	cmd.AddCommand(newInitCmd(stdout, stderr))
	cmd.AddCommand(newVersionCmd(stdout))
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts rootOptions, stdout, stderr io.Writer) error {
	setupLogging(stderr, opts.verbose)

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	loaderOpts := []config.LoaderOption{config.WithFlags(cmd.Flags(), flagBindings)}
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	cfg, err := config.NewLoader(root, loaderOpts...).Load()
	if err != nil {
		return err
	}

	registry := lang.DefaultRegistry()
	for _, name := range cfg.Languages {
		if _, ok := registry.Get(name); !ok {
			return fmt.Errorf("unsupported language %q", name)
		}
	}

	var analyzerOpts []analyze.Option
	if opts.progress {
		analyzerOpts = append(analyzerOpts, analyze.WithProgress(newBarProgress(stderr)))
	}

	rep, err := analyze.New(registry, cfg, analyzerOpts...).Run(cmd.Context(), root)
	if err != nil {
		return err
	}

	var head string
	if !opts.noGit {
		head = gitmeta.Head(cmd.Context(), root)
	}

	out := report.Format(rep, report.Options{Skip: cfg.SkipKinds(), Head: head})
	_, _ = fmt.Fprint(stdout, out)
	return nil
}

// setupLogging installs a text slog handler on stderr. Warnings always
// show; --verbose adds info-level progress events.
func setupLogging(stderr io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
}

// barProgress renders parse-phase progress as a terminal progress bar.
type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newBarProgress(w io.Writer) *barProgress {
	return &barProgress{w: w}
}

func (p *barProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Parsing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(p.w)
		}),
	)
}

func (p *barProgress) Step(string) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the treemap version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(stdout, "treemap %s\n", version)
		},
	}
}
