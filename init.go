package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/treemap/internal/config"
)

const (
	sentinelStart = "<!-- treemap:start -->"
	sentinelEnd   = "<!-- treemap:end -->"
)

type initOptions struct {
	force  bool
	dryRun bool
	doc    string
}

// newInitCmd builds `treemap init`, which writes a default .treemap.yaml
// and optionally a usage section in a Markdown file.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default " + config.FileName,
		Long: `Write a default ` + config.FileName + ` to dir (default: the current directory).

With --doc, also write a treemap usage section to a Markdown file such as
AGENTS.md. The section is wrapped in sentinel comments so it can be updated
in place on later runs without touching surrounding content.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir, opts, stdout, stderr)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print what would be written without modifying files")
	cmd.Flags().StringVar(&opts.doc, "doc", "", "also write a usage section to this Markdown file")
	return cmd
}

func runInit(dir string, opts initOptions, stdout, stderr io.Writer) error {
	body, err := config.Default().YAML()
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}

	path := filepath.Join(dir, config.FileName)
	if opts.dryRun {
		_, _ = fmt.Fprintf(stdout, "# %s\n%s", path, body)
	} else {
		if err := writeConfig(path, body, opts.force); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stderr, "wrote %s\n", path)
	}

	if opts.doc == "" {
		return nil
	}

	existing, err := os.ReadFile(opts.doc)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", opts.doc, err)
	}
	updated := applySection(string(existing), generateSection())

	if opts.dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}
	if err := os.WriteFile(opts.doc, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.doc, err)
	}
	_, _ = fmt.Fprintf(stderr, "wrote treemap section to %s\n", opts.doc)
	return nil
}

func writeConfig(path, body string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// generateSection returns the sentinel-wrapped treemap usage block.
func generateSection() string {
	body := `## treemap: Codebase Structure and Smells

Run ` + "`treemap`" + ` at the start of work on an unfamiliar codebase. It prints a
per-directory map of classes, functions and imports, followed by heuristic
code smells grouped by severity.

**Run it:**
` + "```" + `bash
treemap                          # current directory
treemap /path/to/repo            # explicit path
treemap -l python,go             # filter by language
treemap --skip MISSING_DOC       # suppress a finding kind
treemap --ignore generated       # skip another directory name
` + "```" + `

Thresholds live in ` + "`" + config.FileName + "`" + `; create one with ` + "`treemap init`" + `.

**How to use the output:**

1. Start from the High Priority findings: import cycles, god classes and
   catch-all exception handlers.
2. Use the structure map to locate definitions before searching.
3. Treat findings as leads, not verdicts. Every check is a textual or
   syntactic heuristic.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if len(content) == 0 {
		return section + "\n"
	}
	return content + "\n" + section + "\n"
}
