package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/treemap/internal/config"
)

// TestApplySectionCreate verifies that applySection on empty content wraps the
// section in sentinels with a trailing newline.
func TestApplySectionCreate(t *testing.T) {
	t.Parallel()
	section := sentinelStart + "\nbody\n" + sentinelEnd
	got := applySection("", section)
	if got != section+"\n" {
		t.Errorf("got %q", got)
	}
}

// TestApplySectionAppend verifies that existing content without a sentinel block
// is preserved and the section is appended.
func TestApplySectionAppend(t *testing.T) {
	t.Parallel()
	existing := "# My Project\n\nSome existing content."
	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(existing, section)

	if !strings.HasPrefix(got, existing+"\n\n") {
		t.Errorf("existing content should be preserved at start:\n%s", got)
	}
	if !strings.HasSuffix(got, section+"\n") {
		t.Errorf("section should be appended:\n%s", got)
	}
}

// TestApplySectionUpdate verifies that an existing sentinel block is replaced
// precisely, leaving surrounding content intact.
func TestApplySectionUpdate(t *testing.T) {
	t.Parallel()
	before := "# Project\n\n"
	after := "\n\n## Other Section\n"
	old := before + sentinelStart + "\nold content\n" + sentinelEnd + after

	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(old, section)

	if got != before+section+after {
		t.Errorf("unexpected update:\n%s", got)
	}
}

func TestInitWritesConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, config.FileName))
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	if !strings.Contains(string(data), "long_function_lines: 50") {
		t.Errorf("config missing thresholds:\n%s", data)
	}
	if !strings.Contains(stderr.String(), "wrote ") {
		t.Errorf("expected confirmation on stderr, got %q", stderr.String())
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, config.FileName, "workers: 2\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"init", dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}

	if err := run([]string{"init", "--force", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, config.FileName))
	if strings.Contains(string(data), "workers: 2") {
		t.Error("--force should overwrite the existing file")
	}
}

func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	doc := filepath.Join(dir, "AGENTS.md")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "--dry-run", "--doc", doc, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("init --dry-run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, config.FileName)); !os.IsNotExist(err) {
		t.Error("dry run should not write the config")
	}
	if _, err := os.Stat(doc); !os.IsNotExist(err) {
		t.Error("dry run should not write the doc")
	}
	out := stdout.String()
	if !strings.Contains(out, "thresholds:") {
		t.Errorf("dry run should print the config:\n%s", out)
	}
	if !strings.Contains(out, sentinelStart) {
		t.Errorf("dry run should print the doc section:\n%s", out)
	}
}

func TestInitDocIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	doc := filepath.Join(dir, "AGENTS.md")
	writeTestFile(t, dir, "AGENTS.md", "# Notes\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "--doc", doc, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("first init: %v", err)
	}
	first, _ := os.ReadFile(doc)

	if err := run([]string{"init", "--force", "--doc", doc, dir}, &stdout, &stderr); err != nil {
		t.Fatalf("second init: %v", err)
	}
	second, _ := os.ReadFile(doc)

	if string(first) != string(second) {
		t.Errorf("second run changed the doc:\n%s\n---\n%s", first, second)
	}
	if !strings.HasPrefix(string(second), "# Notes\n") {
		t.Error("existing doc content should be preserved")
	}
	if strings.Count(string(second), sentinelStart) != 1 {
		t.Error("section should appear exactly once")
	}
}

func TestInitSectionContainsExamples(t *testing.T) {
	t.Parallel()
	section := generateSection()
	for _, want := range []string{"treemap --skip", "treemap -l", config.FileName, "treemap init"} {
		if !strings.Contains(section, want) {
			t.Errorf("section missing %q", want)
		}
	}
}
