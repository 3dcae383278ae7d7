package analyze

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/treemap/internal/config"
	"github.com/phobologic/treemap/internal/model"
	"github.com/phobologic/treemap/internal/report"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func corpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "pkg/a.py", "import pkg.b\n\n\ndef fa():\n    \"\"\"Doc.\"\"\"\n    return pkg.b.VALUE\n")
	writeFile(t, root, "pkg/b.py", "import pkg.a\nimport os\n\nVALUE = pkg.a\n")
	writeFile(t, root, "dup/one.py", pyFunction("copy_one", 12))
	writeFile(t, root, "dup/two.py", pyFunction("copy_two", 12))
	writeFile(t, root, "node_modules/lib/index.js", "function x() { return 1; }\n")
	writeFile(t, root, "README.md", "# readme\n")
	return root
}

func TestRunCorpus(t *testing.T) {
	t.Parallel()

	rep, err := New(registry, config.Default()).Run(context.Background(), corpus(t))
	require.NoError(t, err)

	var paths []string
	for _, f := range rep.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"dup/one.py", "dup/two.py", "pkg/a.py", "pkg/b.py"}, paths)

	var got []string
	for _, f := range rep.Findings {
		got = append(got, f.File+" "+located([]model.Finding{f})[0])
	}
	assert.Equal(t, []string{
		"pkg/a.py CIRCULAR_IMPORT:0 pkg.a -> pkg.b -> pkg.a",
		"pkg/b.py UNUSED_IMPORT:2 os imported but never used",
		"dup/one.py DUPLICATE_LOGIC:1 copy_one() is 100% similar to copy_two() in dup/two.py:1",
	}, got)
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()

	root := corpus(t)
	for i := 0; i < 5; i++ {
		writeFile(t, root, filepath.Join("many", string(rune('a'+i))+".py"), pyFunction("f", 20+i))
	}

	serial, err := New(registry, config.Default(), WithWorkers(1)).Run(context.Background(), root)
	require.NoError(t, err)
	parallel, err := New(registry, config.Default(), WithWorkers(8)).Run(context.Background(), root)
	require.NoError(t, err)
	again, err := New(registry, config.Default(), WithWorkers(8)).Run(context.Background(), root)
	require.NoError(t, err)

	want := report.Format(serial, report.Options{})
	assert.Equal(t, want, report.Format(parallel, report.Options{}))
	assert.Equal(t, want, report.Format(again, report.Options{}))
}

func TestRunIgnoredSegmentAtAnyDepth(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/generated/deep/x.py", "x = 1\n")
	writeFile(t, root, "generated_code.py", "y = 2\n")
	writeFile(t, root, "a/b/node_modules/c.js", "var z = 3;\n")

	cfg := config.Default()
	cfg.Ignore = []string{"generated"}
	rep, err := New(registry, cfg).Run(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, rep.Files, 1)
	assert.Equal(t, "generated_code.py", rep.Files[0].Path)
}

func TestRunLanguageFilter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "tool.py", "x = 1\n")

	cfg := config.Default()
	cfg.Languages = []string{"go"}
	rep, err := New(registry, cfg).Run(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, rep.Files, 1)
	assert.Equal(t, "go", rep.Files[0].Language)
}

func TestRunSkipsUnreadableFile(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}

	root := t.TempDir()
	writeFile(t, root, "ok.py", "x = 1\n")
	writeFile(t, root, "locked.py", "y = 2\n")
	require.NoError(t, os.Chmod(filepath.Join(root, "locked.py"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "locked.py"), 0o644) })

	rep, err := New(registry, config.Default()).Run(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, rep.Files, 1)
	assert.Equal(t, "ok.py", rep.Files[0].Path)
}

func TestRunEmptyTree(t *testing.T) {
	t.Parallel()

	rep, err := New(registry, nil).Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rep.Files)
	assert.Empty(t, rep.Findings)
}

func TestRunBadRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := New(registry, nil).Run(context.Background(), filepath.Join(root, "missing"))
	assert.Error(t, err)

	writeFile(t, root, "file.py", "x = 1\n")
	_, err = New(registry, nil).Run(context.Background(), filepath.Join(root, "file.py"))
	assert.ErrorContains(t, err, "not a directory")
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(registry, nil).Run(ctx, corpus(t))
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingProgress struct {
	total    int
	steps    []string
	finished bool
}

func (p *recordingProgress) Start(total int)  { p.total = total }
func (p *recordingProgress) Step(path string) { p.steps = append(p.steps, path) }
func (p *recordingProgress) Finish()          { p.finished = true }

func TestRunProgress(t *testing.T) {
	t.Parallel()

	p := &recordingProgress{}
	_, err := New(registry, nil, WithProgress(p), WithWorkers(4)).Run(context.Background(), corpus(t))
	require.NoError(t, err)

	assert.Equal(t, 4, p.total)
	assert.ElementsMatch(t, []string{"dup/one.py", "dup/two.py", "pkg/a.py", "pkg/b.py"}, p.steps)
	assert.True(t, p.finished)
}
