package gitmeta

import (
	"context"
	"os/exec"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadOutsideRepo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := exec.LookPath("git"); err == nil {
		// A fresh repo with no commits has no HEAD either.
		require.NoError(t, exec.Command("git", "init", "-q", dir).Run())
	}
	assert.Empty(t, Head(context.Background(), dir))
}

func TestHeadWithCommit(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	git := func(args ...string) {
		t.Helper()
		base := []string{"-C", dir, "-c", "user.name=Test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}
		out, err := exec.Command("git", append(base, args...)...).CombinedOutput()
		require.NoError(t, err, string(out))
	}
	git("init", "-q")
	git("commit", "-q", "--allow-empty", "-m", "Initial layout")

	head := Head(context.Background(), dir)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{40} Initial layout$`), head)
}

func TestHeadCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, Head(ctx, t.TempDir()))
}
