// Package gitmeta reads commit metadata for the analyzed tree.
package gitmeta

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Timeout bounds the git invocation.
const Timeout = 5 * time.Second

// Head returns "<hash> <subject>" for the commit checked out in dir, or ""
// when dir is not in a git work tree or git is unavailable.
func Head(ctx context.Context, dir string) string {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log", "--format=%H %s", "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
