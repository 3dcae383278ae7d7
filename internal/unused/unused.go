// Package unused flags imports whose bound names never appear in the rest
// of the file. The check is textual and scope-unaware: a name that only
// occurs in a string or comment counts as used.
package unused

import (
	"fmt"
	"strings"

	"github.com/phobologic/treemap/internal/model"
)

// Binder knows a language's import syntax.
type Binder interface {
	// ImportBindings returns the local names bound by a full statement.
	ImportBindings(stmt string) []string
}

// Span is the 1-based inclusive line range of one import statement, as
// located by the parser.
type Span struct {
	Start int
	End   int
}

type statement struct {
	line int
	text string
}

// Check returns one UNUSED_IMPORT finding per bound name that does not occur
// as a substring of the lines outside spans.
func Check(path, source string, spans []Span, b Binder) []model.Finding {
	stmts, rest := split(source, spans)
	if len(stmts) == 0 {
		return nil
	}

	var findings []model.Finding
	for _, st := range stmts {
		for _, name := range b.ImportBindings(st.text) {
			if name == "" || name == "*" {
				continue
			}
			if !strings.Contains(rest, name) {
				findings = append(findings, model.NewFinding(
					model.UnusedImport, path, st.line,
					fmt.Sprintf("%s imported but never used", name),
				))
			}
		}
	}
	return findings
}

// split separates the import statement lines named by spans from everything
// else. Spans outside the source are clamped; empty ones are ignored.
func split(source string, spans []Span) ([]statement, string) {
	lines := strings.Split(source, "\n")
	isImport := make([]bool, len(lines))

	var stmts []statement
	for _, sp := range spans {
		start, end := max(sp.Start, 1), min(sp.End, len(lines))
		if start > end {
			continue
		}
		parts := make([]string, 0, end-start+1)
		for i := start - 1; i < end; i++ {
			isImport[i] = true
			parts = append(parts, stripComment(strings.TrimSpace(lines[i])))
		}
		stmts = append(stmts, statement{line: start, text: strings.Join(parts, "\n")})
	}

	var rest strings.Builder
	for i, line := range lines {
		if isImport[i] {
			continue
		}
		rest.WriteString(line)
		rest.WriteByte('\n')
	}
	return stmts, rest.String()
}

func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		return strings.TrimSpace(line[:i])
	}
	return line
}
