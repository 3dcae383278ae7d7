package analyze

import (
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/treemap/internal/config"
	"github.com/phobologic/treemap/internal/lang"
	"github.com/phobologic/treemap/internal/model"
	"github.com/phobologic/treemap/internal/unused"
)

// maxImportText is the display width of a recorded import statement.
const maxImportText = 80

// Visitor inspects one node at a time during the single per-file walk.
// Each visitor reacts only to its own node types and keeps its own
// accumulator; the only shared state is the findings list.
type Visitor interface {
	Visit(n *sitter.Node, fc *FileContext)
}

// FileContext is the per-file state shared by every visitor.
type FileContext struct {
	Path       string
	Language   *lang.Language
	Profile    *lang.Profile
	Source     []byte
	Thresholds config.Thresholds
	TestPath   bool

	findings []model.Finding
}

func (fc *FileContext) report(kind model.Kind, line int, detail string) {
	fc.findings = append(fc.findings, model.NewFinding(kind, fc.Path, line, detail))
}

func (fc *FileContext) text(n *sitter.Node) string {
	return lang.NodeText(n, fc.Source)
}

// classVisitor records class names and flags GOD_CLASS and MISSING_DOC.
type classVisitor struct {
	names []string
}

func (v *classVisitor) Visit(n *sitter.Node, fc *FileContext) {
	if !fc.Profile.Is(model.RoleClass, n.Type()) {
		return
	}
	name := lang.NodeName(n, fc.Source)
	if name == "" {
		return
	}
	v.names = append(v.names, name)

	methods := countMethods(n, fc.Profile)
	if methods > fc.Thresholds.GodClassMethods {
		fc.report(model.GodClass, startLine(n), fmt.Sprintf("%s has %d methods", name, methods))
	}

	if fc.Profile.Docstrings && !fc.TestPath && !hasDocstring(n) {
		fc.report(model.MissingDoc, startLine(n), "class "+name)
	}
}

// countMethods counts method-shaped children of a class, either directly
// or inside its body container.
func countMethods(class *sitter.Node, p *lang.Profile) int {
	count := 0
	for i := 0; i < int(class.NamedChildCount()); i++ {
		child := class.NamedChild(i)
		switch {
		case p.IsMethod(child.Type()):
			count++
		case p.IsMethodContainer(child.Type()):
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if p.IsMethod(child.NamedChild(j).Type()) {
					count++
				}
			}
		}
	}
	return count
}

// functionVisitor records function names, flags LONG_FUNCTION,
// DEEP_NESTING, MANY_PARAMS and MISSING_DOC, and captures bodies for
// duplicate search.
type functionVisitor struct {
	names  []string
	bodies []model.FunctionBody
}

func (v *functionVisitor) Visit(n *sitter.Node, fc *FileContext) {
	if !fc.Profile.Is(model.RoleFunction, n.Type()) {
		return
	}
	name := lang.NodeName(n, fc.Source)
	if name == "" {
		return
	}
	v.names = append(v.names, name)
	line := startLine(n)
	th := fc.Thresholds

	span := lineSpan(n)
	if span > th.LongFunctionLines {
		fc.report(model.LongFunction, line, fmt.Sprintf("%s() is %d lines", name, span))
	}

	if depth := nestingDepth(n); depth > th.NestingDepth {
		fc.report(model.DeepNesting, line, fmt.Sprintf("%s() has %d nesting levels", name, depth))
	}

	if params := countParams(n, fc.Source); params > th.MaxParams {
		fc.report(model.ManyParams, line, fmt.Sprintf("%s() has %d parameters", name, params))
	}

	if fc.Profile.Docstrings && !fc.TestPath && !isPrivateOrTest(name) && !hasDocstring(n) {
		fc.report(model.MissingDoc, line, name+"()")
	}

	if span >= th.MinBodyLines {
		body := n.ChildByFieldName("body")
		if body == nil {
			body = n
		}
		v.bodies = append(v.bodies, model.FunctionBody{
			File: fc.Path,
			Name: name,
			Line: line,
			Text: normalizeBody(fc.text(body), fc.Profile.CommentPrefixes),
		})
	}
}

// importVisitor records import statements: the full text for the corpus
// passes and a truncated form for display.
type importVisitor struct {
	display []string
	raw     []string
	spans   []unused.Span
}

func (v *importVisitor) Visit(n *sitter.Node, fc *FileContext) {
	if !fc.Profile.Is(model.RoleImport, n.Type()) {
		return
	}
	if fc.Profile.IsImport != nil && !fc.Profile.IsImport(n, fc.Source) {
		return
	}
	text := strings.TrimSpace(fc.text(n))
	if text == "" {
		return
	}
	v.raw = append(v.raw, text)
	v.spans = append(v.spans, unused.Span{Start: startLine(n), End: int(n.EndPoint().Row) + 1})
	v.display = append(v.display, truncate(lang.CollapseWhitespace(text), maxImportText))
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}

// nameVisitor records the names of one role (interfaces, type aliases).
type nameVisitor struct {
	role  model.Role
	names []string
}

func (v *nameVisitor) Visit(n *sitter.Node, fc *FileContext) {
	if !fc.Profile.Is(v.role, n.Type()) {
		return
	}
	if name := lang.NodeName(n, fc.Source); name != "" {
		v.names = append(v.names, name)
	}
}

// catchAllVisitor flags exception handlers the language's heuristic
// considers catch-all.
type catchAllVisitor struct{}

func (catchAllVisitor) Visit(n *sitter.Node, fc *FileContext) {
	if fc.Profile.IsCatchAll == nil || !fc.Profile.IsHandler(n.Type()) {
		return
	}
	if fc.Profile.IsCatchAll(n, fc.Source) {
		fc.report(model.CatchAllException, startLine(n), firstLine(fc.text(n)))
	}
}

// deadCodeVisitor flags the first statement following a return, raise,
// break, continue or throw in the same block. Later statements in that
// block are not reported again.
type deadCodeVisitor struct{}

func (deadCodeVisitor) Visit(n *sitter.Node, fc *FileContext) {
	p := fc.Profile
	if !p.IsBlock(n.Type()) {
		return
	}
	var terminator *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		stmt := n.NamedChild(i)
		if p.IsComment(stmt.Type()) {
			continue
		}
		if terminator != nil {
			fc.report(model.DeadCode, startLine(stmt), "unreachable code after "+keyword(terminator, fc))
			return
		}
		if isTerminator(stmt, p) {
			terminator = stmt
		}
	}
}

func keyword(stmt *sitter.Node, fc *FileContext) string {
	if fields := strings.Fields(fc.text(stmt)); len(fields) > 0 {
		return strings.TrimSuffix(fields[0], ";")
	}
	return stmt.Type()
}

func isTerminator(stmt *sitter.Node, p *lang.Profile) bool {
	if p.IsTerminator(stmt.Type()) {
		return true
	}
	// Rust and friends wrap `return x;` in an expression statement.
	if stmt.Type() == "expression_statement" && stmt.NamedChildCount() > 0 {
		return p.IsTerminator(stmt.NamedChild(0).Type())
	}
	return false
}
