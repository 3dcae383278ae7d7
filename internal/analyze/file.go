package analyze

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/treemap/internal/config"
	"github.com/phobologic/treemap/internal/lang"
	"github.com/phobologic/treemap/internal/model"
	"github.com/phobologic/treemap/internal/unused"
)

// FileResult is everything the per-file phase learns about one file.
type FileResult struct {
	Record   model.FileRecord
	Findings []model.Finding
	Bodies   []model.FunctionBody
	// RawImports are the untruncated import statements.
	RawImports []string
	// ImportSpans locate each raw import statement in Source.
	ImportSpans []unused.Span
	// Source is the decoded file text, kept for the unused-import pass.
	Source string
}

// pipeline holds one instance of every visitor, in dispatch order.
type pipeline struct {
	classes     *classVisitor
	functions   *functionVisitor
	imports     *importVisitor
	interfaces  *nameVisitor
	typeAliases *nameVisitor
	visitors    []Visitor
}

func newPipeline() *pipeline {
	p := &pipeline{
		classes:     &classVisitor{},
		functions:   &functionVisitor{},
		imports:     &importVisitor{},
		interfaces:  &nameVisitor{role: model.RoleInterface},
		typeAliases: &nameVisitor{role: model.RoleTypeAlias},
	}
	p.visitors = []Visitor{
		p.classes,
		p.functions,
		p.imports,
		p.interfaces,
		p.typeAliases,
		catchAllVisitor{},
		deadCodeVisitor{},
	}
	return p
}

// AnalyzeFile parses source with parser and runs the visitor pipeline over
// the tree in a single walk. The parser must be created for l.
// filePath is the repo-relative path used in records and findings.
func AnalyzeFile(ctx context.Context, l *lang.Language, parser *sitter.Parser, filePath string, source []byte, th config.Thresholds) (*FileResult, error) {
	if !utf8.Valid(source) {
		source = []byte(strings.ToValidUTF8(string(source), "�"))
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	text := string(source)
	lineCount := strings.Count(text, "\n") + 1

	fc := &FileContext{
		Path:       filePath,
		Language:   l,
		Profile:    l.Profile,
		Source:     source,
		Thresholds: th,
		TestPath:   isTestPath(filePath),
	}

	if lineCount > th.LargeFileLines {
		fc.report(model.LargeFile, 0, fmt.Sprintf("%s lines", formatThousands(lineCount)))
	}

	p := newPipeline()
	Walk(tree.RootNode(), func(n *sitter.Node) {
		// Keyword tokens can share a type name with a node (Ruby's rescue).
		if !n.IsNamed() {
			return
		}
		for _, v := range p.visitors {
			v.Visit(n, fc)
		}
	})

	return &FileResult{
		Record: model.FileRecord{
			Path:        filePath,
			Language:    l.Name,
			LineCount:   lineCount,
			Classes:     p.classes.names,
			Functions:   p.functions.names,
			Imports:     p.imports.display,
			Interfaces:  p.interfaces.names,
			TypeAliases: p.typeAliases.names,
		},
		Findings:    fc.findings,
		Bodies:      p.functions.bodies,
		RawImports:  p.imports.raw,
		ImportSpans: p.imports.spans,
		Source:      text,
	}, nil
}

// formatThousands renders n with comma separators: 1234567 -> 1,234,567.
func formatThousands(n int) string {
	if n < 0 {
		return "-" + formatThousands(-n)
	}
	s := strconv.Itoa(n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
