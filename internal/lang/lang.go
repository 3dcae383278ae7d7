// Package lang provides a language registry mapping file extensions to
// tree-sitter grammars and the node-type profiles used by the analyzers.
package lang

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/treemap/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language
	Profile    *Profile
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// HasImportGraph reports whether files of this language contribute to the
// import graph.
func (l *Language) HasImportGraph() bool {
	return l.Profile.ModuleKey != nil && l.Profile.ImportedModules != nil
}

// ModuleKey derives the import-graph key for a repo-relative path.
func (l *Language) ModuleKey(path string) string {
	if l.Profile.ModuleKey == nil {
		return ""
	}
	return l.Profile.ModuleKey(path)
}

// ImportedModules returns the module spellings named by an import statement.
func (l *Language) ImportedModules(stmt string) []string {
	if l.Profile.ImportedModules == nil {
		return nil
	}
	return l.Profile.ImportedModules(stmt)
}

// HasImportBindings reports whether the unused-import check applies.
func (l *Language) HasImportBindings() bool {
	return l.Profile.ImportBindings != nil
}

// ImportBindings returns the local names bound by an import statement.
func (l *Language) ImportBindings(stmt string) []string {
	if l.Profile.ImportBindings == nil {
		return nil
	}
	return l.Profile.ImportBindings(stmt)
}

// Registry maps language names and file extensions to languages. It is
// built once and read-only afterwards, so it is safe to share across
// goroutines.
type Registry struct {
	languages map[string]*Language
	byExt     map[string]*Language
}

// NewRegistry builds a registry from the given languages. A language whose
// grammar failed to load is left out, which makes its files unsupported.
func NewRegistry(languages ...*Language) *Registry {
	r := &Registry{
		languages: make(map[string]*Language, len(languages)),
		byExt:     make(map[string]*Language),
	}
	for _, l := range languages {
		if l == nil || l.lang == nil || l.Profile == nil {
			name := "<nil>"
			if l != nil {
				name = l.Name
			}
			slog.Warn("lang.grammar_unavailable", "language", name)
			continue
		}
		l.Profile.compile()
		r.languages[l.Name] = l
		for _, ext := range l.Extensions {
			r.byExt[ext] = l
		}
	}
	return r
}

// DefaultRegistry returns a registry with every bundled grammar.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Python(),
		JavaScript(),
		TypeScript(),
		TSX(),
		Rust(),
		Go(),
		Java(),
		Ruby(),
	)
}

// Resolve returns the language for a file extension.
func (r *Registry) Resolve(ext string) (*Language, bool) {
	l, ok := r.byExt[ext]
	return l, ok
}

// Get returns the language registered under name.
func (r *Registry) Get(name string) (*Language, bool) {
	l, ok := r.languages[name]
	return l, ok
}

// Names returns the registered language names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.languages))
	for name := range r.languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

var nameTypes = map[string]struct{}{
	"identifier":          {},
	"name":                {},
	"type_identifier":     {},
	"property_identifier": {},
	"field_identifier":    {},
	"dotted_name":         {},
	"constant":            {},
}

// NodeName extracts the declared name of a class, function, interface or
// type-alias node. Returns "" when the node is anonymous.
func NodeName(node *sitter.Node, source []byte) string {
	if node.Type() == "arrow_function" {
		// Arrow functions are named by the declarator they are assigned to.
		parent := node.Parent()
		if parent != nil && parent.Type() == "variable_declarator" {
			if n := parent.ChildByFieldName("name"); n != nil {
				return NodeText(n, source)
			}
		}
		return ""
	}
	if n := node.ChildByFieldName("name"); n != nil {
		return NodeText(n, source)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if _, ok := nameTypes[child.Type()]; ok {
			return NodeText(child, source)
		}
	}
	// Go wraps the name of a type declaration in a type_spec.
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "type_spec" || child.Type() == "type_alias" {
			return NodeName(child, source)
		}
	}
	return ""
}

// Profile is the NodeTypeProfile of a language: which raw node types count
// as each role, plus the node types the smell heuristics look for.
type Profile struct {
	Classes     []string
	Functions   []string
	Imports     []string
	Interfaces  []string
	TypeAliases []string

	// MethodContainers are class body node types whose direct children are
	// counted as methods when they have a Methods type.
	MethodContainers []string
	Methods          []string

	// Blocks are statement sequences checked for unreachable statements
	// following a Terminators statement.
	Blocks      []string
	Terminators []string

	// Comments are comment node types; CommentPrefixes are the line prefixes
	// stripped when normalizing function bodies.
	Comments        []string
	CommentPrefixes []string

	// Docstrings enables MISSING_DOC: a class or function is documented when
	// the first statement of its body is a bare string literal.
	Docstrings bool

	// Handlers are exception handler node types passed to IsCatchAll.
	Handlers   []string
	IsCatchAll func(node *sitter.Node, source []byte) bool

	// IsImport narrows an import-role node (e.g. Ruby calls to require).
	IsImport func(node *sitter.Node, source []byte) bool

	// ModuleKey and ImportedModules enable import-graph construction.
	ModuleKey       func(path string) string
	ImportedModules func(stmt string) []string

	// ImportBindings enables the unused-import check.
	ImportBindings func(stmt string) []string

	roles       map[string]model.Role
	methods     map[string]struct{}
	containers  map[string]struct{}
	blocks      map[string]struct{}
	terminators map[string]struct{}
	comments    map[string]struct{}
	handlers    map[string]struct{}
}

func (p *Profile) compile() {
	if p.roles != nil {
		return
	}
	p.roles = make(map[string]model.Role)
	for role, types := range map[model.Role][]string{
		model.RoleClass:     p.Classes,
		model.RoleFunction:  p.Functions,
		model.RoleImport:    p.Imports,
		model.RoleInterface: p.Interfaces,
		model.RoleTypeAlias: p.TypeAliases,
	} {
		for _, t := range types {
			p.roles[t] = role
		}
	}
	p.methods = toSet(p.Methods)
	p.containers = toSet(p.MethodContainers)
	p.blocks = toSet(p.Blocks)
	p.terminators = toSet(p.Terminators)
	p.comments = toSet(p.Comments)
	p.handlers = toSet(p.Handlers)
}

// RoleOf returns the role a node type plays in this language.
func (p *Profile) RoleOf(nodeType string) model.Role {
	return p.roles[nodeType]
}

// Is reports whether nodeType belongs to role.
func (p *Profile) Is(role model.Role, nodeType string) bool {
	r, ok := p.roles[nodeType]
	return ok && r == role
}

// IsMethod reports whether nodeType is method-shaped.
func (p *Profile) IsMethod(nodeType string) bool { return has(p.methods, nodeType) }

// IsMethodContainer reports whether nodeType is a class body.
func (p *Profile) IsMethodContainer(nodeType string) bool { return has(p.containers, nodeType) }

// IsBlock reports whether nodeType is a statement block.
func (p *Profile) IsBlock(nodeType string) bool { return has(p.blocks, nodeType) }

// IsTerminator reports whether nodeType ends control flow in its block.
func (p *Profile) IsTerminator(nodeType string) bool { return has(p.terminators, nodeType) }

// IsComment reports whether nodeType is a comment.
func (p *Profile) IsComment(nodeType string) bool { return has(p.comments, nodeType) }

// IsHandler reports whether nodeType is an exception handler.
func (p *Profile) IsHandler(nodeType string) bool { return has(p.handlers, nodeType) }

func toSet(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func has(s map[string]struct{}, key string) bool {
	_, ok := s[key]
	return ok
}

var (
	cFamilyComments = []string{"//", "/*", "*/", "* "}
	hashComments    = []string{"#"}
)
