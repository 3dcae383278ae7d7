// Package model defines core data structures for treemap.
package model

// Role is the semantic category a raw grammar node type maps into.
type Role string

const (
	RoleNone      Role = ""
	RoleClass     Role = "classes"
	RoleFunction  Role = "functions"
	RoleImport    Role = "imports"
	RoleInterface Role = "interfaces"
	RoleTypeAlias Role = "type_aliases"
)

// Severity ranks a finding. Reports list high before medium before low.
type Severity string

const (
	High   Severity = "high"
	Medium Severity = "medium"
	Low    Severity = "low"
)

// Severities lists every severity in report order.
var Severities = []Severity{High, Medium, Low}

// Kind identifies the heuristic that produced a finding.
type Kind string

const (
	GodClass          Kind = "GOD_CLASS"
	LongFunction      Kind = "LONG_FUNCTION"
	DeepNesting       Kind = "DEEP_NESTING"
	ManyParams        Kind = "MANY_PARAMS"
	MissingDoc        Kind = "MISSING_DOC"
	CatchAllException Kind = "CATCH_ALL_EXCEPTION"
	DeadCode          Kind = "DEAD_CODE"
	LargeFile         Kind = "LARGE_FILE"
	CircularImport    Kind = "CIRCULAR_IMPORT"
	DuplicateLogic    Kind = "DUPLICATE_LOGIC"
	UnusedImport      Kind = "UNUSED_IMPORT"
)

var kindSeverity = map[Kind]Severity{
	GodClass:          High,
	CircularImport:    High,
	CatchAllException: High,
	LongFunction:      Medium,
	DeepNesting:       Medium,
	ManyParams:        Medium,
	DeadCode:          Medium,
	DuplicateLogic:    Medium,
	MissingDoc:        Low,
	LargeFile:         Low,
	UnusedImport:      Low,
}

// Kinds returns every known finding kind.
func Kinds() []Kind {
	return []Kind{
		GodClass, CircularImport, CatchAllException,
		LongFunction, DeepNesting, ManyParams, DeadCode, DuplicateLogic,
		MissingDoc, LargeFile, UnusedImport,
	}
}

// Severity returns the fixed severity of the kind. Unknown kinds are low.
func (k Kind) Severity() Severity {
	if s, ok := kindSeverity[k]; ok {
		return s
	}
	return Low
}

// Valid reports whether k is part of the finding taxonomy.
func (k Kind) Valid() bool {
	_, ok := kindSeverity[k]
	return ok
}

// Finding is a single heuristic-detected quality issue.
type Finding struct {
	Kind     Kind
	Severity Severity
	File     string
	Line     int // 1-based; 0 when the finding has no line
	Detail   string
}

// NewFinding builds a finding with the kind's severity.
func NewFinding(kind Kind, file string, line int, detail string) Finding {
	return Finding{
		Kind:     kind,
		Severity: kind.Severity(),
		File:     file,
		Line:     line,
		Detail:   detail,
	}
}

// FileRecord is the structural summary of one successfully parsed file.
type FileRecord struct {
	Path        string
	Language    string
	LineCount   int
	Classes     []string
	Functions   []string
	Imports     []string
	Interfaces  []string
	TypeAliases []string
}

// FunctionBody is a function captured for duplicate-logic search.
type FunctionBody struct {
	File string
	Name string
	Line int
	Text string // normalized body text
}

// ImportGraph maps synthesized module keys to the raw import spellings found
// in that module. Spellings need not name a known module.
type ImportGraph struct {
	Imports map[string]map[string]struct{}
	Files   map[string]string // module key -> file path
}

// NewImportGraph returns an empty graph.
func NewImportGraph() *ImportGraph {
	return &ImportGraph{
		Imports: make(map[string]map[string]struct{}),
		Files:   make(map[string]string),
	}
}

// AddModule registers a module key for a file, with no imports yet.
func (g *ImportGraph) AddModule(key, file string) {
	if _, ok := g.Imports[key]; !ok {
		g.Imports[key] = make(map[string]struct{})
	}
	g.Files[key] = file
}

// AddImport records that module key imports spelling.
func (g *ImportGraph) AddImport(key, spelling string) {
	if _, ok := g.Imports[key]; !ok {
		g.Imports[key] = make(map[string]struct{})
	}
	g.Imports[key][spelling] = struct{}{}
}

// Report is the complete analysis result, ready for formatting.
type Report struct {
	Files    []FileRecord
	Findings []Finding
}
