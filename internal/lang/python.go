package lang

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python returns the Python language. It is the only language with
// docstrings, an import graph and unused-import checks.
func Python() *Language {
	return &Language{
		Name:       "python",
		Extensions: []string{".py"},
		lang:       python.GetLanguage(),
		Profile: &Profile{
			Classes:          []string{"class_definition"},
			Functions:        []string{"function_definition"},
			Imports:          []string{"import_statement", "import_from_statement"},
			MethodContainers: []string{"block"},
			Methods:          []string{"function_definition"},
			Blocks:           []string{"block"},
			Terminators:      []string{"return_statement", "raise_statement", "break_statement", "continue_statement"},
			Comments:         []string{"comment"},
			CommentPrefixes:  hashComments,
			Docstrings:       true,
			Handlers:         []string{"except_clause"},
			IsCatchAll:       pythonIsCatchAll,
			ModuleKey:        pythonModuleKey,
			ImportedModules:  pythonImportedModules,
			ImportBindings:   pythonImportBindings,
		},
	}
}

// pythonIsCatchAll flags a bare `except:` and any handler whose type text
// contains "Exception". The containment test is textual, so
// `except MyException:` is flagged too.
func pythonIsCatchAll(node *sitter.Node, source []byte) bool {
	hasType := false
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier", "as_pattern":
			if strings.Contains(NodeText(child, source), "Exception") {
				return true
			}
			hasType = true
		case "block", "comment":
		default:
			hasType = true
		}
	}
	return !hasType
}

// pythonModuleKey turns pkg/sub/mod.py into pkg.sub.mod.
func pythonModuleKey(path string) string {
	p := strings.TrimSuffix(filepath.ToSlash(path), ".py")
	return strings.ReplaceAll(p, "/", ".")
}

// pythonImportedModules returns the module spellings of an import statement:
// the source module of a from-import, or every module of a plain import.
func pythonImportedModules(stmt string) []string {
	stmt = CollapseWhitespace(stmt)
	switch {
	case strings.HasPrefix(stmt, "from "):
		fields := strings.Fields(stmt)
		if len(fields) < 2 {
			return nil
		}
		return []string{fields[1]}
	case strings.HasPrefix(stmt, "import "):
		var mods []string
		for _, part := range splitImportList(strings.TrimPrefix(stmt, "import ")) {
			mod, _ := splitAlias(part)
			if mod != "" {
				mods = append(mods, mod)
			}
		}
		return mods
	}
	return nil
}

// pythonImportBindings returns the local names an import statement binds:
// the alias if present, else the last dotted component. Wildcards bind
// nothing we can check.
func pythonImportBindings(stmt string) []string {
	stmt = CollapseWhitespace(strings.ReplaceAll(stmt, "\\", " "))
	var list string
	switch {
	case strings.HasPrefix(stmt, "from __future__ "):
		// Compiler directives, never referenced by name.
		return nil
	case strings.HasPrefix(stmt, "from "):
		idx := strings.Index(stmt, " import ")
		if idx < 0 {
			return nil
		}
		list = stmt[idx+len(" import "):]
	case strings.HasPrefix(stmt, "import "):
		list = strings.TrimPrefix(stmt, "import ")
	default:
		return nil
	}

	var names []string
	for _, part := range splitImportList(list) {
		mod, alias := splitAlias(part)
		if mod == "*" || mod == "" {
			continue
		}
		if alias != "" {
			names = append(names, alias)
			continue
		}
		if i := strings.LastIndex(mod, "."); i >= 0 {
			mod = mod[i+1:]
		}
		if mod != "" {
			names = append(names, mod)
		}
	}
	return names
}

func splitImportList(list string) []string {
	list = strings.NewReplacer("(", " ", ")", " ").Replace(list)
	if i := strings.Index(list, "#"); i >= 0 {
		list = list[:i]
	}
	var parts []string
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), ";"))
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func splitAlias(part string) (mod, alias string) {
	fields := strings.Fields(part)
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) >= 3 && fields[1] == "as" {
		return fields[0], fields[2]
	}
	return fields[0], ""
}
