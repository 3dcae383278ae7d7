package analyze

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/treemap/internal/lang"
)

// nestingTypes are the control-flow constructs that add a nesting level.
var nestingTypes = map[string]struct{}{
	"if_statement":                {},
	"for_statement":               {},
	"while_statement":             {},
	"try_statement":               {},
	"with_statement":              {},
	"for_in_statement":            {},
	"if_expression":               {},
	"match_statement":             {},
	"case_clause":                 {},
	"switch_statement":            {},
	"for_of_statement":            {},
	"do_statement":                {},
	"enhanced_for_statement":      {},
	"expression_switch_statement": {},
	"type_switch_statement":       {},
	"select_statement":            {},
	"for_expression":              {},
	"while_expression":            {},
	"loop_expression":             {},
	"match_expression":            {},
}

// nestingDepth returns the maximum control-flow nesting below fn.
func nestingDepth(fn *sitter.Node) int {
	maxDepth := 0
	stack := []frame{{node: fn}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > maxDepth {
			maxDepth = f.depth
		}
		for i := 0; i < int(f.node.NamedChildCount()); i++ {
			child := f.node.NamedChild(i)
			depth := f.depth
			if _, ok := nestingTypes[child.Type()]; ok {
				depth++
			}
			if depth <= MaxDepth {
				stack = append(stack, frame{node: child, depth: depth})
			}
		}
	}
	return maxDepth
}

var paramListTypes = map[string]struct{}{
	"parameters":        {},
	"formal_parameters": {},
	"parameter_list":    {},
	"method_parameters": {},
}

var paramTypes = map[string]struct{}{
	"identifier":                     {},
	"typed_parameter":                {},
	"typed_default_parameter":        {},
	"default_parameter":              {},
	"required_parameter":             {},
	"optional_parameter":             {},
	"formal_parameter":               {},
	"spread_parameter":               {},
	"parameter":                      {},
	"parameter_declaration":          {},
	"variadic_parameter_declaration": {},
	"assignment_pattern":             {},
	"object_pattern":                 {},
	"array_pattern":                  {},
	"rest_pattern":                   {},
	"keyword_parameter":              {},
}

// countParams returns the number of declared parameters, not counting
// self or cls. Go receivers are not parameters.
func countParams(fn *sitter.Node, source []byte) int {
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		for i := 0; i < int(fn.ChildCount()); i++ {
			child := fn.Child(i)
			if _, ok := paramListTypes[child.Type()]; ok {
				list = child
				break
			}
		}
	}
	if list == nil {
		// Single bare arrow-function parameter: x => x
		if p := fn.ChildByFieldName("parameter"); p != nil {
			return 1
		}
		return 0
	}

	count := 0
	for i := 0; i < int(list.NamedChildCount()); i++ {
		param := list.NamedChild(i)
		if _, ok := paramTypes[param.Type()]; !ok {
			continue
		}
		if param.Type() == "parameter_declaration" {
			count += goParamNames(param)
			continue
		}
		name := lang.NodeName(param, source)
		if name == "" {
			name = lang.NodeText(param, source)
		}
		if name == "self" || name == "cls" {
			continue
		}
		count++
	}
	return count
}

// goParamNames counts the names in `a, b int`; an unnamed `int` is one.
func goParamNames(param *sitter.Node) int {
	n := 0
	for i := 0; i < int(param.NamedChildCount()); i++ {
		if param.NamedChild(i).Type() == "identifier" {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// hasDocstring reports whether the first statement of a class or function
// body is a bare string literal. Leading comments are skipped. A node with
// no body counts as documented.
func hasDocstring(node *sitter.Node) bool {
	body := node.ChildByFieldName("body")
	if body == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			if c := node.Child(i); c.Type() == "block" {
				body = c
				break
			}
		}
	}
	if body == nil {
		return true
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "comment":
			continue
		case "expression_statement":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if t := child.NamedChild(j).Type(); t == "string" || t == "concatenated_string" {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}

// isTestPath reports whether a repo-relative path is test code: any
// directory named test or tests, or a file named test_* or *_test.
func isTestPath(p string) bool {
	dir, file := path.Split(p)
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg == "test" || seg == "tests" {
			return true
		}
	}
	stem := strings.TrimSuffix(file, path.Ext(file))
	return strings.HasPrefix(stem, "test_") || strings.HasSuffix(stem, "_test")
}

// isPrivateOrTest reports whether a function name is exempt from MISSING_DOC.
func isPrivateOrTest(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, "test_") || name == "test"
}

// normalizeBody drops blank and full-line comment lines and trims trailing
// whitespace. Line order is preserved.
func normalizeBody(text string, commentPrefixes []string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed, commentPrefixes) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isCommentLine(trimmed string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) || trimmed == strings.TrimSpace(p) {
			return true
		}
	}
	return false
}

// lineSpan returns the number of source lines a node covers.
func lineSpan(n *sitter.Node) int {
	return int(n.EndPoint().Row) - int(n.StartPoint().Row) + 1
}

// startLine returns the 1-based first line of a node.
func startLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// firstLine returns the first line of s, trimmed.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
