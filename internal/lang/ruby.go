package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

// Ruby returns the Ruby language. Only require-style calls count as imports.
func Ruby() *Language {
	return &Language{
		Name:       "ruby",
		Extensions: []string{".rb"},
		lang:       ruby.GetLanguage(),
		Profile: &Profile{
			Classes:          []string{"class", "module"},
			Functions:        []string{"method", "singleton_method"},
			Imports:          []string{"call"},
			MethodContainers: []string{"body_statement"},
			Methods:          []string{"method", "singleton_method"},
			Blocks:           []string{"body_statement", "then", "else", "do_block", "block_body"},
			Terminators:      []string{"return", "break", "next"},
			Comments:         []string{"comment"},
			CommentPrefixes:  hashComments,
			Handlers:         []string{"rescue"},
			IsCatchAll:       rubyIsCatchAll,
			IsImport:         rubyIsRequire,
		},
	}
}

var rubyRequireMethods = map[string]struct{}{
	"require":          {},
	"require_relative": {},
	"load":             {},
}

func rubyIsRequire(node *sitter.Node, source []byte) bool {
	method := node.ChildByFieldName("method")
	if method == nil {
		return false
	}
	if node.ChildByFieldName("receiver") != nil {
		return false
	}
	_, ok := rubyRequireMethods[NodeText(method, source)]
	return ok
}

// rubyIsCatchAll flags a bare `rescue` and one whose exception list names
// Exception, optionally with a leading ::. A bare rescue only catches
// StandardError, but it is reported the same way.
func rubyIsCatchAll(node *sitter.Node, source []byte) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if c.Type() != "exceptions" {
			continue
		}
		for _, name := range strings.Split(NodeText(c, source), ",") {
			if strings.TrimPrefix(strings.TrimSpace(name), "::") == "Exception" {
				return true
			}
		}
		return false
	}
	return true
}
