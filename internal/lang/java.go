package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Java returns the Java language.
func Java() *Language {
	return &Language{
		Name:       "java",
		Extensions: []string{".java"},
		lang:       java.GetLanguage(),
		Profile: &Profile{
			Classes:          []string{"class_declaration", "interface_declaration", "enum_declaration"},
			Functions:        []string{"method_declaration", "constructor_declaration"},
			Imports:          []string{"import_declaration"},
			MethodContainers: []string{"class_body", "interface_body", "enum_body_declarations"},
			Methods:          []string{"method_declaration", "constructor_declaration"},
			Blocks:           []string{"block", "constructor_body"},
			Terminators:      []string{"return_statement", "throw_statement", "break_statement", "continue_statement"},
			Comments:         []string{"line_comment", "block_comment"},
			CommentPrefixes:  cFamilyComments,
			Handlers:         []string{"catch_clause"},
			IsCatchAll:       javaIsCatchAll,
		},
	}
}

var javaBroadTypes = map[string]struct{}{
	"Exception": {},
	"Throwable": {},
}

// javaIsCatchAll flags a catch clause whose type list names Exception or
// Throwable, optionally qualified with java.lang. Subclasses are not
// resolved; the match is on the spelled type name only.
func javaIsCatchAll(node *sitter.Node, source []byte) bool {
	var param *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if c := node.NamedChild(i); c.Type() == "catch_formal_parameter" {
			param = c
			break
		}
	}
	if param == nil {
		return false
	}
	for i := 0; i < int(param.NamedChildCount()); i++ {
		c := param.NamedChild(i)
		if c.Type() != "catch_type" {
			continue
		}
		for _, t := range strings.Split(NodeText(c, source), "|") {
			t = strings.TrimPrefix(strings.TrimSpace(t), "java.lang.")
			if _, ok := javaBroadTypes[t]; ok {
				return true
			}
		}
	}
	return false
}
