package lang

import (
	"github.com/smacker/go-tree-sitter/golang"
)

// Go returns the Go language. Methods live outside their type declaration,
// so GOD_CLASS never fires for Go.
func Go() *Language {
	return &Language{
		Name:       "go",
		Extensions: []string{".go"},
		lang:       golang.GetLanguage(),
		Profile: &Profile{
			Classes:   []string{"type_declaration"},
			Functions: []string{"function_declaration", "method_declaration"},
			Imports:   []string{"import_declaration"},
			// Newer grammars wrap block statements in a statement_list.
			Blocks:          []string{"block", "statement_list"},
			Terminators:     []string{"return_statement", "break_statement", "continue_statement", "goto_statement"},
			Comments:        []string{"comment"},
			CommentPrefixes: cFamilyComments,
		},
	}
}
