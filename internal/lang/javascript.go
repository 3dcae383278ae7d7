package lang

import (
	"github.com/smacker/go-tree-sitter/javascript"
)

// JavaScript returns the JavaScript language (.js and .jsx).
func JavaScript() *Language {
	return &Language{
		Name:       "javascript",
		Extensions: []string{".js", ".jsx"},
		lang:       javascript.GetLanguage(),
		Profile:    ecmaProfile(false),
	}
}

// ecmaProfile is shared by JavaScript, TypeScript and TSX. typed adds the
// TypeScript-only declarations.
func ecmaProfile(typed bool) *Profile {
	p := &Profile{
		Classes:          []string{"class_declaration"},
		Functions:        []string{"function_declaration", "generator_function_declaration", "method_definition", "arrow_function"},
		Imports:          []string{"import_statement"},
		MethodContainers: []string{"class_body"},
		Methods:          []string{"method_definition"},
		Blocks:           []string{"statement_block"},
		Terminators:      []string{"return_statement", "throw_statement", "break_statement", "continue_statement"},
		Comments:         []string{"comment"},
		CommentPrefixes:  cFamilyComments,
	}
	if typed {
		p.Classes = append(p.Classes, "abstract_class_declaration")
		p.Interfaces = []string{"interface_declaration"}
		p.TypeAliases = []string{"type_alias_declaration"}
	}
	return p
}
