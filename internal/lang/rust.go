package lang

import (
	"github.com/smacker/go-tree-sitter/rust"
)

// Rust returns the Rust language. impl blocks count as classes so that
// their associated functions feed GOD_CLASS.
func Rust() *Language {
	return &Language{
		Name:       "rust",
		Extensions: []string{".rs"},
		lang:       rust.GetLanguage(),
		Profile: &Profile{
			Classes:          []string{"struct_item", "enum_item", "impl_item"},
			Functions:        []string{"function_item"},
			Imports:          []string{"use_declaration"},
			MethodContainers: []string{"declaration_list"},
			Methods:          []string{"function_item"},
			Blocks:           []string{"block"},
			Terminators: []string{
				"return_expression", "break_expression", "continue_expression",
			},
			Comments:        []string{"line_comment", "block_comment"},
			CommentPrefixes: cFamilyComments,
		},
	}
}
