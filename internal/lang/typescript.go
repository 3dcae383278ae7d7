package lang

import (
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScript returns the TypeScript language.
func TypeScript() *Language {
	return &Language{
		Name:       "typescript",
		Extensions: []string{".ts"},
		lang:       typescript.GetLanguage(),
		Profile:    ecmaProfile(true),
	}
}

// TSX returns TypeScript with JSX. It needs its own grammar.
func TSX() *Language {
	return &Language{
		Name:       "tsx",
		Extensions: []string{".tsx"},
		lang:       tsx.GetLanguage(),
		Profile:    ecmaProfile(true),
	}
}
