package detect

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// GrammarLoader holds the compiled-in tree-sitter grammars. Grammars are
// registered once at startup; a language without a grammar is not an error,
// it simply has no structural path.
type GrammarLoader struct {
	languages map[Language]*sitter.Language
}

func NewGrammarLoader() *GrammarLoader {
	gl := &GrammarLoader{
		languages: make(map[Language]*sitter.Language),
	}

	gl.languages[LangPython] = sitter.NewLanguage(tree_sitter_python.Language())
	gl.languages[LangJavaScript] = sitter.NewLanguage(tree_sitter_javascript.Language())

	return gl
}

// Grammar returns the grammar for lang, or nil when none is registered.
func (gl *GrammarLoader) Grammar(lang Language) *sitter.Language {
	return gl.languages[lang]
}
