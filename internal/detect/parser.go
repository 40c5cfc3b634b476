package detect

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/brownzinoart/weready/internal/core/errors"
)

// Extractor walks one parsed syntax tree and yields the raw import
// specifiers it finds. Specifiers are normalized and deduplicated by the
// caller, so both extractors stay rule-free.
type Extractor interface {
	Extract(root *sitter.Node, source []byte) []string
}

// Parser owns the grammar adapters and structural extractors for all
// supported languages. It is safe for concurrent use.
type Parser struct {
	loader     *GrammarLoader
	pools      map[Language]*parserPool
	extractors map[Language]Extractor
}

func NewParser() *Parser {
	loader := NewGrammarLoader()

	p := &Parser{
		loader:     loader,
		pools:      make(map[Language]*parserPool),
		extractors: make(map[Language]Extractor),
	}

	p.register(LangPython, &PythonExtractor{})
	p.register(LangJavaScript, &JavaScriptExtractor{})

	return p
}

func (p *Parser) register(lang Language, e Extractor) {
	grammar := p.loader.Grammar(lang)
	if grammar == nil {
		return
	}
	p.pools[lang] = newParserPool(grammar)
	p.extractors[lang] = e
}

// Supported reports whether a structural path exists for lang.
func (p *Parser) Supported(lang Language) bool {
	return p.extractors[lang] != nil
}

// ExtractImports parses source and returns the normalized, deduplicated set
// of external package references. Any parse failure, including an internal
// parser panic, surfaces as an error so the caller can degrade to the
// fallback extractor instead of aborting the detection call.
func (p *Parser) ExtractImports(lang Language, source []byte) (refs []string, err error) {
	extractor := p.extractors[lang]
	pool := p.pools[lang]
	if extractor == nil || pool == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "no grammar adapter for language"),
			errors.CtxLanguage, string(lang),
		)
	}

	defer func() {
		if r := recover(); r != nil {
			refs = nil
			err = fmt.Errorf("parser panic for language %q: %v", lang, r)
		}
	}()

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse failed for language %q", lang)
	}
	defer tree.Close()

	raws := extractor.Extract(tree.RootNode(), source)
	return collectReferences(lang, raws), nil
}
