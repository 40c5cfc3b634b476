package detect

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// parserPool recycles tree-sitter parser instances to avoid the per-call
// allocation overhead of sitter.NewParser() / parser.Close(). Each pool is
// tied to a single grammar; concurrent use is safe.
type parserPool struct {
	lang *sitter.Language
	pool sync.Pool
}

func newParserPool(lang *sitter.Language) *parserPool {
	p := &parserPool{lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

func (p *parserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	// The language may have been reset externally; pin it again.
	sp.SetLanguage(p.lang)
	return sp
}

func (p *parserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.pool.Put(sp)
}
