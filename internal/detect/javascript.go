package detect

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// JavaScriptExtractor collects module specifiers from ESM imports,
// re-exports, CommonJS require() calls and dynamic import() calls.
type JavaScriptExtractor struct{}

func (e *JavaScriptExtractor) Extract(root *sitter.Node, source []byte) []string {
	var raws []string
	e.walk(root, source, &raws)
	return raws
}

func (e *JavaScriptExtractor) walk(node *sitter.Node, source []byte, raws *[]string) {
	switch node.Kind() {
	case "import_statement", "export_statement":
		if src := node.ChildByFieldName("source"); src != nil {
			*raws = append(*raws, nodeText(src, source))
		}
	case "call_expression":
		e.extractCall(node, source, raws)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(node.Child(i), source, raws)
	}
}

// extractCall handles require("pkg") and import("pkg"). Only a literal string
// argument counts; a computed specifier cannot be resolved statically.
func (e *JavaScriptExtractor) extractCall(node *sitter.Node, source []byte, raws *[]string) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := nodeText(fn, source)
	if name != "require" && name != "import" {
		return
	}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg.Kind() == "string" {
			*raws = append(*raws, nodeText(arg, source))
			return
		}
	}
}
