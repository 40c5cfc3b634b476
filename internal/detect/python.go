package detect

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PythonExtractor collects module specifiers from `import` and `from ...
// import` statements. The walk visits every node so imports nested inside
// functions or conditionals are still found.
type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte) []string {
	var raws []string
	e.walk(root, source, &raws)
	return raws
}

func (e *PythonExtractor) walk(node *sitter.Node, source []byte, raws *[]string) {
	switch node.Kind() {
	case "import_statement":
		e.extractImport(node, source, raws)
	case "import_from_statement":
		e.extractFromImport(node, source, raws)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(node.Child(i), source, raws)
	}
}

// extractImport handles `import a.b, c as d`: every dotted_name child is a
// module, and an aliased_import resolves to its source name, never the alias.
func (e *PythonExtractor) extractImport(node *sitter.Node, source []byte, raws *[]string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "dotted_name", "identifier":
			*raws = append(*raws, nodeText(child, source))
		case "aliased_import":
			// First dotted_name/identifier is the source module; the one
			// after "as" is the alias and is ignored.
			for j := uint(0); j < child.ChildCount(); j++ {
				sub := child.Child(j)
				if sub.Kind() == "dotted_name" || sub.Kind() == "identifier" {
					*raws = append(*raws, nodeText(sub, source))
					break
				}
			}
		}
	}
}

// extractFromImport handles `from x import y`. Only the module portion before
// the `import` keyword matters; relative imports (`from . import x`)
// contribute nothing.
func (e *PythonExtractor) extractFromImport(node *sitter.Node, source []byte, raws *[]string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "relative_import":
			return
		case "import":
			// Names after the keyword are imported symbols, not modules.
			return
		case "dotted_name", "identifier":
			*raws = append(*raws, nodeText(child, source))
		}
	}
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
