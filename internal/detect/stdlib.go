package detect

import (
	_ "embed"
	"strings"
)

//go:embed stdlib/python.txt
var pythonStdlibData string

//go:embed stdlib/node.txt
var nodeStdlibData string

var pythonStdlib = map[string]bool{}
var nodeStdlib = map[string]bool{}

func init() {
	loadStdlib(pythonStdlib, pythonStdlibData)
	loadStdlib(nodeStdlib, nodeStdlibData)
}

func loadStdlib(dst map[string]bool, data string) {
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		dst[line] = true
		// Add the base name: e.g. urllib.request -> urllib.
		if idx := strings.IndexAny(line, "./"); idx != -1 {
			dst[line[:idx]] = true
		}
	}
}

// IsBuiltin reports whether ref names a standard-library module of lang.
// Pure lookup: no network, no cache. Builtins are never flagged and never
// incur a registry call.
func IsBuiltin(lang Language, ref string) bool {
	switch lang {
	case LangPython:
		return pythonStdlib[ref]
	case LangJavaScript:
		return nodeStdlib[ref]
	default:
		return false
	}
}
