package detect

import (
	"regexp"
	"strings"
)

// Fallback extraction scans raw source text when no grammar adapter exists
// or structural parsing failed. The patterns approximate each language's
// import syntax; precision is lower than the structural path, which is why
// results carry MethodFallback. Normalization (relative exclusion, scoped
// truncation, alias resolution) is shared with the structural path via
// collectReferences.

var (
	pyImportRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(.+)$`)
	pyFromRe   = regexp.MustCompile(`(?m)^[ \t]*from[ \t]+([.\w]+)[ \t]+import\b`)

	jsImportRe  = regexp.MustCompile(`(?m)import\s+(?:[\w$*{},\s]+\s+from\s+)?['"]([^'"]+)['"]`)
	jsExportRe  = regexp.MustCompile(`(?m)export\s+[\w$*{},\s]+\s+from\s+['"]([^'"]+)['"]`)
	jsRequireRe = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	jsDynamicRe = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)
)

// fallbackExtract returns the normalized reference set for source, or nil
// when no patterns exist for lang.
func fallbackExtract(lang Language, source string) []string {
	var raws []string

	switch lang {
	case LangPython:
		for _, m := range pyImportRe.FindAllStringSubmatch(source, -1) {
			raws = append(raws, splitPythonImportList(m[1])...)
		}
		for _, m := range pyFromRe.FindAllStringSubmatch(source, -1) {
			raws = append(raws, m[1])
		}
	case LangJavaScript:
		for _, re := range []*regexp.Regexp{jsImportRe, jsExportRe, jsRequireRe, jsDynamicRe} {
			for _, m := range re.FindAllStringSubmatch(source, -1) {
				raws = append(raws, m[1])
			}
		}
	default:
		return nil
	}

	return collectReferences(lang, raws)
}

// splitPythonImportList splits `a.b, c as d` into module names, dropping
// aliases so `import numpy as np` yields numpy, never np.
func splitPythonImportList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, " as "); idx != -1 {
			part = strings.TrimSpace(part[:idx])
		}
		// A trailing comment or statement separator is noise, not a module.
		if idx := strings.IndexAny(part, " \t#;"); idx != -1 {
			part = part[:idx]
		}
		out = append(out, part)
	}
	return out
}
