package detect

import (
	"sort"
	"strings"
)

// The normalization rules below are the single source of truth for turning a
// raw import specifier into a registry-resolvable package name. Both the
// structural extractors and the regex fallback go through normalizeReference,
// so the two paths cannot drift apart.
//
// Per language:
//
//	python      "foo.bar.baz" -> "foo"; relative ("." prefix) excluded
//	javascript  "lodash/fp"   -> "lodash"; "@scope/pkg/sub" -> "@scope/pkg";
//	            relative ("." or "/" prefix) excluded; "node:fs" -> "fs"

// normalizeReference maps a raw import specifier to a package reference.
// ok is false when the specifier does not name an external package at all
// (relative import, empty string, bare scope).
func normalizeReference(lang Language, raw string) (string, bool) {
	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "\"'`"))
	if raw == "" {
		return "", false
	}

	switch lang {
	case LangPython:
		return normalizePython(raw)
	case LangJavaScript:
		return normalizeJavaScript(raw)
	default:
		return "", false
	}
}

func normalizePython(raw string) (string, bool) {
	if strings.HasPrefix(raw, ".") {
		return "", false
	}
	base := strings.SplitN(raw, ".", 2)[0]
	base = strings.TrimSpace(base)
	if base == "" {
		return "", false
	}
	return base, true
}

func normalizeJavaScript(raw string) (string, bool) {
	// "node:fs" pins the builtin namespace; strip the prefix so the stdlib
	// classifier sees the bare module name.
	if rest, ok := strings.CutPrefix(raw, "node:"); ok {
		raw = rest
	}

	if strings.HasPrefix(raw, ".") || strings.HasPrefix(raw, "/") {
		return "", false
	}

	if strings.HasPrefix(raw, "@") {
		// Scoped packages keep exactly @scope/name.
		parts := strings.Split(raw, "/")
		if len(parts) < 2 || parts[0] == "@" || parts[1] == "" {
			return "", false
		}
		return parts[0] + "/" + parts[1], true
	}

	base := strings.SplitN(raw, "/", 2)[0]
	if base == "" {
		return "", false
	}
	return base, true
}

// collectReferences normalizes and deduplicates raw specifiers into a sorted
// reference set. Order-independence here keeps detection idempotent.
func collectReferences(lang Language, raws []string) []string {
	seen := make(map[string]bool, len(raws))
	refs := make([]string, 0, len(raws))
	for _, raw := range raws {
		ref, ok := normalizeReference(lang, raw)
		if !ok || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
