package detect

import (
	"strings"

	"github.com/brownzinoart/weready/internal/core/errors"
)

// Language identifies a supported source language.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
)

// ParseLanguage normalizes a caller-supplied language tag. An empty tag is a
// caller bug and is rejected; an unknown tag is accepted as-is, because
// detection degrades to pattern extraction rather than failing.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", errors.New(errors.CodeValidationError, "language must not be empty")
	case "python", "py":
		return LangPython, nil
	case "javascript", "js", "node", "nodejs":
		return LangJavaScript, nil
	default:
		return Language(strings.ToLower(strings.TrimSpace(s))), nil
	}
}

// ExtractionMethod records how import references were obtained.
type ExtractionMethod string

const (
	MethodStructural ExtractionMethod = "structural"
	MethodFallback   ExtractionMethod = "fallback"
)

// Outcome classifies a single package reference.
type Outcome int

const (
	OutcomeBuiltin Outcome = iota
	OutcomeVerified
	OutcomeUnverified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBuiltin:
		return "known-builtin"
	case OutcomeVerified:
		return "verified-external"
	case OutcomeUnverified:
		return "unverified-external"
	default:
		return "unknown"
	}
}

// Result is the final output of one detection call. It is created fresh per
// invocation and never stored by this package.
type Result struct {
	Score           float64          `json:"score"`
	Confidence      float64          `json:"confidence"`
	Unverified      []string         `json:"unverified_packages"`
	TotalReferences int              `json:"total_references"`
	UnverifiedCount int              `json:"unverified_count"`
	Language        Language         `json:"language"`
	Method          ExtractionMethod `json:"extraction_method"`
	References      []string         `json:"references"`
}
