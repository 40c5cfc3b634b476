// Package detect scores source code for hallucinated dependencies: package
// names that an AI assistant invented and no public registry knows about.
//
// One call to Detect parses the source, extracts the set of external package
// references, classifies each against a standard-library allowlist and a
// live registry lookup, and aggregates the outcomes into a score. The
// package holds no state between calls and caches nothing.
package detect

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/brownzinoart/weready/internal/core/errors"
	"github.com/brownzinoart/weready/internal/detect/registry"
	"github.com/brownzinoart/weready/internal/shared/observability"
)

// Confidence model. Structural parsing is trusted more than the regex
// fallback, and any unverified finding carries the irreducible uncertainty
// of a "not found" answer from a flaky registry. The exact constants are
// tunable; the ordering is not.
const (
	confidenceStructural = 0.90
	confidenceFallback   = 0.60

	adjustmentFindings = 0.90
	adjustmentClean    = 0.95
	adjustmentNoData   = 0.50
)

// Options configures the registry clients behind a Detector.
type Options struct {
	PyPI registry.Config
	NPM  registry.Config
}

// Detector is the detection façade. Safe for concurrent use; each Detect
// call is independent.
type Detector struct {
	parser    *Parser
	verifiers map[Language]registry.Verifier
}

func NewDetector(opts Options) *Detector {
	return NewDetectorWithVerifiers(NewParser(), map[Language]registry.Verifier{
		LangPython:     registry.NewPyPI(opts.PyPI),
		LangJavaScript: registry.NewNPM(opts.NPM),
	})
}

// NewDetectorWithVerifiers wires explicit verifiers, used by tests and by
// callers that stub the registries.
func NewDetectorWithVerifiers(parser *Parser, verifiers map[Language]registry.Verifier) *Detector {
	return &Detector{
		parser:    parser,
		verifiers: verifiers,
	}
}

// Detect runs one detection call. Malformed source, unreachable registries
// and unknown languages are expected inputs and never produce an error; the
// only failures are an empty language tag and context cancellation, in which
// case the partial outcome set is discarded rather than scored.
func (d *Detector) Detect(ctx context.Context, source string, lang Language) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "detect.Detect", trace.WithAttributes(
		attribute.String("language", string(lang)),
	))
	defer span.End()

	if lang == "" {
		return nil, errors.New(errors.CodeValidationError, "language must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	refs, method := d.extract(lang, source)

	outcomes, err := d.classify(ctx, lang, refs)
	if err != nil {
		return nil, err
	}

	result := aggregate(lang, method, refs, outcomes)

	observability.DetectionDuration.WithLabelValues(string(lang), string(method)).Observe(time.Since(start).Seconds())
	observability.DetectionsTotal.WithLabelValues(string(lang), string(method)).Inc()
	observability.UnverifiedPackagesTotal.Add(float64(result.UnverifiedCount))

	span.SetAttributes(
		attribute.String("method", string(method)),
		attribute.Int("references", result.TotalReferences),
		attribute.Int("unverified", result.UnverifiedCount),
	)

	return result, nil
}

// extract tries the structural path first and degrades to pattern matching
// on parse failure or a missing grammar adapter.
func (d *Detector) extract(lang Language, source string) ([]string, ExtractionMethod) {
	if d.parser != nil && d.parser.Supported(lang) {
		refs, err := d.parser.ExtractImports(lang, []byte(source))
		if err == nil {
			return refs, MethodStructural
		}
		slog.Debug("structural extraction failed, using fallback", "language", lang, "error", err)
	}
	return fallbackExtract(lang, source), MethodFallback
}

// classify resolves every reference: builtins short-circuit without a
// network call, everything else is verified concurrently. Outcomes land in
// per-index slots, so no locking is needed.
func (d *Detector) classify(ctx context.Context, lang Language, refs []string) ([]Outcome, error) {
	outcomes := make([]Outcome, len(refs))
	verifier := d.verifiers[lang]

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		if IsBuiltin(lang, ref) {
			outcomes[i] = OutcomeBuiltin
			continue
		}
		if verifier == nil {
			// No registry for this language: nothing to accuse anyone with.
			outcomes[i] = OutcomeVerified
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			status := verifier.Verify(gctx, ref)
			if err := gctx.Err(); err != nil {
				return err
			}
			// Fail open: only an explicit "not found" marks a package as
			// unverified. See registry.StatusUnknown.
			if status == registry.StatusNotFound {
				outcomes[i] = OutcomeUnverified
			} else {
				outcomes[i] = OutcomeVerified
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func aggregate(lang Language, method ExtractionMethod, refs []string, outcomes []Outcome) *Result {
	unverified := make([]string, 0)
	for i, outcome := range outcomes {
		if outcome == OutcomeUnverified {
			unverified = append(unverified, refs[i])
		}
	}
	sort.Strings(unverified)

	base := confidenceFallback
	if method == MethodStructural {
		base = confidenceStructural
	}

	var score float64
	adjustment := adjustmentNoData
	if len(refs) > 0 {
		score = float64(len(unverified)) / float64(len(refs))
		if len(unverified) > 0 {
			adjustment = adjustmentFindings
		} else {
			adjustment = adjustmentClean
		}
	}

	if refs == nil {
		refs = []string{}
	}

	return &Result{
		Score:           score,
		Confidence:      base * adjustment,
		Unverified:      unverified,
		TotalReferences: len(refs),
		UnverifiedCount: len(unverified),
		Language:        lang,
		Method:          method,
		References:      refs,
	}
}
