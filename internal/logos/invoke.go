package logos

import (
	"context"

	"github.com/roach88/logos/internal/compose"
	"github.com/roach88/logos/internal/errs"
	"github.com/roach88/logos/internal/gate"
	"github.com/roach88/logos/internal/node"
	"github.com/roach88/logos/internal/path"
	"github.com/roach88/logos/internal/store"
)

// Kwargs injected from clauses when the caller did not set them.
const (
	KwargPhase   = "phase"
	KwargEntropy = "entropy"
)

// Invoke parses raw, resolves its node and invokes its aspect for observer.
//
// The path must name an aspect. A [phase=...] clause (or @phase annotation)
// and an [entropy=...] clause are passed to the node as the "phase" and
// "entropy" kwargs unless kwargs already holds them. A nil observer fails
// with ObserverRequiredError.
func (l *Logos) Invoke(ctx context.Context, raw string, observer *node.ObserverMeta, kwargs node.Kwargs) (any, error) {
	p, err := path.Parse(raw)
	if err != nil {
		return nil, err
	}
	return l.InvokePath(ctx, p, observer, kwargs)
}

// InvokePath invokes an already parsed path. It implements compose.Invoker,
// so composed paths run through the same gate and journal as Invoke.
func (l *Logos) InvokePath(ctx context.Context, p path.ParsedPath, observer *node.ObserverMeta, kwargs node.Kwargs) (any, error) {
	if p.Aspect == "" {
		return nil, &path.SyntaxError{
			Sympathy: errs.Sympathy{
				Why:        "an invocation needs to know which aspect to call",
				Suggestion: "append an aspect, e.g. " + p.Handle() + "." + node.AspectManifest,
			},
			Path:    p.FullPath(),
			Locus:   p.Base(),
			Message: "path has no aspect to invoke",
		}
	}

	n, err := l.resolver.ResolveParsed(ctx, p)
	if err != nil {
		l.record(ctx, p, observer, nil, err)
		return nil, err
	}

	kw := kwargs.Clone()
	if phase, ok := p.Phase(); ok {
		if _, set := kw[KwargPhase]; !set {
			kw[KwargPhase] = phase
		}
	}
	if entropy, ok := p.Entropy(); ok {
		if _, set := kw[KwargEntropy]; !set {
			kw[KwargEntropy] = entropy
		}
	}

	out, err := gate.CheckAndInvoke(ctx, n, p.Aspect, observer, kw)
	l.record(ctx, p, observer, out, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Compose builds a pipeline over paths that invokes through this Logos.
func (l *Logos) Compose(paths ...string) (*compose.ComposedPath, error) {
	cp, err := compose.NewComposedPath(l, paths...)
	if err != nil {
		return nil, err
	}
	if !l.minimalOutput {
		cp = cp.WithoutMinimalOutput()
	}
	return cp, nil
}

// Morphism lifts one path into a morphism for observer, for law checks and
// hand-built pipelines.
func (l *Logos) Morphism(raw string, observer *node.ObserverMeta, kwargs node.Kwargs) (compose.Morphism, error) {
	cp, err := l.Compose(raw)
	if err != nil {
		return nil, err
	}
	return cp.AsMorphism(observer, kwargs), nil
}

// VerifyLaws checks both identity laws for every morphism and
// associativity for every consecutive triple, journaling each check.
// It stops at the first failing law and returns its LawCheckFailed.
func (l *Logos) VerifyLaws(ctx context.Context, input any, ms ...compose.Morphism) ([]compose.LawVerificationResult, error) {
	results, err := l.verifier.VerifyAll(ctx, input, ms...)
	if l.journal != nil {
		span := l.spans.Generate()
		for _, res := range results {
			lc := store.LawCheck{
				Span:   span,
				Law:    res.Law,
				Locus:  res.Locus,
				Passed: res.Passed,
				Left:   store.Marshal(res.Left),
				Right:  store.Marshal(res.Right),
			}
			if res.Err != nil {
				lc.Error = res.Err.Error()
			}
			if _, jerr := l.journal.RecordLawCheck(ctx, lc); jerr != nil {
				l.logger.Warn("law check not journaled", "locus", res.Locus, "error", jerr)
			}
		}
	}
	return results, err
}

// spanOf returns the @span annotation, or a generated span.
func (l *Logos) spanOf(p path.ParsedPath) string {
	if a, ok := p.Annotation(path.AnnotationSpan); ok {
		return a.Value
	}
	return l.spans.Generate()
}

// record journals one invocation. Journal failures are logged, never
// returned: the journal is diagnostic only.
func (l *Logos) record(ctx context.Context, p path.ParsedPath, observer *node.ObserverMeta, out any, invokeErr error) {
	if l.journal == nil {
		return
	}

	span := l.spanOf(p)

	inv := store.Invocation{
		Span:    span,
		Path:    p.FullPath(),
		Handle:  p.Handle(),
		Aspect:  p.Aspect,
		Outcome: store.OutcomeOK,
	}
	if observer != nil {
		inv.Observer = observer.Name
		inv.Archetype = observer.Archetype
	}
	if invokeErr != nil {
		inv.Outcome = store.OutcomeError
		inv.ErrorKind = string(errs.KindOf(invokeErr))
		inv.Error = invokeErr.Error()
	} else {
		inv.Result = store.Marshal(out)
	}

	// Journal writes outlive a cancelled invocation.
	if _, err := l.journal.RecordInvocation(context.WithoutCancel(ctx), inv); err != nil {
		l.logger.Warn("invocation not journaled", "path", inv.Path, "error", err)
	}
}
