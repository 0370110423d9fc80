package compose

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/logos/internal/errs"
)

// Law names.
const (
	LawLeftIdentity  = "left_identity"
	LawRightIdentity = "right_identity"
	LawAssociativity = "associativity"
)

// Comparator decides whether two law results are equal.
type Comparator func(left, right any) bool

// DefaultComparator compares results with go-cmp, treating nil and empty
// collections as equal. Values go-cmp cannot compare (unexported fields)
// fall back to reflect.DeepEqual.
func DefaultComparator(left, right any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = reflect.DeepEqual(left, right)
		}
	}()
	return cmp.Equal(left, right, cmpopts.EquateEmpty())
}

// LawVerificationResult is the diagnostic outcome of one law check.
type LawVerificationResult struct {
	Law    string `json:"law"`
	Locus  string `json:"locus"`
	Passed bool   `json:"passed"`
	Left   any    `json:"left"`
	Right  any    `json:"right"`
	Err    error  `json:"-"`
}

// Verifier checks category laws empirically by running both sides of a law
// on the same input. It proves the law only for morphisms that are
// referentially transparent on that input.
type Verifier struct {
	equal Comparator
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithComparator sets the equality used to compare both sides.
func WithComparator(c Comparator) VerifierOption {
	return func(v *Verifier) {
		if c != nil {
			v.equal = c
		}
	}
}

// NewVerifier creates a verifier using DefaultComparator.
func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{equal: DefaultComparator}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyLeftIdentity checks Id >> f == f on input.
func (v *Verifier) VerifyLeftIdentity(ctx context.Context, f Morphism, input any) (LawVerificationResult, error) {
	return v.check(ctx, LawLeftIdentity, []Morphism{f}, input,
		func(ctx context.Context) (any, error) { return Compose(Identity(), f).Invoke(ctx, input) },
		func(ctx context.Context) (any, error) { return f.Invoke(ctx, input) },
	)
}

// VerifyRightIdentity checks f >> Id == f on input.
func (v *Verifier) VerifyRightIdentity(ctx context.Context, f Morphism, input any) (LawVerificationResult, error) {
	return v.check(ctx, LawRightIdentity, []Morphism{f}, input,
		func(ctx context.Context) (any, error) { return Compose(f, Identity()).Invoke(ctx, input) },
		func(ctx context.Context) (any, error) { return f.Invoke(ctx, input) },
	)
}

// VerifyAssociativity checks (f >> g) >> h == f >> (g >> h) on input.
//
// Both groupings build the same structure, so each side is evaluated step
// by step: the left runs the inner composition f >> g and then h, the right
// runs f and then the inner composition g >> h.
func (v *Verifier) VerifyAssociativity(ctx context.Context, f, g, h Morphism, input any) (LawVerificationResult, error) {
	return v.check(ctx, LawAssociativity, []Morphism{f, g, h}, input,
		func(ctx context.Context) (any, error) {
			mid, err := Compose(f, g).Invoke(ctx, input)
			if err != nil {
				return nil, err
			}
			return h.Invoke(ctx, mid)
		},
		func(ctx context.Context) (any, error) {
			mid, err := f.Invoke(ctx, input)
			if err != nil {
				return nil, err
			}
			return Compose(g, h).Invoke(ctx, mid)
		},
	)
}

// VerifyAll runs the identity laws for every morphism and associativity for
// every consecutive triple. It stops at the first failing law.
func (v *Verifier) VerifyAll(ctx context.Context, input any, ms ...Morphism) ([]LawVerificationResult, error) {
	var results []LawVerificationResult
	for _, m := range ms {
		for _, verify := range []func(context.Context, Morphism, any) (LawVerificationResult, error){
			v.VerifyLeftIdentity, v.VerifyRightIdentity,
		} {
			res, err := verify(ctx, m, input)
			results = append(results, res)
			if err != nil {
				return results, err
			}
		}
	}
	for i := 0; i+2 < len(ms); i++ {
		res, err := v.VerifyAssociativity(ctx, ms[i], ms[i+1], ms[i+2], input)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

type side func(ctx context.Context) (any, error)

func (v *Verifier) check(ctx context.Context, law string, ms []Morphism, input any, left, right side) (LawVerificationResult, error) {
	res := LawVerificationResult{Law: law, Locus: lawLocus(law, ms)}

	var err error
	if res.Left, err = left(ctx); err != nil {
		res.Err = err
		return res, err
	}
	if res.Right, err = right(ctx); err != nil {
		res.Err = err
		return res, err
	}

	if v.equal(res.Left, res.Right) {
		res.Passed = true
		return res, nil
	}

	lerr := &LawCheckFailed{
		Sympathy: errs.Sympathy{
			Why:        fmt.Sprintf("both sides of %s ran on %v and diverged", law, input),
			Suggestion: "check the morphisms for side effects or hidden state",
			Related:    morphismNames(ms),
		},
		Law:   law,
		Locus: res.Locus,
		Left:  res.Left,
		Right: res.Right,
	}
	res.Err = lerr
	return res, lerr
}

// lawLocus renders "laws.<law>.<m1>.<m2>..." with dots inside morphism
// names replaced so the locus stays one dot path per morphism.
func lawLocus(law string, ms []Morphism) string {
	parts := []string{"laws", law}
	for _, m := range ms {
		parts = append(parts, strings.NewReplacer(".", "_", " ", "").Replace(m.Name()))
	}
	return strings.Join(parts, ".")
}

func morphismNames(ms []Morphism) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name()
	}
	return out
}
