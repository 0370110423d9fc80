package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/roach88/logos/internal/errs"
)

// PathNotFoundError reports a handle whose context has no resolver.
type PathNotFoundError struct {
	errs.Sympathy
	Handle      string   `json:"handle"`
	Context     string   `json:"context"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *PathNotFoundError) Error() string {
	return errs.Format(errs.KindPathNotFound, e.Handle,
		fmt.Sprintf("unknown context %q", e.Context), e.Sympathy)
}

// Kind implements errs.Kinded.
func (e *PathNotFoundError) Kind() errs.Kind { return errs.KindPathNotFound }

// IsPathNotFound reports whether err is a PathNotFoundError.
func IsPathNotFound(err error) bool {
	return errs.Is(err, errs.KindPathNotFound)
}

// Similar returns up to limit candidates ordered by similarity to target,
// most similar first. Ties are broken alphabetically.
func Similar(target string, candidates []string, limit int) []string {
	type scored struct {
		s     string
		ratio float64
	}
	a := strings.Split(target, "")
	all := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		m := difflib.NewMatcher(a, strings.Split(c, ""))
		all = append(all, scored{s: c, ratio: m.Ratio()})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].ratio != all[j].ratio {
			return all[i].ratio > all[j].ratio
		}
		return all[i].s < all[j].s
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]string, len(all))
	for i, sc := range all {
		out[i] = sc.s
	}
	return out
}
