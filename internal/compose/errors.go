package compose

import (
	"fmt"

	"github.com/roach88/logos/internal/errs"
)

// CompositionViolationError reports a pipeline stage whose output breaks
// the minimal output principle.
type CompositionViolationError struct {
	errs.Sympathy
	Stage int    `json:"stage"`
	Locus string `json:"locus"`
	Type  string `json:"type"`
}

func (e *CompositionViolationError) Error() string {
	return errs.Format(errs.KindCompositionViolated, e.Locus,
		fmt.Sprintf("stage %d returned a collection (%s)", e.Stage, e.Type), e.Sympathy)
}

// Kind implements errs.Kinded.
func (e *CompositionViolationError) Kind() errs.Kind { return errs.KindCompositionViolated }

// LawCheckFailed reports a category law that did not hold for an input.
type LawCheckFailed struct {
	errs.Sympathy
	Law   string `json:"law"`
	Locus string `json:"locus"`
	Left  any    `json:"left"`
	Right any    `json:"right"`
}

func (e *LawCheckFailed) Error() string {
	return errs.Format(errs.KindLawCheckFailed, e.Locus,
		fmt.Sprintf("%s does not hold: left=%v right=%v", e.Law, e.Left, e.Right), e.Sympathy)
}

// Kind implements errs.Kinded.
func (e *LawCheckFailed) Kind() errs.Kind { return errs.KindLawCheckFailed }
