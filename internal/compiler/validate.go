package compiler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/logos/internal/node"
)

// Validation error codes (E100-E199)
const (
	ErrSpecPurposeEmpty   = "E101" // purpose is required
	ErrInvalidAspectName  = "E102" // aspect name is not an identifier
	ErrReservedAspect     = "E103" // aspect shadows a base aspect
	ErrInvalidGrant       = "E104" // grant references an invalid aspect name
	ErrDuplicateListEntry = "E105" // duplicate constraint/property
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled spec against schema rules.
// Returns all errors found (does not fail-fast), in deterministic order.
func Validate(spec *node.Spec) []ValidationError {
	var verrs []ValidationError

	// E101: purpose is required
	if strings.TrimSpace(spec.Purpose) == "" {
		verrs = append(verrs, ValidationError{
			Field:   "purpose",
			Message: "purpose is required and must be non-empty",
			Code:    ErrSpecPurposeEmpty,
		})
	}

	names := make([]string, 0, len(spec.Aspects))
	for name := range spec.Aspects {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !identPattern.MatchString(name) {
			verrs = append(verrs, ValidationError{
				Field:   "aspects." + name,
				Message: "aspect name must be an identifier",
				Code:    ErrInvalidAspectName,
			})
		}
		// manifest may be overridden; witness and affordances are answered by the core
		if name == node.AspectWitness || name == node.AspectAffordances {
			verrs = append(verrs, ValidationError{
				Field:   "aspects." + name,
				Message: fmt.Sprintf("%q is a base aspect and cannot be redeclared", name),
				Code:    ErrReservedAspect,
			})
		}
	}

	archetypes := make([]string, 0, len(spec.Grants))
	for a := range spec.Grants {
		archetypes = append(archetypes, a)
	}
	sort.Strings(archetypes)
	for _, archetype := range archetypes {
		for _, aspect := range spec.Grants[archetype] {
			if !identPattern.MatchString(aspect) {
				verrs = append(verrs, ValidationError{
					Field:   "grants." + archetype,
					Message: fmt.Sprintf("granted aspect %q is not an identifier", aspect),
					Code:    ErrInvalidGrant,
				})
			}
		}
	}

	verrs = append(verrs, checkDuplicates("constraints", spec.Constraints)...)
	verrs = append(verrs, checkDuplicates("properties", spec.Properties)...)

	return verrs
}

func checkDuplicates(field string, entries []string) []ValidationError {
	var verrs []ValidationError
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e] {
			verrs = append(verrs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate entry %q", e),
				Code:    ErrDuplicateListEntry,
			})
		}
		seen[e] = true
	}
	return verrs
}
