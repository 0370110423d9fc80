package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/logos/internal/errs"
	"github.com/roach88/logos/internal/node"
)

// CompileValue parses a CUE value into a spec node for handle.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value is the spec struct itself, e.g.:
//
//	purpose: "A dwelling"
//	aspects: {
//		open: { description: "Open the door", emit: "door opened" }
//		inspect: { archetypes: ["architect"] }
//	}
//	grants: { "*": ["knock"] }
//	constraints: ["load_bearing"]
//	properties: ["mutable"]
func CompileValue(handle string, v cue.Value) (*node.Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &node.Spec{
		SpecHandle: handle,
		Aspects:    make(map[string]node.SpecAspect),
	}

	// Parse purpose (required)
	purposeVal := v.LookupPath(cue.ParsePath("purpose"))
	if !purposeVal.Exists() {
		return nil, &CompileError{
			Field:   "purpose",
			Message: "purpose is required",
			Pos:     v.Pos(),
		}
	}
	purpose, err := purposeVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Purpose = purpose

	// Parse aspects (optional)
	if err := parseAspects(v, spec); err != nil {
		return nil, err
	}

	// Parse grants (optional)
	grantsVal := v.LookupPath(cue.ParsePath("grants"))
	if grantsVal.Exists() {
		spec.Grants = make(map[string][]string)
		iter, err := grantsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			aspects, err := stringList(iter.Value(), "grants."+iter.Selector().Unquoted())
			if err != nil {
				return nil, err
			}
			spec.Grants[iter.Selector().Unquoted()] = aspects
		}
	}

	// Parse constraints and properties (optional lists)
	if spec.Constraints, err = optionalStringList(v, "constraints"); err != nil {
		return nil, err
	}
	if spec.Properties, err = optionalStringList(v, "properties"); err != nil {
		return nil, err
	}

	if verrs := Validate(spec); len(verrs) > 0 {
		first := verrs[0]
		return nil, &CompileError{
			Field:   first.Field,
			Message: first.Message,
			Pos:     v.Pos(),
		}
	}

	return spec, nil
}

// parseAspects extracts aspect declarations.
func parseAspects(v cue.Value, spec *node.Spec) error {
	aspectsVal := v.LookupPath(cue.ParsePath("aspects"))
	if !aspectsVal.Exists() {
		return nil
	}

	iter, err := aspectsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Selector().Unquoted()
		aspectVal := iter.Value()
		aspect := node.SpecAspect{Name: name}

		if aspectVal.IncompleteKind() != cue.StructKind {
			return &CompileError{
				Field:   fmt.Sprintf("aspects.%s", name),
				Message: "aspect must be a struct",
				Pos:     aspectVal.Pos(),
			}
		}

		descVal := aspectVal.LookupPath(cue.ParsePath("description"))
		if descVal.Exists() {
			desc, err := descVal.String()
			if err != nil {
				return formatCUEError(err)
			}
			aspect.Description = desc
		}

		archetypes, err := optionalStringList(aspectVal, "archetypes")
		if err != nil {
			return err
		}
		aspect.Archetypes = archetypes

		emitVal := aspectVal.LookupPath(cue.ParsePath("emit"))
		if emitVal.Exists() {
			if err := emitVal.Validate(cue.Concrete(true)); err != nil {
				return &CompileError{
					Field:   fmt.Sprintf("aspects.%s.emit", name),
					Message: "emit must be a concrete value",
					Pos:     emitVal.Pos(),
				}
			}
			var emit any
			if err := emitVal.Decode(&emit); err != nil {
				return formatCUEError(err)
			}
			aspect.Emit = emit
			aspect.HasEmit = true
		}

		spec.Aspects[name] = aspect
	}

	return nil
}

// optionalStringList reads field as a list of strings when present.
func optionalStringList(v cue.Value, field string) ([]string, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return nil, nil
	}
	return stringList(val, field)
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a list of strings",
			Pos:     v.Pos(),
		}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: "must be a list of strings",
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a spec validation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Kind implements errs.Kinded.
func (e *CompileError) Kind() errs.Kind { return errs.KindCompile }

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	cerrs := errors.Errors(err)
	if len(cerrs) == 0 {
		return err
	}

	// Return first error with position info
	first := cerrs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
