package path

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/logos/internal/errs"
)

// Clause modifiers.
const (
	ClausePhase         = "phase"
	ClauseEntropy       = "entropy"
	ClauseLawCheck      = "law_check"
	ClauseRollback      = "rollback"
	ClauseMinimalOutput = "minimal_output"
)

// Annotation modifiers.
const (
	AnnotationSpan     = "span"
	AnnotationPhase    = "phase"
	AnnotationLawCheck = "law_check"
	AnnotationDot      = "dot"
)

// valueKind is the expected type of a modifier value.
type valueKind int

const (
	kindIdent valueKind = iota
	kindToken
	kindFloat01
	kindBool
	kindDotted
)

type modifierSpec struct {
	kind     valueKind
	optional bool // value may be omitted (clauses only)
}

var clauseModifiers = map[string]modifierSpec{
	ClausePhase:         {kind: kindIdent},
	ClauseEntropy:       {kind: kindFloat01},
	ClauseLawCheck:      {kind: kindBool, optional: true},
	ClauseRollback:      {kind: kindBool, optional: true},
	ClauseMinimalOutput: {kind: kindBool, optional: true},
}

var annotationModifiers = map[string]modifierSpec{
	AnnotationSpan:     {kind: kindToken},
	AnnotationPhase:    {kind: kindIdent},
	AnnotationLawCheck: {kind: kindBool},
	AnnotationDot:      {kind: kindDotted},
}

// ClauseModifiers returns the clause vocabulary in canonical order.
func ClauseModifiers() []string {
	return []string{ClausePhase, ClauseEntropy, ClauseLawCheck, ClauseRollback, ClauseMinimalOutput}
}

// AnnotationModifiers returns the annotation vocabulary in canonical order.
func AnnotationModifiers() []string {
	return []string{AnnotationSpan, AnnotationPhase, AnnotationLawCheck, AnnotationDot}
}

// SyntaxError reports a malformed handle.
// Locus is the exact failing clause, annotation or base substring.
type SyntaxError struct {
	errs.Sympathy
	Path    string `json:"path"`
	Locus   string `json:"locus"`
	Message string `json:"message"`
}

func (e *SyntaxError) Error() string {
	return errs.Format(errs.KindPathSyntax, e.Locus, e.Message, e.Sympathy)
}

// Kind implements errs.Kinded.
func (e *SyntaxError) Kind() errs.Kind { return errs.KindPathSyntax }

func syntaxErr(raw, locus, suggestion, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Sympathy: errs.Sympathy{
			Why:        "handles follow context.holon[.aspect][clause...]@annotation...",
			Suggestion: suggestion,
		},
		Path:    raw,
		Locus:   locus,
		Message: fmt.Sprintf(format, args...),
	}
}

// Parse parses a handle into its structured form.
//
// Input is NFC-normalized and trimmed before parsing so that visually
// identical handles share one cache key.
func Parse(raw string) (ParsedPath, error) {
	s := strings.TrimSpace(norm.NFC.String(raw))
	if s == "" {
		return ParsedPath{}, syntaxErr(raw, "", "use a handle like world.house", "path is empty")
	}

	base, rest := s, ""
	if cut := strings.IndexAny(s, "[@"); cut >= 0 {
		base, rest = s[:cut], s[cut:]
	}

	p, err := parseBase(raw, base)
	if err != nil {
		return ParsedPath{}, err
	}

	seenAnnotation := false
	for rest != "" {
		switch rest[0] {
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return ParsedPath{}, syntaxErr(raw, rest, "close the clause with ']'", "unterminated clause")
			}
			token := rest[:end+1]
			if seenAnnotation {
				return ParsedPath{}, syntaxErr(raw, token, "move clauses before annotations", "clause after annotation")
			}
			c, err := parseClause(raw, token)
			if err != nil {
				return ParsedPath{}, err
			}
			p.Clauses = append(p.Clauses, c)
			rest = rest[end+1:]

		case '@':
			end := len(rest)
			if next := strings.IndexAny(rest[1:], "@["); next >= 0 {
				end = next + 1
			}
			token := rest[:end]
			a, err := parseAnnotation(raw, token)
			if err != nil {
				return ParsedPath{}, err
			}
			p.Annotations = append(p.Annotations, a)
			seenAnnotation = true
			rest = rest[end:]

		default:
			return ParsedPath{}, syntaxErr(raw, rest, "separate modifiers with '[' or '@'", "unexpected trailing text")
		}
	}

	return p, nil
}

func parseBase(raw, base string) (ParsedPath, error) {
	segs := strings.Split(base, ".")
	if len(segs) < 2 {
		return ParsedPath{}, syntaxErr(raw, base, "add a holon, e.g. "+base+".house",
			"expected at least 2 dot-separated segments, got %d", len(segs))
	}
	for i, seg := range segs {
		if seg == "" {
			return ParsedPath{}, syntaxErr(raw, base, "remove the doubled or trailing '.'", "segment %d is empty", i)
		}
		if !isIdent(seg) {
			return ParsedPath{}, syntaxErr(raw, base, "segments are identifiers: letters, digits, '_' and '-'",
				"segment %q is not an identifier", seg)
		}
	}

	p := ParsedPath{Context: segs[0], Holon: segs[1]}
	if len(segs) > 2 {
		p.Aspect = strings.Join(segs[2:], ".")
	}
	return p, nil
}

func parseClause(raw, token string) (Clause, error) {
	inner := token[1 : len(token)-1]
	mod, val, hasValue := strings.Cut(inner, "=")

	spec, ok := clauseModifiers[mod]
	if !ok {
		return Clause{}, syntaxErr(raw, token, "use one of "+strings.Join(ClauseModifiers(), ", "),
			"unknown clause modifier %q", mod)
	}
	if !hasValue {
		if !spec.optional {
			return Clause{}, syntaxErr(raw, token, "write ["+mod+"=VALUE]", "clause %q requires a value", mod)
		}
		return Clause{Modifier: mod}, nil
	}
	if err := checkValue(spec.kind, val); err != nil {
		return Clause{}, syntaxErr(raw, token, describeKind(spec.kind), "invalid %s value %q: %v", mod, val, err)
	}
	return Clause{Modifier: mod, Value: val, HasValue: true}, nil
}

func parseAnnotation(raw, token string) (Annotation, error) {
	mod, val, hasValue := strings.Cut(token[1:], "=")

	spec, ok := annotationModifiers[mod]
	if !ok {
		return Annotation{}, syntaxErr(raw, token, "use one of "+strings.Join(AnnotationModifiers(), ", "),
			"unknown annotation modifier %q", mod)
	}
	if !hasValue {
		return Annotation{}, syntaxErr(raw, token, "write @"+mod+"=VALUE", "annotation %q requires a value", mod)
	}
	if err := checkValue(spec.kind, val); err != nil {
		return Annotation{}, syntaxErr(raw, token, describeKind(spec.kind), "invalid %s value %q: %v", mod, val, err)
	}
	return Annotation{Modifier: mod, Value: val}, nil
}

func checkValue(kind valueKind, val string) error {
	if val == "" {
		return fmt.Errorf("empty value")
	}
	switch kind {
	case kindIdent:
		if !isIdent(val) {
			return fmt.Errorf("not an identifier")
		}
	case kindToken:
		for _, r := range val {
			if !isTokenRune(r) {
				return fmt.Errorf("unexpected character %q", r)
			}
		}
	case kindFloat01:
		if _, err := parseEntropy(val); err != nil {
			return err
		}
	case kindBool:
		if _, err := parseBool(val); err != nil {
			return err
		}
	case kindDotted:
		for _, seg := range strings.Split(val, ".") {
			if !isIdent(seg) {
				return fmt.Errorf("segment %q is not an identifier", seg)
			}
		}
	}
	return nil
}

func describeKind(kind valueKind) string {
	switch kind {
	case kindFloat01:
		return "use a float between 0 and 1"
	case kindBool:
		return "use true or false"
	case kindDotted:
		return "use a dotted identifier path"
	case kindToken:
		return "use letters, digits, '_' and '-'"
	default:
		return "use an identifier"
	}
}

func parseEntropy(val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("not a float")
	}
	if math.IsNaN(f) || f < 0 || f > 1 {
		return 0, fmt.Errorf("out of range [0,1]")
	}
	return f, nil
}

func parseBool(val string) (bool, error) {
	switch strings.ToLower(val) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !(unicode.IsLetter(r) || r == '_') {
			return false
		}
		if !isTokenRune(r) {
			return false
		}
	}
	return true
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
