package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/logos/internal/node"
)

// Scenario is a YAML test scenario.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Specs is a CUE spec directory laid out as <context>/<holon>.cue.
	// LoadScenario resolves it relative to the scenario file.
	Specs string `yaml:"specs,omitempty"`

	// Observer is used by steps that do not name their own.
	Observer *node.ObserverMeta `yaml:"observer,omitempty"`

	// MinimalOutput overrides the minimal output check of compose steps.
	MinimalOutput *bool `yaml:"minimal_output,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation. Exactly one of Invoke, Compose, Define and Laws
// is set.
type Step struct {
	Invoke  string   `yaml:"invoke,omitempty"`
	Compose []string `yaml:"compose,omitempty"`
	Define  string   `yaml:"define,omitempty"`
	Laws    []string `yaml:"laws,omitempty"`

	// Args are kwargs for invoke, compose and laws steps.
	Args map[string]any `yaml:"args,omitempty"`

	// Input seeds compose and laws steps.
	Input any `yaml:"input,omitempty"`

	// Define fields.
	Extends       []string `yaml:"extends,omitempty"`
	Subsumes      []string `yaml:"subsumes,omitempty"`
	Justification string   `yaml:"justification,omitempty"`
	Spec          string   `yaml:"spec,omitempty"`

	Observer *node.ObserverMeta `yaml:"observer,omitempty"`
	Expect   *Expect            `yaml:"expect,omitempty"`
}

// Kind names the operation of the step.
func (s Step) Kind() string {
	switch {
	case s.Invoke != "":
		return StepInvoke
	case len(s.Compose) > 0:
		return StepCompose
	case s.Define != "":
		return StepDefine
	case len(s.Laws) > 0:
		return StepLaws
	}
	return ""
}

// Target is what the step acts on, for reports.
func (s Step) Target() string {
	switch s.Kind() {
	case StepInvoke:
		return s.Invoke
	case StepCompose:
		return joinPaths(s.Compose)
	case StepDefine:
		return s.Define
	case StepLaws:
		return joinPaths(s.Laws)
	}
	return ""
}

func (s Step) operations() int {
	n := 0
	if s.Invoke != "" {
		n++
	}
	if len(s.Compose) > 0 {
		n++
	}
	if s.Define != "" {
		n++
	}
	if len(s.Laws) > 0 {
		n++
	}
	return n
}

// Step kinds.
const (
	StepInvoke  = "invoke"
	StepCompose = "compose"
	StepDefine  = "define"
	StepLaws    = "laws"
)

// Expect is the expected outcome of a step. Without an Expect a step must
// succeed.
type Expect struct {
	// Error is the expected error kind, e.g. AffordanceError.
	Error string `yaml:"error,omitempty"`

	// Result is matched against the step result as a subset: maps may carry
	// extra keys, everything else must be equal.
	Result any `yaml:"result,omitempty"`
}

// Assertion checks the journal trace after all steps ran.
type Assertion struct {
	Type string `yaml:"type"`

	// Subject is an invocation path, a concept handle or a law locus.
	Subject string `yaml:"subject,omitempty"`

	// Outcome optionally narrows trace_contains, e.g. "error:AffordanceError".
	Outcome string `yaml:"outcome,omitempty"`

	// Subjects for trace_order.
	Subjects []string `yaml:"subjects,omitempty"`

	// Count for trace_count.
	Count int `yaml:"count,omitempty"`

	// Lineage assertion fields.
	Handle      string   `yaml:"handle,omitempty"`
	Depth       *int     `yaml:"depth,omitempty"`
	Extends     []string `yaml:"extends,omitempty"`
	Affordances []string `yaml:"affordances,omitempty"`
}

// Assertion types.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertLineage       = "lineage"
	AssertAcyclic       = "lattice_acyclic"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly. A relative specs directory is resolved
// against the directory of the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if s.Specs != "" && !filepath.IsAbs(s.Specs) {
		s.Specs = filepath.Join(filepath.Dir(path), s.Specs)
	}
	if s.Specs != "" {
		if info, err := os.Stat(s.Specs); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("invalid scenario: specs directory not found: %s", s.Specs)
		}
	}
	return s, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.operations() {
		case 0:
			return fmt.Errorf("steps[%d]: one of invoke, compose, define or laws is required", i)
		case 1:
		default:
			return fmt.Errorf("steps[%d]: only one of invoke, compose, define or laws may be set", i)
		}
		if step.Kind() == StepDefine && len(step.Extends) == 0 && (step.Expect == nil || step.Expect.Error == "") {
			return fmt.Errorf("steps[%d]: define needs extends unless an error is expected", i)
		}
		if step.Expect != nil && step.Expect.Error != "" && step.Expect.Result != nil {
			return fmt.Errorf("steps[%d].expect: error and result are mutually exclusive", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Subject == "" {
			return fmt.Errorf("assertions[%d]: subject is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Subjects) < 2 {
			return fmt.Errorf("assertions[%d]: at least two subjects are required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Subject == "" {
			return fmt.Errorf("assertions[%d]: subject is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertLineage:
		if a.Handle == "" {
			return fmt.Errorf("assertions[%d]: handle is required for lineage", index)
		}
	case AssertAcyclic:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func joinPaths(paths []string) string {
	return strings.Join(paths, " >> ")
}
