package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/logos/internal/compose"
)

// LawsOptions holds flags for the laws command.
type LawsOptions struct {
	*RootOptions
	Observer ObserverFlags
	Input    string
}

// LawsResult lists every law checked.
type LawsResult struct {
	Morphisms []string                        `json:"morphisms"`
	Results   []compose.LawVerificationResult `json:"results"`
	Passed    bool                            `json:"passed"`
}

// RenderText implements TextRenderer.
func (r LawsResult) RenderText(w io.Writer) {
	for _, res := range r.Results {
		mark := "✓"
		if !res.Passed {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (left=%v right=%v)\n", mark, res.Locus, res.Left, res.Right)
	}
	if r.Passed {
		fmt.Fprintf(w, "\nAll %d laws hold\n", len(r.Results))
	}
}

// Arithmetic returns the built-in morphisms checked when no paths are
// given: increment, double and square over numbers.
func Arithmetic() []compose.Morphism {
	return []compose.Morphism{
		numeric("increment", func(x float64) float64 { return x + 1 }),
		numeric("double", func(x float64) float64 { return x * 2 }),
		numeric("square", func(x float64) float64 { return x * x }),
	}
}

func numeric(name string, fn func(float64) float64) compose.Morphism {
	return compose.NewLeaf(name, func(_ context.Context, input any) (any, error) {
		x, err := toFloat(input)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return fn(x), nil
	})
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("input %v (%T) is not a number", v, v)
}

// NewLawsCommand creates the laws command.
func NewLawsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LawsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "laws [path...]",
		Short: "Check the category laws of morphisms",
		Long: `Check left and right identity for every morphism and associativity for
every consecutive triple, on one input.

Without paths the built-in arithmetic morphisms (increment, double,
square) are checked. With paths each path becomes a morphism invoked
as the observer.

Exit codes:
  0 - Every law holds
  1 - A law failed or a morphism errored
  2 - Command error

Examples:
  logos laws --input 5
  logos laws world.door.open world.door.close world.door.lock --input knock -a architect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkLaws(opts, args, cmd)
		},
	}

	opts.Observer.register(cmd, "developer")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "5", "input every law runs on")

	return cmd
}

func checkLaws(opts *LawsOptions, paths []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	l, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	ms := Arithmetic()
	if len(paths) > 0 {
		ms = make([]compose.Morphism, 0, len(paths))
		for _, raw := range paths {
			m, err := l.Morphism(raw, opts.Observer.observer(), nil)
			if err != nil {
				return out.Fail(ExitFailure, err)
			}
			ms = append(ms, m)
		}
	}

	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}

	results, err := l.VerifyLaws(cmd.Context(), parseInput(opts.Input), ms...)
	if err != nil {
		return out.Fail(ExitFailure, err)
	}
	return out.Success(LawsResult{Morphisms: names, Results: results, Passed: true})
}
