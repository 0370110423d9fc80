package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/logos/internal/lattice"
	"github.com/roach88/logos/internal/logos"
)

// DefineOptions holds flags for the define command.
type DefineOptions struct {
	*RootOptions
	Observer      ObserverFlags
	Extends       []string
	Subsumes      []string
	SpecFile      string
	Justification string
	Affordances   []string
	Constraints   []string
	Invoke        []string
}

// DefineResult is the registered lineage and any follow-up invocations.
type DefineResult struct {
	Lineage     lattice.Lineage `json:"lineage"`
	Invocations []ValueResult   `json:"invocations,omitempty"`
}

// RenderText implements TextRenderer.
func (r DefineResult) RenderText(w io.Writer) {
	lin := r.Lineage
	fmt.Fprintf(w, "defined %s (depth %d)\n", lin.Handle, lin.Depth)
	fmt.Fprintf(w, "  extends:     %s\n", strings.Join(lin.Extends, ", "))
	if len(lin.Affordances) > 0 {
		fmt.Fprintf(w, "  affordances: %s\n", strings.Join(lin.Affordances, ", "))
	}
	if len(lin.Constraints) > 0 {
		fmt.Fprintf(w, "  constraints: %s\n", strings.Join(lin.Constraints, ", "))
	}
	for _, inv := range r.Invocations {
		inv.RenderText(w)
	}
}

// NewDefineCommand creates the define command.
func NewDefineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DefineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "define <concept.handle>",
		Short: "Define a concept in the lattice",
		Long: `Check a new concept's position in the lattice and register it.

The lattice lives for one command, so use --invoke to exercise the new
concept in the same run. A --spec file is CUE with purpose, aspects,
properties and constraints; its properties become declared affordances.

Examples:
  logos define concept.justice --extends concept.value -a philosopher
  logos define concept.market --extends concept.process,concept.state --spec market.cue --invoke appraise`,
		Args: usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return defineConcept(opts, args[0], cmd)
		},
	}

	opts.Observer.register(cmd, "philosopher")
	cmd.Flags().StringSliceVarP(&opts.Extends, "extends", "e", nil, "parent concepts")
	cmd.Flags().StringSliceVar(&opts.Subsumes, "subsumes", nil, "existing concepts that adopt the new one")
	cmd.Flags().StringVar(&opts.SpecFile, "spec", "", "CUE spec file")
	cmd.Flags().StringVar(&opts.Justification, "justification", "", "why the concept exists")
	cmd.Flags().StringSliceVar(&opts.Affordances, "affordance", nil, "declared affordances")
	cmd.Flags().StringSliceVar(&opts.Constraints, "constraint", nil, "declared constraints")
	cmd.Flags().StringSliceVar(&opts.Invoke, "invoke", nil, "aspects to invoke on the new concept")

	return cmd
}

func defineConcept(opts *DefineOptions, handle string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	req := logos.DefineRequest{
		Handle:        handle,
		Extends:       opts.Extends,
		Subsumes:      opts.Subsumes,
		Justification: opts.Justification,
		Affordances:   opts.Affordances,
		Constraints:   opts.Constraints,
	}
	if opts.SpecFile != "" {
		data, err := os.ReadFile(opts.SpecFile)
		if err != nil {
			return out.Fail(ExitCommandError, fmt.Errorf("read spec: %w", err))
		}
		req.Spec = string(data)
	}

	l, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	observer := opts.Observer.observer()
	concept, err := l.DefineConcept(cmd.Context(), req, observer)
	if err != nil {
		return out.Fail(ExitFailure, err)
	}

	lin, _ := l.Lattice().Lineage(concept.Handle())
	result := DefineResult{Lineage: lin}
	for _, aspect := range opts.Invoke {
		raw := concept.Handle() + "." + aspect
		v, err := l.Invoke(cmd.Context(), raw, observer, nil)
		if err != nil {
			return out.Fail(ExitFailure, err)
		}
		result.Invocations = append(result.Invocations, ValueResult{Path: raw, Result: v})
	}
	return out.Success(result)
}
