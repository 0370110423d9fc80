package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/logos/internal/node"
)

// ResolveResult describes a resolved node.
type ResolveResult struct {
	node.Renderable
	Affordances []string `json:"affordances,omitempty"`
	Archetype   string   `json:"archetype,omitempty"`
}

// RenderText implements TextRenderer.
func (r ResolveResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s (%s)\n", r.Handle, r.Kind)
	if r.Summary != "" {
		fmt.Fprintf(w, "  %s\n", r.Summary)
	}
	if r.Archetype != "" {
		fmt.Fprintf(w, "  affordances for %s: %s\n", r.Archetype, strings.Join(r.Affordances, ", "))
	}
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var obs ObserverFlags

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a handle and show its manifest",
		Long: `Resolve the node a handle addresses. Any aspect, clause or annotation
is ignored. Unknown holons resolve to placeholders.

Examples:
  logos resolve world.house
  logos resolve concept.value --archetype philosopher`,
		Args: usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			l, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer l.Close()

			n, err := l.Resolve(cmd.Context(), args[0])
			if err != nil {
				return out.Fail(ExitFailure, err)
			}

			observer := obs.observer()
			r, err := n.Manifest(cmd.Context(), observer)
			if err != nil {
				return out.Fail(ExitFailure, err)
			}

			result := ResolveResult{Renderable: r}
			if observer != nil {
				result.Archetype = observer.Archetype
				result.Affordances = n.Affordances(*observer)
			}
			return out.Success(result)
		},
	}

	obs.register(cmd, "")
	return cmd
}
