package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/logos/internal/path"
)

// ParseResult is the structured form of a parsed path.
type ParseResult struct {
	path.ParsedPath
	Handle   string `json:"handle"`
	FullPath string `json:"full_path"`
}

// RenderText implements TextRenderer.
func (r ParseResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "handle:  %s\n", r.Handle)
	fmt.Fprintf(w, "context: %s\n", r.Context)
	fmt.Fprintf(w, "holon:   %s\n", r.Holon)
	if r.Aspect != "" {
		fmt.Fprintf(w, "aspect:  %s\n", r.Aspect)
	}
	for _, c := range r.Clauses {
		fmt.Fprintf(w, "clause:  %s\n", c)
	}
	for _, a := range r.Annotations {
		fmt.Fprintf(w, "annot:   %s\n", a)
	}
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <path>",
		Short: "Parse a path and show its parts",
		Long: `Parse a path without resolving it.

Examples:
  logos parse world.house.manifest
  logos parse 'concept.justice.refine[phase=develop][entropy=0.3]@span=dev_001'`,
		Args: usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			p, err := path.Parse(args[0])
			if err != nil {
				return out.Fail(ExitFailure, err)
			}
			return out.Success(ParseResult{ParsedPath: p, Handle: p.Handle(), FullPath: p.FullPath()})
		},
	}
}
