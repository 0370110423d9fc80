package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/logos/internal/node"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Observer ObserverFlags
	Args     string
}

// ValueResult is the outcome of an invocation or a pipeline.
type ValueResult struct {
	Path   string `json:"path"`
	Result any    `json:"result"`
}

// RenderText implements TextRenderer.
func (r ValueResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s\n", r.Path)
	writeValue(w, r.Result)
}

// writeValue prints strings as is and everything else as indented JSON.
func writeValue(w io.Writer, v any) {
	switch val := v.(type) {
	case string:
		fmt.Fprintf(w, "  %s\n", val)
	case node.Renderable:
		fmt.Fprintf(w, "  %s (%s)\n", val.Summary, val.Kind)
	default:
		data, err := json.MarshalIndent(v, "  ", "  ")
		if err != nil {
			fmt.Fprintf(w, "  %v\n", v)
			return
		}
		fmt.Fprintf(w, "  %s\n", data)
	}
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <path>",
		Short: "Invoke an aspect through the affordance gate",
		Long: `Invoke the aspect a path names, as an observer of the given archetype.

Clauses [phase=...] and [entropy=...] are passed to the node as kwargs;
@span=... tags the journal entry.

Exit codes:
  0 - The aspect ran
  1 - The path did not parse or resolve, or the gate refused the observer
  2 - Command error (invalid --args, unreadable config)

Examples:
  logos invoke world.house.manifest
  logos invoke world.house.blueprint --archetype architect
  logos invoke 'concept.justice.refine[phase=develop]' -a philosopher --args '{"depth":2}'`,
		Args: usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokePath(opts, args[0], cmd)
		},
	}

	opts.Observer.register(cmd, "developer")
	cmd.Flags().StringVar(&opts.Args, "args", "{}", "kwargs as a JSON object")

	return cmd
}

func invokePath(opts *InvokeOptions, raw string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	kwargs, err := parseKwargs(opts.Args)
	if err != nil {
		return out.Fail(ExitCommandError, err)
	}

	l, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	observer := opts.Observer.observer()
	if observer != nil {
		out.VerboseLog("invoking %s as %s (%s)", raw, observer.Name, observer.Archetype)
	}

	result, err := l.Invoke(cmd.Context(), raw, observer, kwargs)
	if err != nil {
		return out.Fail(ExitFailure, err)
	}
	return out.Success(ValueResult{Path: raw, Result: result})
}

func parseKwargs(raw string) (node.Kwargs, error) {
	if raw == "" {
		return node.Kwargs{}, nil
	}
	var kwargs map[string]any
	if err := json.Unmarshal([]byte(raw), &kwargs); err != nil {
		return nil, fmt.Errorf("invalid --args JSON: %w", err)
	}
	return node.Kwargs(kwargs), nil
}

// parseInput decodes --input as JSON, falling back to the raw string.
func parseInput(raw string) any {
	if raw == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
