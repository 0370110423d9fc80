package cli

import (
	"github.com/spf13/cobra"
)

// ComposeOptions holds flags for the compose command.
type ComposeOptions struct {
	*RootOptions
	Observer        ObserverFlags
	Args            string
	Input           string
	NoMinimalOutput bool
}

// NewComposeCommand creates the compose command.
func NewComposeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComposeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compose <path> <path>...",
		Short: "Run paths as a pipeline",
		Long: `Compose paths left to right: each stage receives the previous output as
its "input" kwarg. --input seeds the first stage and is decoded as JSON
when it parses, else used as a string.

Examples:
  logos compose world.door.open world.door.close --input knock
  logos compose world.house.manifest world.house.witness -a architect --format json`,
		Args: usage(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return composePaths(opts, args, cmd)
		},
	}

	opts.Observer.register(cmd, "developer")
	cmd.Flags().StringVar(&opts.Args, "args", "{}", "kwargs passed to every stage, as a JSON object")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "input of the first stage")
	cmd.Flags().BoolVar(&opts.NoMinimalOutput, "no-minimal-output", false,
		"allow stages to return collections")

	return cmd
}

func composePaths(opts *ComposeOptions, paths []string, cmd *cobra.Command) error {
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

	cp, err := l.Compose(paths...)
	if err != nil {
		return out.Fail(ExitFailure, err)
	}
	if opts.NoMinimalOutput {
		cp = cp.WithoutMinimalOutput()
	}
	out.VerboseLog("pipeline: %s", cp.Name())

	result, err := cp.Invoke(cmd.Context(), opts.Observer.observer(), parseInput(opts.Input), kwargs)
	if err != nil {
		return out.Fail(ExitFailure, err)
	}
	return out.Success(ValueResult{Path: cp.Name(), Result: result})
}
