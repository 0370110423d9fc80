// Package cli implements the logos command line.
//
// Every command builds a fresh Logos from configuration, so lattice state
// does not outlive the process. Only the journal, when it points at a file,
// is shared between runs.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/logos/internal/config"
	"github.com/roach88/logos/internal/logging"
	"github.com/roach88/logos/internal/logos"
	"github.com/roach88/logos/internal/node"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON}

// NewRootCommand creates the root command for the logos CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "logos",
		Short: "LOGOS - handles, affordances and concepts",
		Long: `Resolve, invoke and compose handles like world.house.manifest,
gate every aspect by the observer's archetype, and grow the concept lattice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "", err)
	})

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "",
		"config file (defaults to ./"+config.DefaultFile+" when present)")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewInvokeCommand(opts))
	cmd.AddCommand(NewComposeCommand(opts))
	cmd.AddCommand(NewDefineCommand(opts))
	cmd.AddCommand(NewLawsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// usage turns argument validation failures into command errors.
func usage(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return WrapExitError(ExitCommandError, "", err)
		}
		return nil
	}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig reads --config, or ./logos.yaml when it exists, plus the
// LOGOS_ environment.
func (o *RootOptions) loadConfig() (config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		} else if !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

// open builds a Logos for one command. Its errors are command errors.
func (o *RootOptions) open(cmd *cobra.Command, opts ...logos.Option) (*logos.Logos, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure logging", err)
	}

	l, err := logos.Open(cfg, append([]logos.Option{logos.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open logos", err)
	}
	return l, nil
}

// ObserverFlags are the --name and --archetype flags shared by commands
// that act for an observer.
type ObserverFlags struct {
	Name      string
	Archetype string
}

func (f *ObserverFlags) register(cmd *cobra.Command, defaultArchetype string) {
	cmd.Flags().StringVar(&f.Name, "name", "cli", "observer name")
	cmd.Flags().StringVarP(&f.Archetype, "archetype", "a", defaultArchetype,
		"observer archetype (empty for no observer)")
}

// observer returns nil when no archetype is given, so the gate reports
// ObserverRequiredError.
func (f *ObserverFlags) observer() *node.ObserverMeta {
	if f.Archetype == "" {
		return nil
	}
	meta := node.NewObserverMeta(f.Name, f.Archetype)
	return &meta
}
