package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/logos/internal/config"
	"github.com/roach88/logos/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	Span    string
	Kind    string
}

// TraceResult is a filtered journal timeline.
type TraceResult struct {
	Journal  string        `json:"journal"`
	Timeline []store.Entry `json:"timeline"`
	Stats    TraceStats    `json:"stats"`
}

// TraceStats counts entries per kind.
type TraceStats struct {
	TotalEntries int `json:"total_entries"`
	Invocations  int `json:"invocations"`
	Failures     int `json:"failures"`
	LawChecks    int `json:"law_checks"`
	Lineages     int `json:"lineages"`
}

// RenderText implements TextRenderer.
func (r TraceResult) RenderText(w io.Writer) {
	if len(r.Timeline) == 0 {
		fmt.Fprintf(w, "No entries in %s\n", r.Journal)
		return
	}
	for _, e := range r.Timeline {
		span := e.Span
		if span == "" {
			span = "-"
		}
		fmt.Fprintf(w, "[%d] %-10s %-24s %s  %s\n", e.Seq, e.Kind, span, e.Subject, e.Outcome)
	}
	fmt.Fprintf(w, "\n%d entries: %d invocations (%d failed), %d law checks, %d lineages\n",
		r.Stats.TotalEntries, r.Stats.Invocations, r.Stats.Failures, r.Stats.LawChecks, r.Stats.Lineages)
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journal timeline",
		Long: `List journaled invocations, law checks and definitions in seq order.

The journal defaults to the configured one; an in-memory journal is
always empty here, so point --journal at the file other commands wrote.

Examples:
  logos trace --journal ./logos.db
  logos trace --journal ./logos.db --span dev_001
  logos trace --journal ./logos.db --kind lineage --format json`,
		Args: usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Journal, "journal", "j", "", "journal DSN (defaults to the configured journal)")
	cmd.Flags().StringVar(&opts.Span, "span", "", "only entries with this span")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only entries of this kind (invocation|law_check|lineage)")

	return cmd
}

func showTrace(opts *TraceOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	dsn := opts.Journal
	if dsn == "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return out.Fail(ExitCommandError, fmt.Errorf("load config: %w", err))
		}
		dsn = cfg.Journal
	}
	if dsn == config.JournalOff {
		return out.Fail(ExitCommandError, fmt.Errorf("journal is disabled"))
	}
	switch opts.Kind {
	case "", store.EntryInvocation, store.EntryLawCheck, store.EntryLineage:
	default:
		return out.Fail(ExitCommandError, fmt.Errorf("invalid kind %q", opts.Kind))
	}

	st, err := store.Open(dsn)
	if err != nil {
		return out.Fail(ExitCommandError, fmt.Errorf("open journal: %w", err))
	}
	defer st.Close()

	entries, err := st.Trace(cmd.Context())
	if err != nil {
		return out.Fail(ExitCommandError, fmt.Errorf("read journal: %w", err))
	}

	result := TraceResult{Journal: dsn, Timeline: []store.Entry{}}
	for _, e := range entries {
		if opts.Span != "" && e.Span != opts.Span {
			continue
		}
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		result.Timeline = append(result.Timeline, e)
		result.Stats.add(e)
	}
	return out.Success(result)
}

func (s *TraceStats) add(e store.Entry) {
	s.TotalEntries++
	switch e.Kind {
	case store.EntryInvocation:
		s.Invocations++
		if e.Outcome != store.OutcomeOK {
			s.Failures++
		}
	case store.EntryLawCheck:
		s.LawChecks++
	case store.EntryLineage:
		s.Lineages++
	}
}
