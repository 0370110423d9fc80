package logos

import (
	"fmt"

	"github.com/roach88/logos/internal/compiler"
	"github.com/roach88/logos/internal/config"
	"github.com/roach88/logos/internal/store"
)

// Open builds a Logos from configuration. It opens the configured journal
// (closed by Close) and enables JIT specs when a specs directory is set.
// opts are applied after the configuration and win over it.
func Open(cfg config.Config, opts ...Option) (*Logos, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	base := []Option{
		WithMinimalOutput(cfg.MinimalOutput),
		WithSuggestionLimit(cfg.Suggestions),
	}
	if cfg.SpecsDir != "" {
		base = append(base, WithSpecs(compiler.NewDir(cfg.SpecsDir)))
	}

	var journal *store.Store
	if cfg.JournalEnabled() {
		s, err := store.Open(cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		journal = s
		base = append(base, WithJournal(s))
	}

	l := New(append(base, opts...)...)
	if journal != nil && l.journal != journal {
		journal.Close()
		journal = nil
	}
	l.ownsStore = journal != nil
	return l, nil
}
