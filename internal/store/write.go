package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Invocation outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Invocation is one journaled aspect invocation.
type Invocation struct {
	ID        string          `json:"id"`
	Seq       int64           `json:"seq"`
	Span      string          `json:"span"`
	Path      string          `json:"path"`
	Handle    string          `json:"handle"`
	Aspect    string          `json:"aspect"`
	Observer  string          `json:"observer"`
	Archetype string          `json:"archetype"`
	Outcome   string          `json:"outcome"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Error     string          `json:"error,omitempty"`
	Result    json.RawMessage `json:"result"`
}

// LawCheck is one journaled law verification.
type LawCheck struct {
	ID     string          `json:"id"`
	Seq    int64           `json:"seq"`
	Span   string          `json:"span"`
	Law    string          `json:"law"`
	Locus  string          `json:"locus"`
	Passed bool            `json:"passed"`
	Left   json.RawMessage `json:"left"`
	Right  json.RawMessage `json:"right"`
	Error  string          `json:"error,omitempty"`
}

// Lineage is one journaled concept definition.
type Lineage struct {
	ID            string   `json:"id"`
	Seq           int64    `json:"seq"`
	Handle        string   `json:"handle"`
	Extends       []string `json:"extends"`
	Depth         int      `json:"depth"`
	CreatedBy     string   `json:"created_by"`
	Justification string   `json:"justification,omitempty"`
}

// Marshal renders a value for the Result, Left and Right columns.
// Values JSON cannot encode are stored as their %v rendering.
func Marshal(v any) json.RawMessage {
	return json.RawMessage(marshalValue(v))
}

func rawOrNull(r json.RawMessage) string {
	if len(r) == 0 {
		return "null"
	}
	return string(r)
}

// RecordInvocation stamps inv with the next seq and its content id and
// appends it. Returns the stored entry.
// Uses ON CONFLICT(id) DO NOTHING - duplicate ids are silently ignored.
func (s *Store) RecordInvocation(ctx context.Context, inv Invocation) (Invocation, error) {
	inv.Seq = s.clock.Next()
	id, err := entryID(DomainInvocation, map[string]any{
		"seq":       inv.Seq,
		"span":      inv.Span,
		"path":      inv.Path,
		"observer":  inv.Observer,
		"archetype": inv.Archetype,
		"outcome":   inv.Outcome,
	})
	if err != nil {
		return Invocation{}, fmt.Errorf("record invocation: %w", err)
	}
	inv.ID = id
	inv.Result = json.RawMessage(rawOrNull(inv.Result))

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invocations
		(id, seq, span, path, handle, aspect, observer, archetype, outcome, error_kind, error, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		inv.ID,
		inv.Seq,
		inv.Span,
		inv.Path,
		inv.Handle,
		inv.Aspect,
		inv.Observer,
		inv.Archetype,
		inv.Outcome,
		inv.ErrorKind,
		inv.Error,
		string(inv.Result),
	)
	if err != nil {
		return Invocation{}, fmt.Errorf("record invocation: %w", err)
	}
	return inv, nil
}

// RecordLawCheck stamps lc with the next seq and its content id and
// appends it.
func (s *Store) RecordLawCheck(ctx context.Context, lc LawCheck) (LawCheck, error) {
	lc.Seq = s.clock.Next()
	id, err := entryID(DomainLawCheck, map[string]any{
		"seq":    lc.Seq,
		"span":   lc.Span,
		"law":    lc.Law,
		"locus":  lc.Locus,
		"passed": lc.Passed,
	})
	if err != nil {
		return LawCheck{}, fmt.Errorf("record law check: %w", err)
	}
	lc.ID = id
	lc.Left = json.RawMessage(rawOrNull(lc.Left))
	lc.Right = json.RawMessage(rawOrNull(lc.Right))

	passed := 0
	if lc.Passed {
		passed = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO law_checks
		(id, seq, span, law, locus, passed, left_result, right_result, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		lc.ID,
		lc.Seq,
		lc.Span,
		lc.Law,
		lc.Locus,
		passed,
		string(lc.Left),
		string(lc.Right),
		lc.Error,
	)
	if err != nil {
		return LawCheck{}, fmt.Errorf("record law check: %w", err)
	}
	return lc, nil
}

// RecordLineage appends a concept definition.
// A handle can be journaled once; later records for it are ignored.
func (s *Store) RecordLineage(ctx context.Context, lin Lineage) (Lineage, error) {
	lin.Seq = s.clock.Next()
	if lin.Extends == nil {
		lin.Extends = []string{}
	}
	id, err := entryID(DomainLineage, map[string]any{
		"handle":  lin.Handle,
		"extends": lin.Extends,
	})
	if err != nil {
		return Lineage{}, fmt.Errorf("record lineage: %w", err)
	}
	lin.ID = id

	extends, err := json.Marshal(lin.Extends)
	if err != nil {
		return Lineage{}, fmt.Errorf("record lineage: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lineages
		(id, seq, handle, extends, depth, created_by, justification)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		lin.ID,
		lin.Seq,
		lin.Handle,
		string(extends),
		lin.Depth,
		lin.CreatedBy,
		lin.Justification,
	)
	if err != nil {
		return Lineage{}, fmt.Errorf("record lineage: %w", err)
	}
	return lin, nil
}
