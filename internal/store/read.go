package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
)

// Invocations returns journaled invocations for span, or all of them when
// span is empty. Results are ordered by seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Invocations(ctx context.Context, span string) ([]Invocation, error) {
	query := `
		SELECT id, seq, span, path, handle, aspect, observer, archetype, outcome, error_kind, error, result
		FROM invocations
		WHERE (? = '' OR span = ?)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	rows, err := s.db.QueryContext(ctx, query, span, span)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	invocations := []Invocation{}
	for rows.Next() {
		var inv Invocation
		var result string
		if err := rows.Scan(
			&inv.ID, &inv.Seq, &inv.Span, &inv.Path, &inv.Handle, &inv.Aspect,
			&inv.Observer, &inv.Archetype, &inv.Outcome, &inv.ErrorKind, &inv.Error, &result,
		); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		inv.Result = json.RawMessage(result)
		invocations = append(invocations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return invocations, nil
}

// LawChecks returns every journaled law check in seq order.
func (s *Store) LawChecks(ctx context.Context) ([]LawCheck, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, span, law, locus, passed, left_result, right_result, error
		FROM law_checks
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query law checks: %w", err)
	}
	defer rows.Close()

	checks := []LawCheck{}
	for rows.Next() {
		var lc LawCheck
		var passed int
		var left, right string
		if err := rows.Scan(&lc.ID, &lc.Seq, &lc.Span, &lc.Law, &lc.Locus, &passed, &left, &right, &lc.Error); err != nil {
			return nil, fmt.Errorf("scan law check: %w", err)
		}
		lc.Passed = passed == 1
		lc.Left = json.RawMessage(left)
		lc.Right = json.RawMessage(right)
		checks = append(checks, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate law checks: %w", err)
	}
	return checks, nil
}

// Lineages returns every journaled concept definition in seq order.
func (s *Store) Lineages(ctx context.Context) ([]Lineage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, handle, extends, depth, created_by, justification
		FROM lineages
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query lineages: %w", err)
	}
	defer rows.Close()

	lineages := []Lineage{}
	for rows.Next() {
		lin, err := scanLineage(rows)
		if err != nil {
			return nil, err
		}
		lineages = append(lineages, lin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lineages: %w", err)
	}
	return lineages, nil
}

func scanLineage(rows *sql.Rows) (Lineage, error) {
	var lin Lineage
	var extends string
	if err := rows.Scan(&lin.ID, &lin.Seq, &lin.Handle, &extends, &lin.Depth, &lin.CreatedBy, &lin.Justification); err != nil {
		return Lineage{}, fmt.Errorf("scan lineage: %w", err)
	}
	if err := json.Unmarshal([]byte(extends), &lin.Extends); err != nil {
		return Lineage{}, fmt.Errorf("unmarshal lineage extends: %w", err)
	}
	return lin, nil
}

// Entry kinds in a merged trace.
const (
	EntryInvocation = "invocation"
	EntryLawCheck   = "law_check"
	EntryLineage    = "lineage"
)

// Entry is one line of the merged journal trace.
type Entry struct {
	Seq     int64  `json:"seq"`
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Span    string `json:"span,omitempty"`
	Subject string `json:"subject"`
	Outcome string `json:"outcome"`
}

// Trace merges every journal table into one seq-ordered list.
func (s *Store) Trace(ctx context.Context) ([]Entry, error) {
	invocations, err := s.Invocations(ctx, "")
	if err != nil {
		return nil, err
	}
	checks, err := s.LawChecks(ctx)
	if err != nil {
		return nil, err
	}
	lineages, err := s.Lineages(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(invocations)+len(checks)+len(lineages))
	for _, inv := range invocations {
		outcome := inv.Outcome
		if inv.ErrorKind != "" {
			outcome += ":" + inv.ErrorKind
		}
		entries = append(entries, Entry{
			Seq: inv.Seq, Kind: EntryInvocation, ID: inv.ID, Span: inv.Span,
			Subject: inv.Path, Outcome: outcome,
		})
	}
	for _, lc := range checks {
		outcome := "passed"
		if !lc.Passed {
			outcome = "failed"
		}
		entries = append(entries, Entry{
			Seq: lc.Seq, Kind: EntryLawCheck, ID: lc.ID, Span: lc.Span,
			Subject: lc.Locus, Outcome: outcome,
		})
	}
	for _, lin := range lineages {
		entries = append(entries, Entry{
			Seq: lin.Seq, Kind: EntryLineage, ID: lin.ID,
			Subject: lin.Handle, Outcome: fmt.Sprintf("depth=%d", lin.Depth),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Seq != entries[j].Seq {
			return entries[i].Seq < entries[j].Seq
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}
