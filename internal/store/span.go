package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SpanGenerator generates span ids for invocations without an @span
// annotation. Implemented by UUIDv7Generator here and by a fixed generator
// in tests.
type SpanGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 span ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Domain prefixes for content-addressed entry ids.
// Version suffix enables future algorithm migration.
const (
	DomainInvocation = "logos/invocation/v1"
	DomainLawCheck   = "logos/lawcheck/v1"
	DomainLineage    = "logos/lineage/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// entryID hashes the canonical JSON of fields.
func entryID(domain string, fields map[string]any) (string, error) {
	data, err := marshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("entry id: %w", err)
	}
	return hashWithDomain(domain, data), nil
}

// marshalValue renders an arbitrary result as JSON text.
// Values JSON cannot encode are stored as their %v rendering.
func marshalValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(fmt.Sprintf("%v", v))
	}
	return string(data)
}
