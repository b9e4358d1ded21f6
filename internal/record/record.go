// Package record defines the normalized per-identifier harvest document.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Status classifies the outcome of harvesting a single identifier.
type Status string

const (
	// StatusOk means the source returned a record and extraction completed.
	StatusOk Status = "ok"
	// StatusNotFound means the source declared no record at this identifier.
	StatusNotFound Status = "not_found"
	// StatusError means extraction or navigation failed mid-record.
	StatusError Status = "error"
)

// Record is the unit of harvest, keyed by a positive integer identifier.
// Scalar fields are nil when the source page does not carry them; list
// fields preserve document order and duplicates. A Record is mutated only
// by the acquisition strategy that created it and becomes immutable once
// handed to the store.
type Record struct {
	ID        int    `json:"id"`
	SourceURL string `json:"url"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`

	Language   *string `json:"language"`
	Content    *string `json:"content"`
	Date       *string `json:"date"`
	Provenance *string `json:"provenance"`
	Material   *string `json:"material"`
	FullText   *string `json:"full_text"`

	Publications   []string `json:"publications"`
	People         []string `json:"people"`
	Places         []string `json:"places"`
	Irregularities []string `json:"irregularities"`
	Collections    []string `json:"collections"`

	// Payload holds the raw endpoint body for records acquired through the
	// direct strategy. When set, the persisted document is the payload
	// itself rather than the Record structure.
	Payload json.RawMessage `json:"-"`
}

// New returns an empty Ok record for id. List fields are initialized so the
// serialized document carries empty arrays rather than nulls.
func New(id int, sourceURL string) *Record {
	return &Record{
		ID:             id,
		SourceURL:      sourceURL,
		Status:         StatusOk,
		Publications:   []string{},
		People:         []string{},
		Places:         []string{},
		Irregularities: []string{},
		Collections:    []string{},
	}
}

// MarkNotFound flags the record as absent at the source.
func (r *Record) MarkNotFound() {
	r.Status = StatusNotFound
}

// MarkError attaches a diagnostic and flags the record as failed.
func (r *Record) MarkError(err error) {
	r.Status = StatusError
	r.Error = err.Error()
}

// Document renders the JSON persisted for the record. Direct-strategy
// records persist the endpoint payload verbatim (re-indented, key order
// preserved); sectioned records persist the full structure.
func (r *Record) Document() ([]byte, error) {
	if r.Payload != nil {
		var buf bytes.Buffer
		if err := json.Indent(&buf, r.Payload, "", "  "); err != nil {
			return nil, fmt.Errorf("record %d: payload is not valid JSON: %w", r.ID, err)
		}
		return buf.Bytes(), nil
	}
	return json.MarshalIndent(r, "", "  ")
}
