// Package direct implements record acquisition against the structured-data
// endpoint, with a download/view access-mode fallback.
package direct

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cmorand/tmharvest/internal/fetch"
	"github.com/cmorand/tmharvest/internal/record"
)

// DefaultBaseURL is the GeoResponder endpoint the harvester targets.
const DefaultBaseURL = "https://www.trismegistos.org/dataservices/georesponder/georesponder.php"

// Mode selects how the endpoint is queried.
type Mode string

const (
	// ModeAuto tries the download variant first, then falls back to view.
	ModeAuto Mode = "auto"
	// ModeDownload requests with the dl=1 flag only.
	ModeDownload Mode = "download"
	// ModeView requests without the dl flag only.
	ModeView Mode = "view"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeDownload, ModeView:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown access mode %q (want auto, download, or view)", s)
}

// Strategy fetches one JSON payload per identifier over the shared HTTP
// client.
type Strategy struct {
	client  *fetch.Client
	baseURL string
	mode    Mode
	verbose bool
}

// New builds the strategy. An empty baseURL uses DefaultBaseURL.
func New(client *fetch.Client, baseURL string, mode Mode, verbose bool) *Strategy {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Strategy{client: client, baseURL: baseURL, mode: mode, verbose: verbose}
}

// Fetch returns the record for id, or nil when the source has no record
// there. Transport failures come back as errors and are never conflated
// with "not found".
func (s *Strategy) Fetch(ctx context.Context, id int) (*record.Record, error) {
	payload, err := s.fetchPayload(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	rec := record.New(id, s.recordURL(id, false))
	rec.Payload = payload
	return rec, nil
}

func (s *Strategy) fetchPayload(ctx context.Context, id int) (json.RawMessage, error) {
	switch s.mode {
	case ModeDownload:
		return s.try(ctx, id, true)
	case ModeView:
		return s.try(ctx, id, false)
	}

	payload, err := s.try(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		return payload, nil
	}
	return s.try(ctx, id, false)
}

// try issues one request and applies the uniform validity rule: status must
// be exactly 200, the body must be recognizable as JSON and parse, and an
// empty object counts as "no record". The source signals missing ids this
// way, so an explicitly empty object is indistinguishable from absence.
func (s *Strategy) try(ctx context.Context, id int, download bool) (json.RawMessage, error) {
	res, err := s.client.Get(ctx, s.recordURL(id, download))
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		if s.verbose {
			log.Printf("[DIRECT] id %d: HTTP %d", id, res.StatusCode)
		}
		return nil, nil
	}
	if !looksLikeJSON(res) {
		if s.verbose {
			log.Printf("[DIRECT] id %d: non-JSON response (Content-Type=%s)", id, res.ContentType)
		}
		return nil, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(res.Body), &parsed); err != nil {
		if s.verbose {
			log.Printf("[DIRECT] id %d: invalid JSON", id)
		}
		return nil, nil
	}
	if obj, ok := parsed.(map[string]any); ok && len(obj) == 0 {
		if s.verbose {
			log.Printf("[DIRECT] id %d: empty object", id)
		}
		return nil, nil
	}
	return json.RawMessage(res.Body), nil
}

// recordURL builds the endpoint URL for id, with the dl=1 flag when the
// download variant is requested.
func (s *Strategy) recordURL(id int, download bool) string {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return s.baseURL + "?id=" + strconv.Itoa(id)
	}
	q := u.Query()
	q.Set("id", strconv.Itoa(id))
	if download {
		q.Set("dl", "1")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// looksLikeJSON mirrors the endpoint's loose signaling: either the declared
// content type says JSON, or the body starts with an object delimiter.
func looksLikeJSON(res *fetch.Result) bool {
	if strings.Contains(strings.ToLower(res.ContentType), "application/json") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(res.Body), "{")
}
