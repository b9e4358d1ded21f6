// Package sectioned implements record acquisition from rendered pages: one
// navigation per logical section of a record, each yielding a fresh parsed
// document. One parameterized implementation serves every section; which
// sections run is configuration, not code.
package sectioned

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cmorand/tmharvest/internal/extract"
	"github.com/cmorand/tmharvest/internal/record"
)

// DefaultBaseURL is the record page prefix; the identifier is appended.
const DefaultBaseURL = "https://www.trismegistos.org/text/"

// notFoundMarkers are the phrases the source renders on missing-record
// pages.
var notFoundMarkers = []string{"Page not found", "No record found"}

// Pause bounds for the interval between section loads within one record.
const (
	minSectionPause = 1000 * time.Millisecond
	maxSectionPause = 1500 * time.Millisecond
)

// Navigator loads a URL in the rendering session and returns the page
// markup after it settles. *browser.Session satisfies it.
type Navigator interface {
	HTML(ctx context.Context, url string, settle time.Duration) (string, error)
}

// Strategy drives the per-record section sequence over a shared Navigator.
type Strategy struct {
	nav      Navigator
	baseURL  string
	sections []Section
	verbose  bool
	rng      *rand.Rand
}

// New builds the strategy. Empty baseURL uses DefaultBaseURL; nil sections
// uses DefaultSections.
func New(nav Navigator, baseURL string, sections []Section, verbose bool) *Strategy {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if sections == nil {
		sections = DefaultSections()
	}
	return &Strategy{
		nav:      nav,
		baseURL:  baseURL,
		sections: sections,
		verbose:  verbose,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RecordURL returns the primary page URL for id.
func (s *Strategy) RecordURL(id int) string {
	return s.baseURL + strconv.Itoa(id)
}

// Fetch assembles the record for id. Any failure mid-record is caught at
// the record boundary: the record comes back with StatusError and the
// diagnostic attached, never as a returned error, so one bad record cannot
// abort the run.
func (s *Strategy) Fetch(ctx context.Context, id int) (*record.Record, error) {
	rec := record.New(id, s.RecordURL(id))
	if err := s.fetchInto(ctx, rec); err != nil {
		rec.MarkError(err)
	}
	return rec, nil
}

func (s *Strategy) fetchInto(ctx context.Context, rec *record.Record) error {
	doc, err := s.load(ctx, rec.SourceURL)
	if err != nil {
		return err
	}

	// A not-found page short-circuits the remaining section loads.
	if containsAnyMarker(doc) {
		rec.MarkNotFound()
		return nil
	}

	rec.Language = extract.Field(doc, "Language/script")
	rec.Content = extract.Field(doc, "Content (beta!)")
	rec.Date = extract.Field(doc, "Date")
	rec.Provenance = extract.Field(doc, "Provenance")
	rec.Material = extract.Field(doc, "Material")
	rec.Publications = extract.List(doc, "text-publs", "p", extract.StripInline("i.fa-thumb-tack"))
	rec.FullText = extract.TextBlock(doc, "words-full-text")

	for _, sec := range s.sections {
		doc, err := s.load(ctx, rec.SourceURL+sec.Fragment)
		if err != nil {
			return fmt.Errorf("section %s: %w", sec.Name, err)
		}
		var items []string
		if sec.Style == StyleCollections {
			items = extract.Collections(doc, sec.ContainerID, sec.HeadingSelector)
		} else {
			items = extract.List(doc, sec.ContainerID, sec.ItemSelector, sec.Clean)
		}
		sec.Assign(rec, items)
		if s.verbose {
			log.Printf("[SECTIONED] id %d: %s -> %d items", rec.ID, sec.Name, len(items))
		}
	}
	return nil
}

// load navigates to url with a short randomized settle pause and parses the
// rendered markup.
func (s *Strategy) load(ctx context.Context, url string) (*goquery.Document, error) {
	html, err := s.nav.HTML(ctx, url, s.pause())
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse failed for %s: %w", url, err)
	}
	return doc, nil
}

// pause picks the settle interval between section loads. Randomized so
// consecutive navigations do not hit the rendering session on a fixed beat.
func (s *Strategy) pause() time.Duration {
	spread := maxSectionPause - minSectionPause
	return minSectionPause + time.Duration(s.rng.Int63n(int64(spread)))
}

func containsAnyMarker(doc *goquery.Document) bool {
	text := doc.Text()
	for _, marker := range notFoundMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
