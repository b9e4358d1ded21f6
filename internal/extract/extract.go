// Package extract provides pure extraction helpers over parsed HTML
// documents. Every function tolerates absent markup: a missing label,
// container, or anchor is a normal outcome, never an error.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// separatorCutset holds the characters trimmed around extracted values:
// spaces, colons, and non-breaking spaces the source pads labels with.
const separatorCutset = " :\u00a0"

// bulletCutset holds the leading markers stripped from collections-style
// lines before the emptiness check.
const bulletCutset = "•->→* \u00a0"

// CleanFunc post-processes one list item into its visible text.
type CleanFunc func(item *goquery.Selection) string

// Field pulls a single labeled metadata value out of the document.
//
// Two strategies, first match wins: (1) a metadata block (".division, .row")
// whose "span.semibold" child carries the label; (2) any p/div/li containing
// the literal "label:" pattern, preferring a hyperlink's text when the link
// does not restate the label. Returns nil when the label is absent or the
// value is empty after stripping.
func Field(doc *goquery.Document, label string) *string {
	var out *string
	matched := false

	doc.Find(".division, .row").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		span := block.Find("span.semibold").First()
		if span.Length() > 0 && strings.Contains(span.Text(), label) {
			matched = true
			out = cleanLabelText(block, strings.TrimSpace(span.Text()))
			return false
		}
		return true
	})
	if matched {
		return out
	}

	labelColon := label + ":"
	doc.Find("p, div, li").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if !strings.Contains(el.Text(), labelColon) {
			return true
		}
		// A link whose text is not the label itself is the value, e.g. a
		// linked place name under "Provenance:".
		link := el.Find("a").First()
		if link.Length() > 0 && !strings.Contains(link.Text(), label) {
			if text := strings.TrimSpace(link.Text()); text != "" {
				out = &text
			}
			return false
		}
		out = cleanLabelText(el, labelColon)
		return false
	})
	return out
}

// List extracts the ordered item texts beneath the container with the given
// id. An absent container yields an empty slice. Items that are empty after
// cleaning are dropped; duplicates and document order are preserved. A nil
// clean defaults to trimmed visible text.
func List(doc *goquery.Document, containerID, itemSelector string, clean CleanFunc) []string {
	items := []string{}
	container := doc.Find("#" + containerID).First()
	if container.Length() == 0 {
		return items
	}
	container.Find(itemSelector).Each(func(_ int, item *goquery.Selection) {
		var text string
		if clean != nil {
			text = clean(item)
		} else {
			text = strings.TrimSpace(item.Text())
		}
		if text != "" {
			items = append(items, text)
		}
	})
	return items
}

// StripInline returns a CleanFunc that removes matching inline elements
// (pin icons and similar markers) before taking the item text.
func StripInline(selector string) CleanFunc {
	return func(item *goquery.Selection) string {
		clone := item.Clone()
		clone.Find(selector).Remove()
		return collapseSpace(clone.Text())
	}
}

// Collections extracts a collections/archive style block: the heading is
// dropped, line breaks become separators, and each line loses its leading
// bullet or arrow marker. Absent container yields an empty slice.
func Collections(doc *goquery.Document, containerID, headingSelector string) []string {
	items := []string{}
	container := doc.Find("#" + containerID).First()
	if container.Length() == 0 {
		return items
	}
	clone := container.Clone()
	if headingSelector != "" {
		clone.Find(headingSelector).Remove()
	}
	clone.Find("br").ReplaceWithHtml("\n")
	for _, line := range strings.Split(clone.Text(), "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), bulletCutset)
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// TextBlock extracts a long transcribed text body anchored by id. Tooltip
// spans are removed, <br> markers become newlines, blank lines are dropped,
// and the relative order of the remaining lines is preserved. Returns nil
// when the anchor is absent or nothing survives cleaning.
func TextBlock(doc *goquery.Document, anchorID string) *string {
	container := doc.Find("#" + anchorID).First()
	if container.Length() == 0 {
		return nil
	}
	clone := container.Clone()
	clone.Find("span.tooltiptext").Remove()
	clone.Find("br").ReplaceWithHtml("\n")

	lines := strings.Split(clone.Text(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	joined := strings.Join(kept, "\n")
	return &joined
}

// cleanLabelText returns the element's text with tooltip spans removed and
// the label stripped from the front, or nil when nothing remains.
func cleanLabelText(el *goquery.Selection, label string) *string {
	clone := el.Clone()
	clone.Find(".tooltiptext").Remove()

	text := collapseSpace(clone.Text())
	text = strings.Replace(text, label, "", 1)
	text = strings.Trim(text, separatorCutset)
	if text == "" {
		return nil
	}
	return &text
}

// collapseSpace normalizes runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
