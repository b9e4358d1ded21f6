package sectioned

import (
	"github.com/cmorand/tmharvest/internal/extract"
	"github.com/cmorand/tmharvest/internal/record"
)

// Style selects which list extractor a section runs.
type Style int

const (
	// StyleItems extracts one string per matching item element.
	StyleItems Style = iota
	// StyleCollections extracts a heading-plus-lines archive block.
	StyleCollections
)

// Section describes one navigable tab of a record page. Adding a section is
// a data change: declare the fragment, the container, and where the items
// land on the record.
type Section struct {
	Name            string
	Fragment        string
	ContainerID     string
	ItemSelector    string
	HeadingSelector string
	Style           Style
	Clean           extract.CleanFunc
	Assign          func(rec *record.Record, items []string)
}

// DefaultSections covers every tab the source exposes per record, in the
// order the harvester visits them.
func DefaultSections() []Section {
	return []Section{
		{
			Name:         "people",
			Fragment:     "#people",
			ContainerID:  "people-list",
			ItemSelector: "li.item-large",
			Assign:       func(rec *record.Record, items []string) { rec.People = items },
		},
		{
			Name:         "places",
			Fragment:     "#places",
			ContainerID:  "places-list",
			ItemSelector: "li.item-large",
			Assign:       func(rec *record.Record, items []string) { rec.Places = items },
		},
		{
			Name:         "irregularities",
			Fragment:     "#text-irregularities",
			ContainerID:  "texirr-list",
			ItemSelector: "li.item-large",
			Assign:       func(rec *record.Record, items []string) { rec.Irregularities = items },
		},
		{
			Name:            "collections",
			Fragment:        "#collections",
			ContainerID:     "text-coll",
			HeadingSelector: "h4",
			Style:           StyleCollections,
			Assign:          func(rec *record.Record, items []string) { rec.Collections = items },
		},
	}
}
