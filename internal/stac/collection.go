package stac

import "encoding/json"

// SpatialExtent wraps the one-or-more bounding boxes describing a
// Collection's spatial coverage. bbox[0] is the overall extent.
type SpatialExtent struct {
	Bbox []Bbox `json:"bbox"`
}

// Interval is a [start, end] pair, either of which may be nil for an open
// bound.
type Interval [2]*string

// TemporalExtent wraps the one-or-more intervals describing a Collection's
// temporal coverage. Interval[0] is the overall extent.
type TemporalExtent struct {
	Interval []Interval `json:"interval"`
}

// Extent combines a Collection's spatial and temporal coverage.
type Extent struct {
	Spatial  SpatialExtent  `json:"spatial"`
	Temporal TemporalExtent `json:"temporal"`

	AdditionalFields map[string]any `json:"-"`
}

func (e Extent) MarshalJSON() ([]byte, error) {
	type alias Extent
	return marshalWithAdditional(alias(e), e.AdditionalFields)
}

func (e *Extent) UnmarshalJSON(data []byte) error {
	type alias Extent
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = Extent(a)
	fields, err := unmarshalAdditional(data, map[string]bool{"spatial": true, "temporal": true})
	if err != nil {
		return err
	}
	e.AdditionalFields = fields
	return nil
}

// DefaultLicense is the license value a Collection defaults to when none is
// given.
const DefaultLicense = "proprietary"

// Collection is a superset of Catalog adding license, providers, extent,
// summaries, assets, and keywords.
type Collection struct {
	Type           string     `json:"type"`
	StacVersion    string     `json:"stac_version"`
	StacExtensions []string   `json:"stac_extensions,omitempty"`
	ID             string     `json:"id"`
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description"`
	Links          []Link     `json:"links"`
	License        string     `json:"license"`
	Providers      []Provider `json:"providers,omitempty"`
	Extent         Extent     `json:"extent"`
	Summaries      map[string]any `json:"summaries,omitempty"`
	Assets         *AssetMap  `json:"assets,omitempty"`
	Keywords       []string   `json:"keywords,omitempty"`

	AdditionalFields map[string]any `json:"-"`
	selfHref         string
}

var collectionKnownKeys = map[string]bool{
	"type": true, "stac_version": true, "stac_extensions": true, "id": true,
	"title": true, "description": true, "links": true, "license": true,
	"providers": true, "extent": true, "summaries": true, "assets": true,
	"keywords": true,
}

// NewCollection constructs a minimal valid Collection with an empty extent
// and the default "proprietary" license.
func NewCollection(id, description string) *Collection {
	return &Collection{
		Type:        TypeCollection,
		StacVersion: DefaultVersion,
		ID:          id,
		Description: description,
		Links:       []Link{},
		License:     DefaultLicense,
		Extent: Extent{
			Spatial:  SpatialExtent{Bbox: []Bbox{}},
			Temporal: TemporalExtent{Interval: []Interval{}},
		},
	}
}

// FromItems seeds a Collection's extent from the first item and widens it
// with each subsequent item: componentwise min/max on bbox, min/max on
// temporal bounds. Items without a bbox or without a resolvable datetime do
// not contribute to the corresponding extent component.
func FromItems(id, description string, items []*Item) *Collection {
	c := NewCollection(id, description)
	var bbox Bbox
	var start, end *string
	for _, it := range items {
		if len(it.Bbox) > 0 {
			if bbox == nil {
				bbox = append(Bbox(nil), it.Bbox...)
			} else {
				bbox = bbox.Update(it.Bbox)
			}
		}
		s, e := itemTemporalBounds(it)
		if s != nil && (start == nil || *s < *start) {
			start = s
		}
		if e != nil && (end == nil || *e > *end) {
			end = e
		}
	}
	if bbox != nil {
		c.Extent.Spatial.Bbox = []Bbox{bbox}
	}
	c.Extent.Temporal.Interval = []Interval{{start, end}}
	return c
}

func itemTemporalBounds(it *Item) (start, end *string) {
	if it.Properties.StartDatetime != nil {
		s := it.Properties.StartDatetime.UTC().Format(rfc3339)
		start = &s
	} else if it.Properties.Datetime != nil {
		s := it.Properties.Datetime.UTC().Format(rfc3339)
		start = &s
	}
	if it.Properties.EndDatetime != nil {
		e := it.Properties.EndDatetime.UTC().Format(rfc3339)
		end = &e
	} else if it.Properties.Datetime != nil {
		e := it.Properties.Datetime.UTC().Format(rfc3339)
		end = &e
	}
	return start, end
}

const rfc3339 = "2006-01-02T15:04:05Z07:00"

func (c *Collection) GetLinks() []Link          { return c.Links }
func (c *Collection) SetLinks(links []Link)     { c.Links = links }
func (c *Collection) GetSelfHref() string       { return c.selfHref }
func (c *Collection) SetSelfHref(hrefStr string) { c.selfHref = hrefStr }

func (c Collection) MarshalJSON() ([]byte, error) {
	type alias Collection
	if c.Links == nil {
		c.Links = []Link{}
	}
	return marshalWithAdditional(alias(c), c.AdditionalFields)
}

func (c *Collection) UnmarshalJSON(data []byte) error {
	type alias Collection
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Collection(a)
	if c.Type != TypeCollection {
		return &IncorrectTypeError{Actual: c.Type, Expected: TypeCollection}
	}
	if c.License == "" {
		c.License = DefaultLicense
	}
	fields, err := unmarshalAdditional(data, collectionKnownKeys)
	if err != nil {
		return err
	}
	c.AdditionalFields = fields
	return nil
}
