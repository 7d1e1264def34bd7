package stac

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb/geojson"
)

// TypeFeature, TypeCatalog, TypeCollection, TypeFeatureCollection are the
// recognized STAC/GeoJSON `type` discriminators.
const (
	TypeFeature           = "Feature"
	TypeCatalog           = "Catalog"
	TypeCollection        = "Collection"
	TypeFeatureCollection = "FeatureCollection"
)

// DefaultVersion is the STAC version emitted for newly constructed entities.
const DefaultVersion = "1.0.0"

// Properties holds an Item's `properties` object: the named temporal/
// descriptive fields plus arbitrary additional fields.
type Properties struct {
	Datetime      *time.Time `json:"-"`
	StartDatetime *time.Time `json:"-"`
	EndDatetime   *time.Time `json:"-"`
	Title         string     `json:"title,omitempty"`
	Description   string     `json:"description,omitempty"`
	Created       *time.Time `json:"-"`
	Updated       *time.Time `json:"-"`

	AdditionalFields map[string]any `json:"-"`
}

var propertiesKnownKeys = map[string]bool{
	"datetime": true, "start_datetime": true, "end_datetime": true,
	"title": true, "description": true, "created": true, "updated": true,
}

// Validate enforces the Item.properties invariant: datetime may be null
// only if both start_datetime and end_datetime are present.
func (p Properties) Validate() error {
	if p.Datetime == nil && (p.StartDatetime == nil || p.EndDatetime == nil) {
		return &MissingFieldError{Name: "datetime"}
	}
	return nil
}

func (p Properties) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	for k, v := range p.AdditionalFields {
		m[k] = v
	}
	if p.Datetime != nil {
		m["datetime"] = p.Datetime.UTC().Format(time.RFC3339Nano)
	} else {
		m["datetime"] = nil
	}
	if p.StartDatetime != nil {
		m["start_datetime"] = p.StartDatetime.UTC().Format(time.RFC3339Nano)
	}
	if p.EndDatetime != nil {
		m["end_datetime"] = p.EndDatetime.UTC().Format(time.RFC3339Nano)
	}
	if p.Title != "" {
		m["title"] = p.Title
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if p.Created != nil {
		m["created"] = p.Created.UTC().Format(time.RFC3339Nano)
	}
	if p.Updated != nil {
		m["updated"] = p.Updated.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(m)
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parseTime := func(key string) (*time.Time, error) {
		r, ok := raw[key]
		if !ok {
			return nil, nil
		}
		var s *string
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, err
		}
		if s == nil {
			return nil, nil
		}
		t, err := ParseDatetime(*s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	var err error
	if p.Datetime, err = parseTime("datetime"); err != nil {
		return err
	}
	if p.StartDatetime, err = parseTime("start_datetime"); err != nil {
		return err
	}
	if p.EndDatetime, err = parseTime("end_datetime"); err != nil {
		return err
	}
	if p.Created, err = parseTime("created"); err != nil {
		return err
	}
	if p.Updated, err = parseTime("updated"); err != nil {
		return err
	}
	if r, ok := raw["title"]; ok {
		_ = json.Unmarshal(r, &p.Title)
	}
	if r, ok := raw["description"]; ok {
		_ = json.Unmarshal(r, &p.Description)
	}
	for k, r := range raw {
		if propertiesKnownKeys[k] {
			continue
		}
		var v any
		if err := json.Unmarshal(r, &v); err != nil {
			return err
		}
		if p.AdditionalFields == nil {
			p.AdditionalFields = map[string]any{}
		}
		p.AdditionalFields[k] = v
	}
	return nil
}

// Item is a GeoJSON Feature extended with STAC fields describing a single
// spatio-temporal asset.
type Item struct {
	Type           string           `json:"type"`
	StacVersion    string           `json:"stac_version"`
	StacExtensions []string         `json:"stac_extensions,omitempty"`
	ID             string           `json:"id"`
	Geometry       *geojson.Geometry `json:"geometry"`
	Bbox           Bbox             `json:"bbox,omitempty"`
	Properties     Properties       `json:"properties"`
	Links          []Link           `json:"links"`
	Assets         *AssetMap        `json:"assets"`
	Collection     string           `json:"collection,omitempty"`

	AdditionalFields map[string]any `json:"-"`
	selfHref         string
}

var itemKnownKeys = map[string]bool{
	"type": true, "stac_version": true, "stac_extensions": true, "id": true,
	"geometry": true, "bbox": true, "properties": true, "links": true,
	"assets": true, "collection": true,
}

// NewItem constructs a minimal valid Item.
func NewItem(id string) *Item {
	return &Item{
		Type:        TypeFeature,
		StacVersion: DefaultVersion,
		ID:          id,
		Links:       []Link{},
		Assets:      NewAssetMap(),
	}
}

// Validate enforces the Item invariants named in spec.md §3: if geometry is
// non-null, bbox is required; type must be "Feature"; properties must
// satisfy its own datetime invariant; a non-nil bbox must itself be valid.
func (it *Item) Validate() error {
	if it.Type != TypeFeature {
		return &IncorrectTypeError{Actual: it.Type, Expected: TypeFeature}
	}
	if it.Geometry != nil && len(it.Bbox) == 0 {
		return &MissingFieldError{Name: "bbox"}
	}
	if len(it.Bbox) > 0 {
		if err := it.Bbox.Validate(); err != nil {
			return err
		}
	}
	return it.Properties.Validate()
}

func (it *Item) GetLinks() []Link        { return it.Links }
func (it *Item) SetLinks(links []Link)   { it.Links = links }
func (it *Item) GetSelfHref() string     { return it.selfHref }
func (it *Item) SetSelfHref(hrefStr string) { it.selfHref = hrefStr }

func (it Item) MarshalJSON() ([]byte, error) {
	type alias Item
	if it.Links == nil {
		it.Links = []Link{}
	}
	if it.Assets == nil {
		it.Assets = NewAssetMap()
	}
	return marshalWithAdditional(alias(it), it.AdditionalFields)
}

func (it *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*it = Item(a)
	if it.Type == "" {
		return &MissingFieldError{Name: "type"}
	}
	if it.Type != TypeFeature {
		return &IncorrectTypeError{Actual: it.Type, Expected: TypeFeature}
	}
	fields, err := unmarshalAdditional(data, itemKnownKeys)
	if err != nil {
		return err
	}
	it.AdditionalFields = fields
	return nil
}
