package stac

import "encoding/json"

// Conformance classes advertised by the STAC API landing page and the
// dedicated /conformance endpoint. Core + OGC API Features is always
// advertised; item-search and filter are added per backend capability.
const (
	ConformsCore            = "https://api.stacspec.org/v1.0.0/core"
	ConformsOGCAPIFeatures  = "https://api.stacspec.org/v1.0.0/ogcapi-features"
	ConformsFeaturesCore    = "http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/core"
	ConformsFeaturesGeoJSON = "http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/geojson"
	ConformsItemSearch      = "https://api.stacspec.org/v1.0.0/item-search"
	ConformsFilter          = "https://api.stacspec.org/v1.0.0/ogcapi-features#filter"
)

// Conformance is the body of GET /conformance and the `conformsTo` member
// of the landing page.
type Conformance struct {
	ConformsTo []string `json:"conformsTo"`
}

// NewConformance starts from the classes every backend satisfies.
func NewConformance() Conformance {
	return Conformance{ConformsTo: []string{ConformsCore, ConformsOGCAPIFeatures, ConformsFeaturesCore, ConformsFeaturesGeoJSON}}
}

// WithItemSearch appends the item-search conformance class.
func (c Conformance) WithItemSearch() Conformance {
	c.ConformsTo = append(c.ConformsTo, ConformsItemSearch)
	return c
}

// WithFilter appends the filter conformance class.
func (c Conformance) WithFilter() Conformance {
	c.ConformsTo = append(c.ConformsTo, ConformsFilter)
	return c
}

// Root is the STAC API landing page: a Catalog carrying its conformance
// classes alongside the usual catalog fields.
type Root struct {
	Catalog     *Catalog
	Conformance Conformance
}

func (r Root) MarshalJSON() ([]byte, error) {
	catalogJSON, err := json.Marshal(r.Catalog)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(catalogJSON, &m); err != nil {
		return nil, err
	}
	conformsJSON, err := json.Marshal(r.Conformance.ConformsTo)
	if err != nil {
		return nil, err
	}
	m["conformsTo"] = conformsJSON
	return json.Marshal(m)
}

// Collections is the body of GET /collections: the collection list plus
// its own links.
type Collections struct {
	Collections []*Collection `json:"collections"`
	Links       []Link        `json:"links"`
}

// NewCollections wraps a collection slice.
func NewCollections(collections []*Collection) *Collections {
	if collections == nil {
		collections = []*Collection{}
	}
	return &Collections{Collections: collections, Links: []Link{}}
}

func (c *Collections) GetLinks() []Link      { return c.Links }
func (c *Collections) SetLinks(links []Link) { c.Links = links }
func (c *Collections) GetSelfHref() string   { return "" }
