package stac

import "encoding/json"

// Context reports the paging window of an ItemCollection response
// (the `numberReturned`/`numberMatched`/`limit` triple used by STAC API
// search responses).
type Context struct {
	Returned int  `json:"returned"`
	Limit    *int `json:"limit,omitempty"`
	Matched  *int `json:"matched,omitempty"`
}

// ItemCollection is a GeoJSON FeatureCollection of Items, optionally
// carrying opaque pagination cursor objects that the server weaves into
// `next`/`prev` links (see internal/api).
type ItemCollection struct {
	Type     string   `json:"type"`
	Features []*Item  `json:"features"`
	Links    []Link   `json:"links,omitempty"`

	NumberMatched  *int     `json:"numberMatched,omitempty"`
	NumberReturned int      `json:"numberReturned"`

	// Next and Prev are opaque request-field maps the backend returns
	// alongside a page: the server merges them into the next search/items
	// request to build a pagination link (spec.md §4.8, §4.9).
	Next map[string]any `json:"-"`
	Prev map[string]any `json:"-"`

	selfHref string
}

var itemCollectionKnownKeys = map[string]bool{
	"type": true, "features": true, "links": true,
	"numberMatched": true, "numberReturned": true,
}

// NewItemCollection wraps features into an ItemCollection.
func NewItemCollection(features []*Item) *ItemCollection {
	return &ItemCollection{
		Type:           TypeFeatureCollection,
		Features:       features,
		Links:          []Link{},
		NumberReturned: len(features),
	}
}

func (ic *ItemCollection) GetLinks() []Link          { return ic.Links }
func (ic *ItemCollection) SetLinks(links []Link)     { ic.Links = links }
func (ic *ItemCollection) GetSelfHref() string       { return ic.selfHref }
func (ic *ItemCollection) SetSelfHref(hrefStr string) { ic.selfHref = hrefStr }

func (ic ItemCollection) MarshalJSON() ([]byte, error) {
	type alias ItemCollection
	if ic.Links == nil {
		ic.Links = []Link{}
	}
	if ic.Features == nil {
		ic.Features = []*Item{}
	}
	return json.Marshal(alias(ic))
}

func (ic *ItemCollection) UnmarshalJSON(data []byte) error {
	type alias ItemCollection
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*ic = ItemCollection(a)
	if ic.Type == "" {
		ic.Type = TypeFeatureCollection
	}
	return nil
}
