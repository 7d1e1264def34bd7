package stac

import "encoding/json"

// Catalog groups Collections and other Catalogs for navigation purposes.
type Catalog struct {
	Type           string   `json:"type"`
	StacVersion    string   `json:"stac_version"`
	StacExtensions []string `json:"stac_extensions,omitempty"`
	ID             string   `json:"id"`
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description"`
	Links          []Link   `json:"links"`

	AdditionalFields map[string]any `json:"-"`
	selfHref         string
}

var catalogKnownKeys = map[string]bool{
	"type": true, "stac_version": true, "stac_extensions": true, "id": true,
	"title": true, "description": true, "links": true,
}

// NewCatalog constructs a minimal valid Catalog.
func NewCatalog(id, description string) *Catalog {
	return &Catalog{
		Type:        TypeCatalog,
		StacVersion: DefaultVersion,
		ID:          id,
		Description: description,
		Links:       []Link{},
	}
}

func (c *Catalog) GetLinks() []Link          { return c.Links }
func (c *Catalog) SetLinks(links []Link)     { c.Links = links }
func (c *Catalog) GetSelfHref() string       { return c.selfHref }
func (c *Catalog) SetSelfHref(hrefStr string) { c.selfHref = hrefStr }

func (c Catalog) MarshalJSON() ([]byte, error) {
	type alias Catalog
	if c.Links == nil {
		c.Links = []Link{}
	}
	return marshalWithAdditional(alias(c), c.AdditionalFields)
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	type alias Catalog
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Catalog(a)
	if c.Type != TypeCatalog {
		return &IncorrectTypeError{Actual: c.Type, Expected: TypeCatalog}
	}
	fields, err := unmarshalAdditional(data, catalogKnownKeys)
	if err != nil {
		return err
	}
	c.AdditionalFields = fields
	return nil
}
