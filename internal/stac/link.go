package stac

import (
	"encoding/json"

	"github.com/stac-utils/stac-go/internal/href"
)

// Rel constants for the structural link relations named by the
// specification (the core STAC rels plus the OGC API Features /
// STAC API structural rels).
const (
	RelSelf       = "self"
	RelRoot       = "root"
	RelParent     = "parent"
	RelChild      = "child"
	RelItem       = "item"
	RelCollection = "collection"

	RelData          = "data"
	RelConformance   = "conformance"
	RelItems         = "items"
	RelSearch        = "search"
	RelServiceDesc   = "service-desc"
	RelServiceDoc    = "service-doc"
	RelNext          = "next"
	RelPrev          = "prev"
	RelQueryables    = "http://www.opengis.net/def/rel/ogc/1.0/queryables"
)

var structuralRels = map[string]bool{
	RelSelf: true, RelRoot: true, RelParent: true, RelChild: true,
	RelItem: true, RelCollection: true, RelData: true, RelConformance: true,
	RelItems: true, RelSearch: true, RelServiceDesc: true, RelServiceDoc: true,
	RelNext: true, RelPrev: true,
}

const (
	mediaTypeJSON    = "application/json"
	mediaTypeGeoJSON = "application/geo+json"
)

// Link is a typed relation from one STAC entity to another (or to an API
// endpoint), optionally carrying HTTP method/headers/body/merge hints used
// by the paging search client and the server's pagination link synthesis.
type Link struct {
	Href   string         `json:"href"`
	Rel    string         `json:"rel"`
	Type   string         `json:"type,omitempty"`
	Title  string         `json:"title,omitempty"`
	Method string         `json:"method,omitempty"`
	Headers map[string]any `json:"headers,omitempty"`
	Body    map[string]any `json:"body,omitempty"`
	Merge   *bool          `json:"merge,omitempty"`

	AdditionalFields map[string]any `json:"-"`
}

// New constructs a Link with the given href and rel.
func New(hrefStr, rel string) Link {
	return Link{Href: hrefStr, Rel: rel}
}

// Root, SelfLink, Child, ItemLink, Parent, CollectionLink are convenience constructors
// matching the core rel constants, each defaulting to JSON media type.
func Root(hrefStr string) Link       { return New(hrefStr, RelRoot).JSON() }
func SelfLink(hrefStr string) Link   { return New(hrefStr, RelSelf).JSON() }
func Child(hrefStr string) Link      { return New(hrefStr, RelChild).JSON() }
func ItemLink(hrefStr string) Link   { return New(hrefStr, RelItem).JSON() }
func Parent(hrefStr string) Link     { return New(hrefStr, RelParent).JSON() }
func CollectionLink(hrefStr string) Link { return New(hrefStr, RelCollection).JSON() }

// JSON sets the media type to application/json and returns the link for
// chaining.
func (l Link) JSON() Link {
	l.Type = mediaTypeJSON
	return l
}

// GeoJSON sets the media type to application/geo+json.
func (l Link) GeoJSON() Link {
	l.Type = mediaTypeGeoJSON
	return l
}

// IsJSON reports whether the link's media type is application/json.
func (l Link) IsJSON() bool { return l.Type == mediaTypeJSON }

// IsGeoJSON reports whether the link's media type is application/geo+json.
func (l Link) IsGeoJSON() bool { return l.Type == mediaTypeGeoJSON }

// WithType sets an arbitrary media type.
func (l Link) WithType(t string) Link {
	l.Type = t
	return l
}

// WithTitle sets the title.
func (l Link) WithTitle(t string) Link {
	l.Title = t
	return l
}

// WithMethod sets the HTTP method used to follow this link (defaults to GET
// when unset).
func (l Link) WithMethod(method string) Link {
	l.Method = method
	return l
}

// WithBody serializes body and attaches it, failing if it does not
// serialize to a JSON object.
func (l Link) WithBody(body any) (Link, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return l, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return l, &IncorrectTypeError{Actual: "non-object", Expected: "object"}
	}
	l.Body = m
	return l, nil
}

// IsStructural reports whether rel is one of the structural relations
// named by the specification.
func (l Link) IsStructural() bool { return structuralRels[l.Rel] }

func (l Link) IsItem() bool       { return l.Rel == RelItem }
func (l Link) IsChild() bool      { return l.Rel == RelChild }
func (l Link) IsParent() bool     { return l.Rel == RelParent }
func (l Link) IsRoot() bool       { return l.Rel == RelRoot }
func (l Link) IsSelf() bool       { return l.Rel == RelSelf }
func (l Link) IsCollection() bool { return l.Rel == RelCollection }

// IsAbsolute reports whether the link's href is absolute.
func (l Link) IsAbsolute() bool {
	return href.New(l.Href).IsAbsolute()
}

// IsRelative is the negation of IsAbsolute.
func (l Link) IsRelative() bool { return !l.IsAbsolute() }

// MakeAbsolute rewrites the href relative to base, if relative.
func (l Link) MakeAbsolute(base string) Link {
	if l.IsAbsolute() {
		return l
	}
	l.Href = href.New(base).Join(href.New(l.Href)).String()
	return l
}

// MakeRelative rewrites the href relative to base, if currently absolute.
func (l Link) MakeRelative(base string) Link {
	l.Href = href.New(l.Href).MakeRelative(href.New(base)).String()
	return l
}

// MarshalJSON flattens AdditionalFields alongside the named fields, the Go
// equivalent of serde's #[serde(flatten)] used by the Rust original on the
// Link's additional_fields map.
func (l Link) MarshalJSON() ([]byte, error) {
	type alias Link
	base, err := json.Marshal(alias(l))
	if err != nil {
		return nil, err
	}
	if len(l.AdditionalFields) == 0 {
		return base, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range l.AdditionalFields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if _, exists := m[k]; !exists {
			m[k] = raw
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON captures unknown keys into AdditionalFields.
func (l *Link) UnmarshalJSON(data []byte) error {
	type alias Link
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*l = Link(a)

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	known := map[string]bool{
		"href": true, "rel": true, "type": true, "title": true,
		"method": true, "headers": true, "body": true, "merge": true,
	}
	for k, raw := range m {
		if known[k] {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if l.AdditionalFields == nil {
			l.AdditionalFields = map[string]any{}
		}
		l.AdditionalFields[k] = v
	}
	return nil
}
