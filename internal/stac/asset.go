package stac

import "encoding/json"

// Asset describes a downloadable or otherwise accessible resource attached
// to an Item or Collection.
type Asset struct {
	Href        string   `json:"href"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	Roles       []string `json:"roles,omitempty"`

	AdditionalFields map[string]any `json:"-"`
}

var assetKnownKeys = map[string]bool{
	"href": true, "title": true, "description": true, "type": true, "roles": true,
}

func (a Asset) MarshalJSON() ([]byte, error) {
	type alias Asset
	return marshalWithAdditional(alias(a), a.AdditionalFields)
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	type alias Asset
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Asset(v)
	fields, err := unmarshalAdditional(data, assetKnownKeys)
	if err != nil {
		return err
	}
	a.AdditionalFields = fields
	return nil
}

// marshalWithAdditional is the shared flatten helper used by every entity
// that carries an additional_fields map alongside named struct fields —
// Go's equivalent of serde's #[serde(flatten)], applied uniformly instead
// of being re-derived per type.
func marshalWithAdditional(v any, additional map[string]any) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(additional) == 0 {
		return base, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, val := range additional {
		if _, exists := m[k]; exists {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		m[k] = raw
	}
	return json.Marshal(m)
}

func unmarshalAdditional(data []byte, known map[string]bool) (map[string]any, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	var fields map[string]any
	for k, raw := range m {
		if known[k] {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		if fields == nil {
			fields = map[string]any{}
		}
		fields[k] = v
	}
	return fields, nil
}
