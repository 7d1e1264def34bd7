package stac

import (
	"bytes"
	"encoding/json"
)

// AssetMap is an order-preserving map of asset key to Asset, matching the
// specification's "ordered map<string, Asset>" for Item.assets and
// Collection.assets.
type AssetMap struct {
	keys   []string
	values map[string]Asset
}

// NewAssetMap returns an empty AssetMap.
func NewAssetMap() *AssetMap {
	return &AssetMap{values: map[string]Asset{}}
}

// Set inserts or replaces the asset at key, preserving first-insertion
// order.
func (m *AssetMap) Set(key string, asset Asset) {
	if m.values == nil {
		m.values = map[string]Asset{}
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = asset
}

// Get returns the asset at key and whether it exists.
func (m *AssetMap) Get(key string) (Asset, bool) {
	if m == nil {
		return Asset{}, false
	}
	a, ok := m.values[key]
	return a, ok
}

// Keys returns the asset keys in insertion order.
func (m *AssetMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of assets.
func (m *AssetMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m AssetMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *AssetMap) UnmarshalJSON(data []byte) error {
	// json.Decoder preserves key order for objects when read token-by-token.
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &IncorrectTypeError{Actual: "non-object", Expected: "object"}
	}
	m.keys = nil
	m.values = map[string]Asset{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var asset Asset
		if err := dec.Decode(&asset); err != nil {
			return err
		}
		m.Set(key, asset)
	}
	return nil
}
