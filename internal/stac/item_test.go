package stac

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemValid(t *testing.T) {
	it := NewItem("an-item")
	now := time.Now().UTC().Truncate(time.Second)
	it.Properties.Datetime = &now
	require.NoError(t, it.Validate())
}

func TestItemRequiresBboxWithGeometry(t *testing.T) {
	it := NewItem("an-item")
	now := time.Now().UTC()
	it.Properties.Datetime = &now
	it.Geometry = geojson.NewGeometry(orb.Point{1, 2})
	err := it.Validate()
	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, "bbox", mfe.Name)
}

func TestItemDatetimeNullRequiresStartEnd(t *testing.T) {
	it := NewItem("an-item")
	start := time.Now().UTC()
	it.Properties.StartDatetime = &start
	err := it.Validate()
	assert.Error(t, err)

	end := start.Add(time.Hour)
	it.Properties.EndDatetime = &end
	assert.NoError(t, it.Validate())
}

func TestItemMustBeTypeFeature(t *testing.T) {
	data := []byte(`{"type":"Catalog","id":"x","stac_version":"1.0.0","properties":{"datetime":"2023-01-01T00:00:00Z"},"links":[],"assets":{}}`)
	var it Item
	err := it.UnmarshalJSON(data)
	var ite *IncorrectTypeError
	assert.ErrorAs(t, err, &ite)
}

func TestItemAdditionalFieldsRoundTrip(t *testing.T) {
	it := NewItem("an-item")
	now := time.Now().UTC()
	it.Properties.Datetime = &now
	it.AdditionalFields = map[string]any{"custom:field": "value"}

	raw, err := json.Marshal(it)
	require.NoError(t, err)

	var decoded Item
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "value", decoded.AdditionalFields["custom:field"])
}

func TestPropertiesAdditionalFieldsRoundTrip(t *testing.T) {
	it := NewItem("an-item")
	now := time.Now().UTC()
	it.Properties.Datetime = &now
	it.Properties.AdditionalFields = map[string]any{"proj:epsg": float64(4326)}

	raw, err := json.Marshal(it)
	require.NoError(t, err)

	var decoded Item
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(4326), decoded.Properties.AdditionalFields["proj:epsg"])
}

func TestAssetMapPreservesOrder(t *testing.T) {
	m := NewAssetMap()
	m.Set("thumbnail", Asset{Href: "thumb.png"})
	m.Set("data", Asset{Href: "data.tif"})
	assert.Equal(t, []string{"thumbnail", "data"}, m.Keys())

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded AssetMap
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []string{"thumbnail", "data"}, decoded.Keys())
	a, ok := decoded.Get("data")
	require.True(t, ok)
	assert.Equal(t, "data.tif", a.Href)
}
