package validate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemSchemaV100 = `{
  "$id": "https://schemas.stacspec.org/v1.0.0/item-spec/json-schema/item.json",
  "type": "object",
  "required": ["type", "stac_version", "id", "properties"],
  "properties": {
    "type": {"const": "Feature"},
    "properties": {
      "type": "object",
      "properties": {
        "proj:epsg": {"type": "integer"}
      }
    }
  }
}`

func seededValidator() *Validator {
	v := New(nil)
	v.SeedSchema("https://schemas.stacspec.org/v1.0.0/item-spec/json-schema/item.json", json.RawMessage(itemSchemaV100))
	return v
}

func TestValidateSucceedsWithValidExtensionProperty(t *testing.T) {
	v := seededValidator()
	item := []byte(`{
		"type": "Feature",
		"stac_version": "1.0.0",
		"id": "an-item",
		"properties": {"proj:epsg": 4326}
	}`)
	require.NoError(t, v.Validate(context.Background(), item))
}

func TestValidateAggregatesSchemaErrors(t *testing.T) {
	v := seededValidator()
	item := []byte(`{
		"type": "Feature",
		"stac_version": "1.0.0",
		"id": "an-item",
		"properties": {"proj:epsg": "not an integer"}
	}`)
	err := v.Validate(context.Background(), item)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 1)
}

func TestValidateArrayAggregatesAcrossItems(t *testing.T) {
	v := seededValidator()
	bad := `{"type":"Feature","stac_version":"1.0.0","id":"bad","properties":{"proj:epsg":"x"}}`
	good := `{"type":"Feature","stac_version":"1.0.0","id":"good","properties":{}}`
	arr := []byte("[" + good + "," + bad + "]")
	err := v.Validate(context.Background(), arr)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 1)
}

func TestValidateScalarFails(t *testing.T) {
	v := seededValidator()
	err := v.Validate(context.Background(), json.RawMessage(`42`))
	assert.Error(t, err)
}

func TestValidateFeatureCollectionRecursesIntoFeatures(t *testing.T) {
	v := seededValidator()
	fc := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type":"Feature","stac_version":"1.0.0","id":"a","properties":{}}
		]
	}`)
	require.NoError(t, v.Validate(context.Background(), fc))
}
