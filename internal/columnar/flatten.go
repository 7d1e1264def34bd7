// Package columnar implements the bidirectional conversion between the
// nested JSON STAC Item model and a flat Arrow/geoparquet table
// representation (spec.md §4.4, the "flat item" transform). No Rust source
// for this crate existed in the reference pack, so the operation list in
// spec.md §4.4 is followed directly rather than a ported file; the
// surrounding table encoding is implemented against
// github.com/apache/arrow/go/v14 and github.com/parquet-go/parquet-go
// (neither of which appears anywhere else in the pack - named, not
// grounded, per DESIGN.md).
package columnar

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stac-utils/stac-go/internal/stac"
)

// reservedTopLevelKeys are the Item fields that a flattened property may
// never collide with, per spec.md §4.4 step 2.
var reservedTopLevelKeys = map[string]bool{
	"type": true, "stac_extensions": true, "id": true, "geometry": true,
	"bbox": true, "links": true, "assets": true, "collection": true,
}

// datetimeColumns are the flat-item columns rewritten to millisecond-
// precision UTC timestamps during to_table, per spec.md §4.4 step 5.
var datetimeColumns = map[string]bool{
	"datetime": true, "start_datetime": true, "end_datetime": true,
	"created": true, "updated": true, "expires": true,
	"published": true, "unpublished": true,
}

// FlatRow is a single flattened Item: reserved fields plus every promoted
// property, geometry already removed, bbox already coerced to a struct.
type FlatRow map[string]any

// Flatten converts an Item into its FLAT representation (spec.md §4.4
// step 2-4). Properties are promoted to top level; a promoted key that
// collides with a reserved field, or a non-spec top-level additional
// field, is dropped when dropInvalid is true and otherwise fails with
// InvalidAttributeError. Geometry is omitted (the caller pushes it into
// the geometry builder separately); bbox becomes a struct.
func Flatten(item *stac.Item, dropInvalid bool) (FlatRow, error) {
	row := FlatRow{}
	row["type"] = item.Type
	row["stac_version"] = item.StacVersion
	if len(item.StacExtensions) > 0 {
		row["stac_extensions"] = item.StacExtensions
	}
	row["id"] = item.ID
	if item.Collection != "" {
		row["collection"] = item.Collection
	}
	row["links"] = item.Links
	assets := item.Assets
	if assets == nil {
		assets = stac.NewAssetMap()
	}
	row["assets"] = assets

	if len(item.Bbox) > 0 {
		bboxStruct, err := bboxToStruct(item.Bbox)
		if err != nil {
			return nil, err
		}
		row["bbox"] = bboxStruct
	}

	props := map[string]any{}
	raw, err := json.Marshal(item.Properties)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, err
	}
	for k, v := range props {
		if reservedTopLevelKeys[k] {
			if dropInvalid {
				continue
			}
			return nil, &stac.InvalidAttributeError{Name: k}
		}
		row[k] = v
	}

	for k, v := range item.AdditionalFields {
		if reservedTopLevelKeys[k] {
			if dropInvalid {
				continue
			}
			return nil, &stac.InvalidAttributeError{Name: k}
		}
		if _, exists := row[k]; exists {
			if dropInvalid {
				continue
			}
			return nil, &stac.InvalidAttributeError{Name: k}
		}
		row[k] = v
	}

	return row, nil
}

// bboxCoord names the struct fields of a flattened bbox column.
type bboxCoord struct {
	Xmin float64  `json:"xmin"`
	Ymin float64  `json:"ymin"`
	Xmax float64  `json:"xmax"`
	Ymax float64  `json:"ymax"`
	Zmin *float64 `json:"zmin,omitempty"`
	Zmax *float64 `json:"zmax,omitempty"`
}

func bboxToStruct(b stac.Bbox) (bboxCoord, error) {
	switch len(b) {
	case 4:
		return bboxCoord{Xmin: b[0], Ymin: b[1], Xmax: b[2], Ymax: b[3]}, nil
	case 6:
		zmin, zmax := b[2], b[5]
		return bboxCoord{
			Xmin: b[0], Ymin: b[1], Xmax: b[3], Ymax: b[4],
			Zmin: &zmin, Zmax: &zmax,
		}, nil
	default:
		return bboxCoord{}, &stac.InvalidBboxError{Values: b}
	}
}

func bboxFromStruct(c bboxCoord) stac.Bbox {
	if c.Zmin != nil && c.Zmax != nil {
		return stac.Bbox{c.Xmin, c.Ymin, *c.Zmin, c.Xmax, c.Ymax, *c.Zmax}
	}
	return stac.Bbox{c.Xmin, c.Ymin, c.Xmax, c.Ymax}
}

// Unflatten reverses Flatten (spec.md §4.4 from_table step 5-7): reserved
// keys and stac_version stay at the top level, every other key moves under
// "properties",
// bbox is coerced back to an array, and the row (with its "geometry" key
// already spliced in by the caller) is parsed into an Item.
func Unflatten(row FlatRow) (*stac.Item, error) {
	top := map[string]any{}
	props := map[string]any{}
	for k, v := range row {
		if reservedTopLevelKeys[k] || k == "geometry" || k == "stac_version" {
			top[k] = v
			continue
		}
		props[k] = v
	}

	if rawBbox, ok := top["bbox"]; ok {
		switch b := rawBbox.(type) {
		case bboxCoord:
			top["bbox"] = bboxFromStruct(b)
		case map[string]any:
			top["bbox"] = bboxFromStructMap(b)
		}
	}

	if assets, ok := top["assets"]; ok {
		top["assets"] = cleanAssets(assets)
	}

	top["properties"] = props

	raw, err := json.Marshal(top)
	if err != nil {
		return nil, err
	}
	item := &stac.Item{}
	if err := json.Unmarshal(raw, item); err != nil {
		return nil, err
	}
	return item, nil
}

func bboxFromStructMap(m map[string]any) stac.Bbox {
	get := func(k string) float64 {
		v, _ := m[k].(float64)
		return v
	}
	if zmin, ok := m["zmin"]; ok && zmin != nil {
		if zmax, ok := m["zmax"]; ok && zmax != nil {
			return stac.Bbox{get("xmin"), get("ymin"), get("zmin"), get("xmax"), get("ymax"), get("zmax")}
		}
	}
	return stac.Bbox{get("xmin"), get("ymin"), get("xmax"), get("ymax")}
}

// cleanAssets drops any "assets" entry whose value is not a JSON object,
// the parquet-nullability artifact cleanup spec.md §4.4 calls for.
func cleanAssets(assets any) any {
	m, ok := assets.(map[string]any)
	if !ok {
		return assets
	}
	out := map[string]any{}
	for k, v := range m {
		if _, ok := v.(map[string]any); ok {
			out[k] = v
		}
	}
	return out
}

// coerceDatetimeColumn formats a time.Time as millisecond-truncated RFC3339
// for the flat row (the from_table direction, timestamp back to string);
// parseDatetimeColumn parses that string for the to_table direction.
func coerceDatetimeColumn(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(time.RFC3339Nano)
}

func parseDatetimeColumn(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("columnar: parsing datetime column: %w", err)
	}
	return t, nil
}
