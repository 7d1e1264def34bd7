package columnar

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"

	"github.com/stac-utils/stac-go/internal/stac"
)

// wkbBytes encodes item's geometry as WKB, used by both ToTable and
// WriteParquet to keep the two serialization paths' geometry column
// identical.
func wkbBytes(item *stac.Item) ([]byte, error) {
	if item.Geometry == nil {
		return nil, nil
	}
	return wkb.Marshal(item.Geometry.Geometry)
}

// geometryFromWKB decodes a WKB geometry column value into a GeoJSON
// geometry, the from_table/ReadParquet counterpart of wkbBytes.
func geometryFromWKB(raw []byte) (*geojson.Geometry, error) {
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("columnar: decoding WKB geometry: %w", err)
	}
	return geojson.NewGeometry(g), nil
}

// geometryColumn is the fixed name spec.md §4.4 reserves for the geoarrow
// column (to_table step 6 / from_table step 1).
const geometryColumn = "geometry"

// ErrMissingGeometry is returned by FromTable when a record carries no
// geometry column (spec.md §7's MissingGeometry case).
var ErrMissingGeometry = fmt.Errorf("columnar: table has no %q column", geometryColumn)

// ToTable converts an ItemCollection into a single Arrow record batch: a
// binary WKB geometry column (this package's concrete choice among the
// geoarrow-native encodings spec.md §4.4 step 6 allows, documented in
// DESIGN.md) plus one column per flattened field, datetime-named columns
// rewritten to timestamp[ms, UTC].
func ToTable(ic *stac.ItemCollection, dropInvalid bool) (arrow.Record, error) {
	mem := memory.NewGoAllocator()

	rows := make([]FlatRow, len(ic.Features))
	geoms := make([]orb.Geometry, len(ic.Features))
	for i, item := range ic.Features {
		row, err := Flatten(item, dropInvalid)
		if err != nil {
			return nil, err
		}
		rows[i] = row
		if item.Geometry != nil {
			geoms[i] = item.Geometry.Geometry
		}
	}

	columns := inferColumns(rows)
	fields := make([]arrow.Field, 0, len(columns)+1)
	fields = append(fields, arrow.Field{Name: geometryColumn, Type: arrow.BinaryTypes.Binary, Nullable: true})
	for _, col := range columns {
		fields = append(fields, arrow.Field{Name: col.name, Type: col.arrowType(), Nullable: true})
	}
	schema := arrow.NewSchema(fields, nil)

	builders := make([]array.Builder, len(fields))
	for i, f := range fields {
		builders[i] = array.NewBuilder(mem, f.Type)
		defer builders[i].Release()
	}

	geomBuilder := builders[0].(*array.BinaryBuilder)
	for _, g := range geoms {
		if g == nil {
			geomBuilder.AppendNull()
			continue
		}
		raw, err := wkb.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("columnar: encoding geometry: %w", err)
		}
		geomBuilder.Append(raw)
	}

	for colIdx, col := range columns {
		b := builders[colIdx+1]
		for _, row := range rows {
			appendValue(b, col, row[col.name])
		}
	}

	arrays := make([]arrow.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.NewArray()
		defer arrays[i].Release()
	}

	return array.NewRecord(schema, arrays, int64(len(rows))), nil
}

// FromTable reverses ToTable: locates the geometry column, reconstructs one
// JSON row per record row, splices geometry back in, unflattens, and parses
// into an Item. Rows with a null geometry keep a nil geometry; a geometry
// that fails to decode fails the whole call.
func FromTable(rec arrow.Record) (*stac.ItemCollection, error) {
	schema := rec.Schema()
	geomIdx := -1
	for i, f := range schema.Fields() {
		if f.Name == geometryColumn {
			geomIdx = i
			break
		}
	}
	if geomIdx < 0 {
		return nil, ErrMissingGeometry
	}

	n := int(rec.NumRows())
	items := make([]*stac.Item, n)

	for r := 0; r < n; r++ {
		row := FlatRow{}
		for c, f := range schema.Fields() {
			if c == geomIdx {
				continue
			}
			row[f.Name] = columnValue(rec.Column(c), r, f.Type)
		}

		geomCol := rec.Column(geomIdx).(*array.Binary)
		if !geomCol.IsNull(r) {
			g, err := wkb.Unmarshal(geomCol.Value(r))
			if err != nil {
				return nil, fmt.Errorf("columnar: decoding geometry at row %d: %w", r, err)
			}
			row["geometry"] = geojson.NewGeometry(g)
		}

		item, err := Unflatten(row)
		if err != nil {
			return nil, err
		}
		items[r] = item
	}

	return stac.NewItemCollection(items), nil
}

// column describes one inferred flat-item field.
type column struct {
	name     string
	datetime bool
	kind     valueKind
}

type valueKind int

const (
	kindString valueKind = iota
	kindFloat
	kindBool
	kindJSON // arbitrary nested value, carried as a JSON-encoded string
)

func (c column) arrowType() arrow.DataType {
	switch {
	case c.datetime:
		return arrow.FixedWidthTypes.Timestamp_ms
	case c.kind == kindFloat:
		return arrow.PrimitiveTypes.Float64
	case c.kind == kindBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// inferColumns scans every row to determine a stable, sorted column set and
// its Arrow type, promoting mixed-type or structured values to kindJSON.
func inferColumns(rows []FlatRow) []column {
	seen := map[string]valueKind{}
	order := []string{}
	for _, row := range rows {
		for k, v := range row {
			if k == geometryColumn {
				continue
			}
			kind := classify(v)
			if existing, ok := seen[k]; ok {
				if existing != kind {
					seen[k] = kindJSON
				}
				continue
			}
			seen[k] = kind
			order = append(order, k)
		}
	}
	sort.Strings(order)
	cols := make([]column, len(order))
	for i, name := range order {
		cols[i] = column{name: name, datetime: datetimeColumns[name], kind: seen[name]}
	}
	return cols
}

func classify(v any) valueKind {
	switch v.(type) {
	case nil:
		return kindJSON
	case string:
		return kindString
	case float64, int, int64:
		return kindFloat
	case bool:
		return kindBool
	default:
		return kindJSON
	}
}

func appendValue(b array.Builder, col column, v any) {
	if v == nil {
		b.AppendNull()
		return
	}
	if col.datetime {
		s, ok := v.(string)
		if !ok {
			b.AppendNull()
			return
		}
		t, err := parseDatetimeColumn(s)
		if err != nil {
			b.AppendNull()
			return
		}
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(t.UnixMilli()))
		return
	}
	switch col.kind {
	case kindFloat:
		f, ok := asFloat(v)
		if !ok {
			b.AppendNull()
			return
		}
		b.(*array.Float64Builder).Append(f)
	case kindBool:
		bv, ok := v.(bool)
		if !ok {
			b.AppendNull()
			return
		}
		b.(*array.BooleanBuilder).Append(bv)
	case kindString:
		s, ok := v.(string)
		if !ok {
			b.AppendNull()
			return
		}
		b.(*array.StringBuilder).Append(s)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			b.AppendNull()
			return
		}
		b.(*array.StringBuilder).Append(string(raw))
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func columnValue(col arrow.Array, row int, typ arrow.DataType) any {
	if col.IsNull(row) {
		return nil
	}
	switch a := col.(type) {
	case *array.String:
		s := a.Value(row)
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			if _, isObjOrArr := decoded.(map[string]any); isObjOrArr {
				return decoded
			}
			if _, isArr := decoded.([]any); isArr {
				return decoded
			}
		}
		return s
	case *array.Float64:
		return a.Value(row)
	case *array.Boolean:
		return a.Value(row)
	case *array.Timestamp:
		ms := int64(a.Value(row))
		return coerceDatetimeColumn(time.UnixMilli(ms).UTC())
	default:
		return nil
	}
}
